package supabase

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"contentflow-backend/internal/models"
)

func (d *DatabaseClient) CreateTemplate(userID, title string) (*models.Template, error) {
	var template models.Template
	err := d.db.QueryRow(`
		INSERT INTO templates (title, user_id)
		VALUES ($1, $2)
		RETURNING id, title, user_id, created_at, updated_at
	`, title, userID).Scan(
		&template.ID, &template.Title, &template.UserID, &template.CreatedAt, &template.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return &template, nil
}

func (d *DatabaseClient) GetTemplate(templateID uuid.UUID, userID string) (*models.Template, error) {
	var template models.Template
	err := d.db.QueryRow(`
		SELECT id, title, user_id, created_at, updated_at
		FROM templates
		WHERE id = $1 AND user_id = $2
	`, templateID, userID).Scan(
		&template.ID, &template.Title, &template.UserID, &template.CreatedAt, &template.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &template, nil
}

func (d *DatabaseClient) ListTemplates(userID string) ([]models.Template, error) {
	rows, err := d.db.Query(`
		SELECT id, title, user_id, created_at, updated_at
		FROM templates
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var template models.Template
		err := rows.Scan(
			&template.ID, &template.Title, &template.UserID, &template.CreatedAt, &template.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}

	return templates, nil
}

func (d *DatabaseClient) UpdateTemplateTitle(templateID uuid.UUID, userID, title string) (*models.Template, error) {
	var template models.Template
	err := d.db.QueryRow(`
		UPDATE templates
		SET title = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING id, title, user_id, created_at, updated_at
	`, title, templateID, userID).Scan(
		&template.ID, &template.Title, &template.UserID, &template.CreatedAt, &template.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	return &template, nil
}

// DeleteTemplate removes a template scoped to its owner and returns the
// deleted row, so callers can distinguish not-found from success.
func (d *DatabaseClient) DeleteTemplate(templateID uuid.UUID, userID string) (*models.Template, error) {
	var template models.Template
	err := d.db.QueryRow(`
		DELETE FROM templates
		WHERE id = $1 AND user_id = $2
		RETURNING id, title, user_id, created_at, updated_at
	`, templateID, userID).Scan(
		&template.ID, &template.Title, &template.UserID, &template.CreatedAt, &template.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete template: %w", err)
	}

	return &template, nil
}

func (d *DatabaseClient) CreatePrompt(prompt *models.Prompt) (*models.Prompt, error) {
	var created models.Prompt
	err := d.db.QueryRow(`
		INSERT INTO prompts (user_id, project_id, template_id, name, prompt, order_num)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, project_id, template_id, name, prompt, order_num, created_at, updated_at
	`, prompt.UserID, prompt.ProjectID, prompt.TemplateID, prompt.Name, prompt.Prompt, prompt.OrderNum).Scan(
		&created.ID, &created.UserID, &created.ProjectID, &created.TemplateID,
		&created.Name, &created.Prompt, &created.OrderNum, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt: %w", err)
	}

	return &created, nil
}

func (d *DatabaseClient) ListProjectPrompts(projectID uuid.UUID, userID string) ([]models.Prompt, error) {
	return d.listPrompts(`
		SELECT id, user_id, project_id, template_id, name, prompt, order_num, created_at, updated_at
		FROM prompts
		WHERE project_id = $1 AND user_id = $2
		ORDER BY order_num ASC, created_at ASC
	`, projectID, userID)
}

func (d *DatabaseClient) ListTemplatePrompts(templateID uuid.UUID, userID string) ([]models.Prompt, error) {
	return d.listPrompts(`
		SELECT id, user_id, project_id, template_id, name, prompt, order_num, created_at, updated_at
		FROM prompts
		WHERE template_id = $1 AND user_id = $2
		ORDER BY order_num ASC, created_at ASC
	`, templateID, userID)
}

func (d *DatabaseClient) listPrompts(query string, args ...interface{}) ([]models.Prompt, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var prompt models.Prompt
		err := rows.Scan(
			&prompt.ID, &prompt.UserID, &prompt.ProjectID, &prompt.TemplateID,
			&prompt.Name, &prompt.Prompt, &prompt.OrderNum, &prompt.CreatedAt, &prompt.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}

	return prompts, nil
}

func (d *DatabaseClient) UpdatePrompt(promptID uuid.UUID, userID string, name, promptText *string, orderNum *int) (*models.Prompt, error) {
	var updated models.Prompt
	err := d.db.QueryRow(`
		UPDATE prompts
		SET name = COALESCE($1, name),
		    prompt = COALESCE($2, prompt),
		    order_num = COALESCE($3, order_num),
		    updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, project_id, template_id, name, prompt, order_num, created_at, updated_at
	`, name, promptText, orderNum, promptID, userID).Scan(
		&updated.ID, &updated.UserID, &updated.ProjectID, &updated.TemplateID,
		&updated.Name, &updated.Prompt, &updated.OrderNum, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prompt not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}

	return &updated, nil
}

func (d *DatabaseClient) DeletePrompt(promptID uuid.UUID, userID string) (*models.Prompt, error) {
	var deleted models.Prompt
	err := d.db.QueryRow(`
		DELETE FROM prompts
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, project_id, template_id, name, prompt, order_num, created_at, updated_at
	`, promptID, userID).Scan(
		&deleted.ID, &deleted.UserID, &deleted.ProjectID, &deleted.TemplateID,
		&deleted.Name, &deleted.Prompt, &deleted.OrderNum, &deleted.CreatedAt, &deleted.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prompt not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete prompt: %w", err)
	}

	return &deleted, nil
}
