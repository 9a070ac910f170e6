package supabase

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"contentflow-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) CreateProject(userID, title string) (*models.Project, error) {
	var project models.Project
	err := d.db.QueryRow(`
		INSERT INTO projects (title, user_id)
		VALUES ($1, $2)
		RETURNING id, title, user_id, created_at, updated_at
	`, title, userID).Scan(
		&project.ID, &project.Title, &project.UserID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return &project, nil
}

func (d *DatabaseClient) GetProject(projectID uuid.UUID, userID string) (*models.Project, error) {
	var project models.Project
	err := d.db.QueryRow(`
		SELECT id, title, user_id, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID).Scan(
		&project.ID, &project.Title, &project.UserID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

func (d *DatabaseClient) ListProjects(userID string) ([]models.Project, error) {
	rows, err := d.db.Query(`
		SELECT id, title, user_id, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID, &project.Title, &project.UserID, &project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

func (d *DatabaseClient) UpdateProjectTitle(projectID uuid.UUID, userID, title string) (*models.Project, error) {
	var project models.Project
	err := d.db.QueryRow(`
		UPDATE projects
		SET title = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING id, title, user_id, created_at, updated_at
	`, title, projectID, userID).Scan(
		&project.ID, &project.Title, &project.UserID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &project, nil
}

func (d *DatabaseClient) DeleteProject(projectID uuid.UUID, userID string) error {
	var deletedID uuid.UUID
	err := d.db.QueryRow(`
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2
		RETURNING id
	`, projectID, userID).Scan(&deletedID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("project not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (d *DatabaseClient) CreateAsset(asset *models.Asset) (*models.Asset, error) {
	var created models.Asset
	err := d.db.QueryRow(`
		INSERT INTO assets (project_id, title, file_name, file_url, file_type, mime_type, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, project_id, title, file_name, file_url, file_type, mime_type, size, content, created_at, updated_at
	`, asset.ProjectID, asset.Title, asset.FileName, asset.FileURL,
		asset.FileType, asset.MimeType, asset.Size).Scan(
		&created.ID, &created.ProjectID, &created.Title, &created.FileName, &created.FileURL,
		&created.FileType, &created.MimeType, &created.Size, &created.Content,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return &created, nil
}

func (d *DatabaseClient) ListAssets(projectID uuid.UUID) ([]models.Asset, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, title, file_name, file_url, file_type, mime_type, size, content, created_at, updated_at
		FROM assets
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		err := rows.Scan(
			&asset.ID, &asset.ProjectID, &asset.Title, &asset.FileName, &asset.FileURL,
			&asset.FileType, &asset.MimeType, &asset.Size, &asset.Content,
			&asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	return assets, nil
}

func (d *DatabaseClient) GetAsset(assetID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := d.db.QueryRow(`
		SELECT id, project_id, title, file_name, file_url, file_type, mime_type, size, content, created_at, updated_at
		FROM assets
		WHERE id = $1
	`, assetID).Scan(
		&asset.ID, &asset.ProjectID, &asset.Title, &asset.FileName, &asset.FileURL,
		&asset.FileType, &asset.MimeType, &asset.Size, &asset.Content,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

// DeleteAsset removes an asset scoped to its project and returns the deleted
// row. The cascade removes the asset's processing job.
func (d *DatabaseClient) DeleteAsset(projectID, assetID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := d.db.QueryRow(`
		DELETE FROM assets
		WHERE id = $1 AND project_id = $2
		RETURNING id, project_id, title, file_name, file_url, file_type, mime_type, size, content, created_at, updated_at
	`, assetID, projectID).Scan(
		&asset.ID, &asset.ProjectID, &asset.Title, &asset.FileName, &asset.FileURL,
		&asset.FileType, &asset.MimeType, &asset.Size, &asset.Content,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete asset: %w", err)
	}

	return &asset, nil
}

func (d *DatabaseClient) UpdateAssetContent(assetID uuid.UUID, content string) error {
	_, err := d.db.Exec(`
		UPDATE assets
		SET content = $1, updated_at = NOW()
		WHERE id = $2
	`, content, assetID)
	return err
}

func (d *DatabaseClient) CreateProcessingJob(assetID, projectID uuid.UUID) (*models.AssetProcessingJob, error) {
	var job models.AssetProcessingJob
	err := d.db.QueryRow(`
		INSERT INTO asset_processing_jobs (asset_id, project_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, asset_id, project_id, status, attempts, last_heart_beat, error_message, created_at, updated_at
	`, assetID, projectID, models.JobStatusCreated).Scan(
		&job.ID, &job.AssetID, &job.ProjectID, &job.Status, &job.Attempts,
		&job.LastHeartBeat, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create processing job: %w", err)
	}

	return &job, nil
}

func (d *DatabaseClient) ListProcessingJobs(projectID uuid.UUID) ([]models.AssetProcessingJob, error) {
	rows, err := d.db.Query(`
		SELECT id, asset_id, project_id, status, attempts, last_heart_beat, error_message, created_at, updated_at
		FROM asset_processing_jobs
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// ClaimableJobs returns jobs the worker may pick up: freshly created, failed
// with attempts to spare, or stuck in progress past the heartbeat cutoff.
func (d *DatabaseClient) ClaimableJobs(maxAttempts int, heartbeatCutoff time.Time) ([]models.AssetProcessingJob, error) {
	rows, err := d.db.Query(`
		SELECT id, asset_id, project_id, status, attempts, last_heart_beat, error_message, created_at, updated_at
		FROM asset_processing_jobs
		WHERE status = $1
		   OR (status = $2 AND attempts < $3)
		   OR (status = $4 AND (last_heart_beat IS NULL OR last_heart_beat < $5))
		ORDER BY created_at ASC
	`, models.JobStatusCreated, models.JobStatusFailed, maxAttempts,
		models.JobStatusInProgress, heartbeatCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimable jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

func scanJobs(rows *sql.Rows) ([]models.AssetProcessingJob, error) {
	var jobs []models.AssetProcessingJob
	for rows.Next() {
		var job models.AssetProcessingJob
		err := rows.Scan(
			&job.ID, &job.AssetID, &job.ProjectID, &job.Status, &job.Attempts,
			&job.LastHeartBeat, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processing job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// ClaimJob marks a job in progress and stamps its heartbeat in the same
// statement, so a freshly claimed job never matches the stale-heartbeat arm
// of ClaimableJobs before its first heartbeat tick.
func (d *DatabaseClient) ClaimJob(jobID uuid.UUID) error {
	_, err := d.db.Exec(`
		UPDATE asset_processing_jobs
		SET status = $1, last_heart_beat = NOW(), updated_at = NOW()
		WHERE id = $2
	`, models.JobStatusInProgress, jobID)
	return err
}

func (d *DatabaseClient) UpdateJobStatus(jobID uuid.UUID, status string) error {
	_, err := d.db.Exec(`
		UPDATE asset_processing_jobs
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, jobID)
	return err
}

func (d *DatabaseClient) UpdateJobFailure(jobID uuid.UUID, errorMsg string, attempts int) error {
	_, err := d.db.Exec(`
		UPDATE asset_processing_jobs
		SET status = $1, error_message = $2, attempts = $3, updated_at = NOW()
		WHERE id = $4
	`, models.JobStatusFailed, errorMsg, attempts, jobID)
	return err
}

func (d *DatabaseClient) UpdateJobHeartbeat(jobID uuid.UUID) error {
	_, err := d.db.Exec(`
		UPDATE asset_processing_jobs
		SET last_heart_beat = NOW()
		WHERE id = $1
	`, jobID)
	return err
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
