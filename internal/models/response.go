package models

import "time"

// Wire shapes use the camelCase field names the dashboard's REST contract is
// built around (assetId, fileUrl, ...), not the snake_case of the columns.

type ProjectResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AssetResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	FileType  string    `json:"fileType"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AssetProcessingJobResponse struct {
	ID           string    `json:"id"`
	AssetID      string    `json:"assetId"`
	ProjectID    string    `json:"projectId"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type TemplateResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PromptResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId,omitempty"`
	TemplateID string    `json:"templateId,omitempty"`
	Name       string    `json:"name"`
	Prompt     string    `json:"prompt"`
	OrderNum   int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NewProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID.String(),
		Title:     p.Title,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewAssetResponse(a *Asset) AssetResponse {
	resp := AssetResponse{
		ID:        a.ID.String(),
		ProjectID: a.ProjectID.String(),
		Title:     a.Title,
		FileName:  a.FileName,
		FileURL:   a.FileURL,
		FileType:  a.FileType,
		MimeType:  a.MimeType,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Content.Valid {
		resp.Content = a.Content.String
	}
	return resp
}

func NewAssetProcessingJobResponse(j *AssetProcessingJob) AssetProcessingJobResponse {
	resp := AssetProcessingJobResponse{
		ID:        j.ID.String(),
		AssetID:   j.AssetID.String(),
		ProjectID: j.ProjectID.String(),
		Status:    j.Status,
		Attempts:  j.Attempts,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.ErrorMessage.Valid {
		resp.ErrorMessage = j.ErrorMessage.String
	}
	return resp
}

func NewTemplateResponse(t *Template) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID.String(),
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func NewPromptResponse(p *Prompt) PromptResponse {
	resp := PromptResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Prompt:    p.Prompt,
		OrderNum:  p.OrderNum,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.ProjectID.Valid {
		resp.ProjectID = p.ProjectID.UUID.String()
	}
	if p.TemplateID.Valid {
		resp.TemplateID = p.TemplateID.UUID.String()
	}
	return resp
}
