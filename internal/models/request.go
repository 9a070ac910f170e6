package models

type CreateProjectRequest struct {
	// Optional title; defaults to "New Project" when omitted.
	Title string `json:"title,omitempty"`
}

type UpdateProjectRequest struct {
	Title string `json:"title" binding:"required"`
}

type CreateTemplateRequest struct {
	// Optional title; defaults to "New Template" when omitted.
	Title string `json:"title,omitempty"`
}

type UpdateTemplateRequest struct {
	Title string `json:"title" binding:"required"`
}

type CreatePromptRequest struct {
	Name     string `json:"name" binding:"required"`
	Prompt   string `json:"prompt"`
	OrderNum int    `json:"order,omitempty"`
}

type UpdatePromptRequest struct {
	Name     *string `json:"name,omitempty"`
	Prompt   *string `json:"prompt,omitempty"`
	OrderNum *int    `json:"order,omitempty"`
}

// UploadMetadata is the client payload attached to an upload: it travels
// through the token to the completion callback, which persists it as the
// asset row.
type UploadMetadata struct {
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	FileType  string `json:"fileType"`
	MimeType  string `json:"mimeType"`
	Size      int64  `json:"size"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
