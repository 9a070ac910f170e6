package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

type PromptsHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewPromptsHandler(dbClient *supabase.DatabaseClient) *PromptsHandler {
	return &PromptsHandler{
		dbClient: dbClient,
	}
}

// CreateProjectPrompt godoc
// @Summary     Create a prompt in a project
// @Tags        prompts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.PromptResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/prompts [post]
func (h *PromptsHandler) CreateProjectPrompt(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	h.createPrompt(c, userID, uuid.NullUUID{UUID: projectID, Valid: true}, uuid.NullUUID{})
}

// CreateTemplatePrompt godoc
// @Summary     Create a prompt in a template
// @Tags        prompts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       template_id path string true "Template ID (UUID)"
// @Success     200 {object} models.PromptResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /templates/{template_id}/prompts [post]
func (h *PromptsHandler) CreateTemplatePrompt(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetTemplate(templateID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "template not found",
			Message: err.Error(),
		})
		return
	}

	h.createPrompt(c, userID, uuid.NullUUID{}, uuid.NullUUID{UUID: templateID, Valid: true})
}

func (h *PromptsHandler) createPrompt(c *gin.Context, userID string, projectID, templateID uuid.NullUUID) {
	var req models.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	prompt, err := h.dbClient.CreatePrompt(&models.Prompt{
		UserID:     userID,
		ProjectID:  projectID,
		TemplateID: templateID,
		Name:       req.Name,
		Prompt:     req.Prompt,
		OrderNum:   req.OrderNum,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create prompt",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewPromptResponse(prompt))
}

// ListProjectPrompts godoc
// @Summary     List a project's prompts
// @Tags        prompts
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {array} models.PromptResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/prompts [get]
func (h *PromptsHandler) ListProjectPrompts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	prompts, err := h.dbClient.ListProjectPrompts(projectID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list prompts",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, promptResponses(prompts))
}

// ListTemplatePrompts godoc
// @Summary     List a template's prompts
// @Tags        prompts
// @Produce     json
// @Security    Bearer
// @Param       template_id path string true "Template ID (UUID)"
// @Success     200 {array} models.PromptResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /templates/{template_id}/prompts [get]
func (h *PromptsHandler) ListTemplatePrompts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetTemplate(templateID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "template not found",
			Message: err.Error(),
		})
		return
	}

	prompts, err := h.dbClient.ListTemplatePrompts(templateID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list prompts",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, promptResponses(prompts))
}

// UpdatePrompt godoc
// @Summary     Update a prompt
// @Description Partially updates a prompt's name, text, or order
// @Tags        prompts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       prompt_id path string true "Prompt ID (UUID)"
// @Success     200 {object} models.PromptResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /prompts/{prompt_id} [patch]
func (h *PromptsHandler) UpdatePrompt(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	promptID, ok := parsePromptID(c)
	if !ok {
		return
	}

	var req models.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	prompt, err := h.dbClient.UpdatePrompt(promptID, userID, req.Name, req.Prompt, req.OrderNum)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "prompt not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewPromptResponse(prompt))
}

// DeletePrompt godoc
// @Summary     Delete a prompt
// @Tags        prompts
// @Produce     json
// @Security    Bearer
// @Param       prompt_id path string true "Prompt ID (UUID)"
// @Success     200 {object} models.PromptResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /prompts/{prompt_id} [delete]
func (h *PromptsHandler) DeletePrompt(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	promptID, ok := parsePromptID(c)
	if !ok {
		return
	}

	prompt, err := h.dbClient.DeletePrompt(promptID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "prompt not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewPromptResponse(prompt))
}

func promptResponses(prompts []models.Prompt) []models.PromptResponse {
	responses := make([]models.PromptResponse, len(prompts))
	for i := range prompts {
		responses[i] = models.NewPromptResponse(&prompts[i])
	}
	return responses
}

func parsePromptID(c *gin.Context) (uuid.UUID, bool) {
	promptID, err := uuid.Parse(c.Param("prompt_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid prompt id"})
		return uuid.Nil, false
	}
	return promptID, true
}
