package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

type TemplatesHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewTemplatesHandler(dbClient *supabase.DatabaseClient) *TemplatesHandler {
	return &TemplatesHandler{
		dbClient: dbClient,
	}
}

func (h *TemplatesHandler) CreateTemplate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.CreateTemplateRequest{}
	}
	if req.Title == "" {
		req.Title = "New Template"
	}

	template, err := h.dbClient.CreateTemplate(userID, req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create template",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewTemplateResponse(template))
}

func (h *TemplatesHandler) ListTemplates(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	templates, err := h.dbClient.ListTemplates(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list templates",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = models.NewTemplateResponse(&templates[i])
	}

	c.JSON(http.StatusOK, responses)
}

func (h *TemplatesHandler) GetTemplate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}

	template, err := h.dbClient.GetTemplate(templateID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "template not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewTemplateResponse(template))
}

func (h *TemplatesHandler) UpdateTemplate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}

	var req models.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}

	template, err := h.dbClient.UpdateTemplateTitle(templateID, userID, req.Title)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "template not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewTemplateResponse(template))
}

func (h *TemplatesHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	templateID, ok := parseTemplateID(c)
	if !ok {
		return
	}

	template, err := h.dbClient.DeleteTemplate(templateID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "template not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewTemplateResponse(template))
}

func parseTemplateID(c *gin.Context) (uuid.UUID, bool) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid template id"})
		return uuid.Nil, false
	}
	return templateID, true
}
