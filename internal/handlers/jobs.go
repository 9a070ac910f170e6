package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

type JobsHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewJobsHandler(dbClient *supabase.DatabaseClient) *JobsHandler {
	return &JobsHandler{
		dbClient: dbClient,
	}
}

// ListProcessingJobs godoc
// @Summary     List asset processing jobs
// @Description Returns every processing job in a project; the dashboard polls this to observe status transitions
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {array} models.AssetProcessingJobResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{project_id}/asset-processing-jobs [get]
func (h *JobsHandler) ListProcessingJobs(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	// Verify project belongs to user
	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	jobs, err := h.dbClient.ListProcessingJobs(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list processing jobs",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.AssetProcessingJobResponse, len(jobs))
	for i := range jobs {
		responses[i] = models.NewAssetProcessingJobResponse(&jobs[i])
	}

	c.JSON(http.StatusOK, responses)
}
