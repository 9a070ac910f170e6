package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

type AssetsHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewAssetsHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) *AssetsHandler {
	return &AssetsHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// ListAssets godoc
// @Summary     List project assets
// @Description Returns every asset in a project, oldest first
// @Tags        assets
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {array} models.AssetResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{project_id}/assets [get]
func (h *AssetsHandler) ListAssets(c *gin.Context) {
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

	assets, err := h.dbClient.ListAssets(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list assets",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.AssetResponse, len(assets))
	for i := range assets {
		responses[i] = models.NewAssetResponse(&assets[i])
	}

	c.JSON(http.StatusOK, responses)
}

// DeleteAsset godoc
// @Summary     Delete an asset
// @Description Deletes one asset identified by the assetId query parameter and returns the deleted row
// @Tags        assets
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       assetId query string true "Asset ID (UUID)"
// @Success     200 {object} models.AssetResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/assets [delete]
func (h *AssetsHandler) DeleteAsset(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Query("assetId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid asset id"})
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

	asset, err := h.dbClient.DeleteAsset(projectID, assetID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "asset not found",
			Message: err.Error(),
		})
		return
	}

	// Blob removal is best-effort; the row is already gone.
	if err := h.storageClient.DeleteFile(asset.FileName); err != nil {
		log.Printf("Failed to delete blob %s: %v", asset.FileName, err)
	}

	c.JSON(http.StatusOK, models.NewAssetResponse(asset))
}
