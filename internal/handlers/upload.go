package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"contentflow-backend/internal/blob"
	"contentflow-backend/internal/config"
	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

const (
	UploadEventGenerateToken   = "blob.generate-client-token"
	UploadEventUploadCompleted = "blob.upload-completed"
)

type UploadRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type GenerateTokenPayload struct {
	Pathname      string                `json:"pathname"`
	ClientPayload models.UploadMetadata `json:"clientPayload"`
}

type GenerateTokenResponse struct {
	Type        string `json:"type"`
	ClientToken string `json:"clientToken"`
}

type UploadCompletedPayload struct {
	Blob struct {
		URL         string `json:"url"`
		Pathname    string `json:"pathname"`
		ContentType string `json:"contentType"`
	} `json:"blob"`
	TokenPayload string `json:"tokenPayload"`
}

type UploadCompletedResponse struct {
	Type  string               `json:"type"`
	Asset models.AssetResponse `json:"asset"`
}

// UploadHandler serves the upload transport callback. It lives outside the
// auth middleware because the storage provider calls the completion event
// without a user session; token generation authenticates the user itself.
type UploadHandler struct {
	config         *config.Config
	tokenIssuer    *blob.TokenIssuer
	dbClient       *supabase.DatabaseClient
	realtimeClient *supabase.RealtimeClient
}

func NewUploadHandler(cfg *config.Config, tokenIssuer *blob.TokenIssuer, dbClient *supabase.DatabaseClient, realtimeClient *supabase.RealtimeClient) *UploadHandler {
	return &UploadHandler{
		config:         cfg,
		tokenIssuer:    tokenIssuer,
		dbClient:       dbClient,
		realtimeClient: realtimeClient,
	}
}

// HandleUpload godoc
// @Summary     Upload transport callback
// @Description Dispatches on the event type: issues a client upload token, or records a completed upload as an asset with a processing job
// @Tags        upload
// @Accept      json
// @Produce     json
// @Success     200 {object} GenerateTokenResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /upload [post]
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	switch req.Type {
	case UploadEventGenerateToken:
		h.generateClientToken(c, req.Payload)
	case UploadEventUploadCompleted:
		h.uploadCompleted(c, req.Payload)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown event type %q", req.Type),
		})
	}
}

func (h *UploadHandler) generateClientToken(c *gin.Context, payload json.RawMessage) {
	userID, ok := h.authenticateUser(c)
	if !ok {
		return
	}

	var body GenerateTokenPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid token payload",
			Message: err.Error(),
		})
		return
	}

	projectID, err := uuid.Parse(body.ClientPayload.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	// The user must own the destination project before any token is issued.
	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	meta := body.ClientPayload
	if meta.FileType == "" {
		meta.FileType = models.FileTypeForMIME(meta.MimeType)
	}

	token, err := h.tokenIssuer.IssueToken(body.Pathname, meta)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to issue upload token",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, GenerateTokenResponse{
		Type:        UploadEventGenerateToken,
		ClientToken: token,
	})
}

// uploadCompleted records a finished upload. The asset row and its processing
// job are inserted in sequence rather than one transaction; a crash in between
// leaves an asset without a job, which the provider's retry of this callback
// cannot repair. Any failure returns 400 so the provider retries the event.
func (h *UploadHandler) uploadCompleted(c *gin.Context, payload json.RawMessage) {
	var body UploadCompletedPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid completion payload",
			Message: err.Error(),
		})
		return
	}

	pathname, meta, err := h.tokenIssuer.VerifyToken(body.TokenPayload)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid upload token",
			Message: err.Error(),
		})
		return
	}

	if body.Blob.Pathname != "" && body.Blob.Pathname != pathname {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "blob pathname does not match token",
		})
		return
	}

	projectID, err := uuid.Parse(meta.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(pathname), path.Ext(pathname))
	}

	asset, err := h.dbClient.CreateAsset(&models.Asset{
		ProjectID: projectID,
		Title:     title,
		FileName:  pathname,
		FileURL:   body.Blob.URL,
		FileType:  meta.FileType,
		MimeType:  meta.MimeType,
		Size:      meta.Size,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to record asset",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.dbClient.CreateProcessingJob(asset.ID, projectID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to create processing job",
			Message: err.Error(),
		})
		return
	}

	if err := h.realtimeClient.PublishProjectEvent(projectID, "asset_uploaded",
		supabase.AssetUploadedPayload(projectID, asset.ID)); err != nil {
		log.Printf("Failed to publish upload event for asset %s: %v", asset.ID, err)
	}

	c.JSON(http.StatusOK, UploadCompletedResponse{
		Type:  UploadEventUploadCompleted,
		Asset: models.NewAssetResponse(asset),
	})
}

// authenticateUser validates the caller's bearer token directly since this
// route sits outside the auth middleware.
func (h *UploadHandler) authenticateUser(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "authorization header required"})
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.config.SupabaseJWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token claims"})
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "token missing subject"})
		return "", false
	}

	return sub, true
}
