package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/blob"
	"contentflow-backend/internal/config"
	"contentflow-backend/internal/handlers"
)

func newUploadRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SupabaseJWTSecret: "test-jwt-secret",
		UploadTokenSecret: "test-upload-secret",
	}
	handler := handlers.NewUploadHandler(cfg, blob.NewTokenIssuer(cfg.UploadTokenSecret), nil, nil)

	router := gin.New()
	router.POST("/api/upload", handler.HandleUpload)
	return router
}

func TestUploadHandler_InvalidBody(t *testing.T) {
	router := newUploadRouter()

	req, _ := http.NewRequest("POST", "/api/upload", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_UnknownEventType(t *testing.T) {
	router := newUploadRouter()

	body := `{"type": "blob.something-else", "payload": {}}`
	req, _ := http.NewRequest("POST", "/api/upload", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown event type")
}

func TestUploadHandler_GenerateToken_NoAuth(t *testing.T) {
	router := newUploadRouter()

	body := `{"type": "blob.generate-client-token", "payload": {"pathname": "p/f.mp4"}}`
	req, _ := http.NewRequest("POST", "/api/upload", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadHandler_Completed_BadToken(t *testing.T) {
	router := newUploadRouter()

	// A bad token must come back 400 so the provider retries the callback.
	body := `{"type": "blob.upload-completed", "payload": {"blob": {"url": "http://x/f.mp4", "pathname": "p/f.mp4"}, "tokenPayload": "garbage"}}`
	req, _ := http.NewRequest("POST", "/api/upload", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid upload token")
}
