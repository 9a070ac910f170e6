package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/handlers"
	"contentflow-backend/internal/middleware"
	"contentflow-backend/internal/models"
)

type fakeProjectStore struct {
	project   *models.Project
	dbDeletes int
}

func (f *fakeProjectStore) CreateProject(userID, title string) (*models.Project, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeProjectStore) GetProject(projectID uuid.UUID, userID string) (*models.Project, error) {
	if f.project == nil || f.project.ID != projectID || f.project.UserID != userID {
		return nil, fmt.Errorf("failed to get project: no rows")
	}
	return f.project, nil
}

func (f *fakeProjectStore) ListProjects(userID string) ([]models.Project, error) {
	return nil, nil
}

func (f *fakeProjectStore) UpdateProjectTitle(projectID uuid.UUID, userID, title string) (*models.Project, error) {
	return nil, fmt.Errorf("project not found")
}

func (f *fakeProjectStore) DeleteProject(projectID uuid.UUID, userID string) error {
	if f.project == nil || f.project.ID != projectID || f.project.UserID != userID {
		return fmt.Errorf("project not found")
	}
	f.dbDeletes++
	return nil
}

type fakeProjectBlobStore struct {
	deleteCalls int
}

func (f *fakeProjectBlobStore) DeleteProjectFiles(projectID string) error {
	f.deleteCalls++
	return nil
}

func newProjectsRouter(userID string, store *fakeProjectStore, blobs *fakeProjectBlobStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewProjectsHandler(store, blobs)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	router.DELETE("/api/projects/:project_id", handler.DeleteProject)
	return router
}

func TestDeleteProject_NonOwnerLeavesStorageUntouched(t *testing.T) {
	projectID := uuid.New()
	store := &fakeProjectStore{project: &models.Project{ID: projectID, UserID: "owner"}}
	blobs := &fakeProjectBlobStore{}
	router := newProjectsRouter("intruder", store, blobs)

	req, _ := http.NewRequest("DELETE", "/api/projects/"+projectID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// A caller who does not own the project gets a 404 before any blob or
	// row is removed.
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, blobs.deleteCalls)
	assert.Zero(t, store.dbDeletes)
}

func TestDeleteProject_OwnerRemovesBlobsAndRow(t *testing.T) {
	projectID := uuid.New()
	store := &fakeProjectStore{project: &models.Project{ID: projectID, UserID: "owner"}}
	blobs := &fakeProjectBlobStore{}
	router := newProjectsRouter("owner", store, blobs)

	req, _ := http.NewRequest("DELETE", "/api/projects/"+projectID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, blobs.deleteCalls)
	assert.Equal(t, 1, store.dbDeletes)
}
