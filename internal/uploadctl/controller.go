package uploadctl

import (
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"contentflow-backend/internal/models"
)

// AssetGateway is the read/delete surface of the assets API.
// client.Client satisfies it.
type AssetGateway interface {
	ListAssets(projectID string) ([]models.AssetResponse, error)
	DeleteAsset(projectID, assetID string) (*models.AssetResponse, error)
}

// UploadTransport moves one file to storage end to end: token, blob upload,
// completion callback. client.Client satisfies it.
type UploadTransport interface {
	Upload(projectID, fileName, mimeType string, data []byte) (*models.AssetResponse, error)
}

// File is a locally-selected file pending upload.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Controller owns the set of files pending upload for one project, drives the
// concurrent uploads, and caches the project's asset list. All local state is
// a cache of the persistence gateway, replaced wholesale on every successful
// fetch, never patched incrementally.
type Controller struct {
	projectID string
	gateway   AssetGateway
	transport UploadTransport

	// Bridges the window between the provider's completion callback
	// inserting the asset row and the next list fetch observing it.
	refetchDelay time.Duration

	mu        sync.Mutex
	selected  []File
	assets    []models.AssetResponse
	uploading bool
	loading   bool
	deleting  bool
}

func NewController(projectID string, gateway AssetGateway, transport UploadTransport) *Controller {
	return &Controller{
		projectID:    projectID,
		gateway:      gateway,
		transport:    transport,
		refetchDelay: time.Second,
	}
}

// SelectFiles replaces the pending file selection.
func (c *Controller) SelectFiles(files []File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = files
}

func (c *Controller) SelectedFiles() []File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]File(nil), c.selected...)
}

func (c *Controller) Assets() []models.AssetResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.AssetResponse(nil), c.assets...)
}

func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) Deleting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleting
}

// FetchAssets replaces the cached asset list with the gateway's current view.
// The loading flag is raised only while the cache is still empty, so later
// refreshes do not flicker. On failure the cache stays as it was, stale but
// consistent.
func (c *Controller) FetchAssets() error {
	c.mu.Lock()
	if len(c.assets) == 0 {
		c.loading = true
	}
	c.mu.Unlock()

	assets, err := c.gateway.ListAssets(c.projectID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		log.Printf("Failed to fetch assets for project %s: %v", c.projectID, err)
		return fmt.Errorf("failed to fetch assets: %w", err)
	}
	c.assets = assets

	return nil
}

// HandleUpload uploads every pending file concurrently and waits for all of
// them to settle. If any single upload fails the whole operation fails and
// the selection is kept for retry. On success it waits the refetch delay,
// refreshes the asset list, clears the selection, and returns the number of
// files uploaded. An empty selection is a no-op.
func (c *Controller) HandleUpload() (int, error) {
	c.mu.Lock()
	if len(c.selected) == 0 {
		c.mu.Unlock()
		return 0, nil
	}
	files := append([]File(nil), c.selected...)
	c.uploading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	// Plain errgroup, not WithContext: every upload runs to completion even
	// after the first failure, matching all-settle semantics.
	var g errgroup.Group
	for _, file := range files {
		file := file
		g.Go(func() error {
			_, err := c.transport.Upload(c.projectID, file.Name, file.MimeType, file.Data)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Upload batch failed for project %s: %v", c.projectID, err)
		return 0, fmt.Errorf("failed to upload files: %w", err)
	}

	time.Sleep(c.refetchDelay)
	if err := c.FetchAssets(); err != nil {
		log.Printf("Post-upload refetch failed for project %s: %v", c.projectID, err)
	}

	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()

	return len(files), nil
}

// HandleDelete deletes one asset and refreshes the asset list on success.
// A single deleting flag serializes deletes; a second call while one is in
// flight is rejected.
func (c *Controller) HandleDelete(assetID string) error {
	c.mu.Lock()
	if c.deleting {
		c.mu.Unlock()
		return fmt.Errorf("a delete is already in progress")
	}
	c.deleting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.deleting = false
		c.mu.Unlock()
	}()

	if _, err := c.gateway.DeleteAsset(c.projectID, assetID); err != nil {
		log.Printf("Failed to delete asset %s: %v", assetID, err)
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if err := c.FetchAssets(); err != nil {
		log.Printf("Post-delete refetch failed for project %s: %v", c.projectID, err)
	}

	return nil
}
