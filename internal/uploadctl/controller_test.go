package uploadctl

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/models"
)

type fakeGateway struct {
	mu        sync.Mutex
	assets    []models.AssetResponse
	listErr   error
	deleteErr error
	listCalls int
}

func (f *fakeGateway) ListAssets(projectID string) ([]models.AssetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.AssetResponse(nil), f.assets...), nil
}

func (f *fakeGateway) DeleteAsset(projectID, assetID string) (*models.AssetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	for i, asset := range f.assets {
		if asset.ID == assetID {
			f.assets = append(f.assets[:i], f.assets[i+1:]...)
			return &asset, nil
		}
	}
	return nil, fmt.Errorf("asset not found")
}

type fakeTransport struct {
	mu      sync.Mutex
	gateway *fakeGateway
	failOn  map[string]bool
	uploads []string
}

func (f *fakeTransport) Upload(projectID, fileName, mimeType string, data []byte) (*models.AssetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[fileName] {
		return nil, fmt.Errorf("upload rejected")
	}
	f.uploads = append(f.uploads, fileName)
	asset := models.AssetResponse{
		ID:        fileName,
		ProjectID: projectID,
		Title:     fileName,
		FileName:  projectID + "/" + fileName,
		MimeType:  mimeType,
		Size:      int64(len(data)),
	}
	if f.gateway != nil {
		f.gateway.mu.Lock()
		f.gateway.assets = append(f.gateway.assets, asset)
		f.gateway.mu.Unlock()
	}
	return &asset, nil
}

func newTestController(gateway *fakeGateway, transport *fakeTransport) *Controller {
	c := NewController("proj-1", gateway, transport)
	c.refetchDelay = 0
	return c
}

func TestFetchAssets_ReplacesStateWholesale(t *testing.T) {
	gateway := &fakeGateway{assets: []models.AssetResponse{{ID: "a1"}, {ID: "a2"}}}
	c := newTestController(gateway, &fakeTransport{})

	assert.NoError(t, c.FetchAssets())
	assert.Len(t, c.Assets(), 2)
	assert.False(t, c.Loading())

	// Idempotent with no intervening mutation.
	assert.NoError(t, c.FetchAssets())
	assert.Len(t, c.Assets(), 2)
}

func TestFetchAssets_FailureKeepsStaleState(t *testing.T) {
	gateway := &fakeGateway{assets: []models.AssetResponse{{ID: "a1"}}}
	c := newTestController(gateway, &fakeTransport{})

	assert.NoError(t, c.FetchAssets())

	gateway.mu.Lock()
	gateway.listErr = fmt.Errorf("network down")
	gateway.mu.Unlock()

	assert.Error(t, c.FetchAssets())
	assert.Len(t, c.Assets(), 1)
	assert.False(t, c.Loading())
}

func TestHandleUpload_AllFilesSucceed(t *testing.T) {
	gateway := &fakeGateway{}
	transport := &fakeTransport{gateway: gateway}
	c := newTestController(gateway, transport)

	c.SelectFiles([]File{
		{Name: "a.mp4", MimeType: "video/mp4", Data: []byte("aa")},
		{Name: "b.mp3", MimeType: "audio/mpeg", Data: []byte("bb")},
		{Name: "c.txt", MimeType: "text/plain", Data: []byte("cc")},
	})

	count, err := c.HandleUpload()
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Empty(t, c.SelectedFiles())
	assert.Len(t, c.Assets(), 3)
	assert.False(t, c.Uploading())
}

func TestHandleUpload_SingleFailurePreservesSelection(t *testing.T) {
	gateway := &fakeGateway{}
	transport := &fakeTransport{gateway: gateway, failOn: map[string]bool{"b.mp3": true}}
	c := newTestController(gateway, transport)

	files := []File{
		{Name: "a.mp4", MimeType: "video/mp4", Data: []byte("aa")},
		{Name: "b.mp3", MimeType: "audio/mpeg", Data: []byte("bb")},
	}
	c.SelectFiles(files)

	count, err := c.HandleUpload()
	assert.Error(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, c.SelectedFiles(), 2)
	// No refetch happened, so nothing from this batch shows locally.
	assert.Empty(t, c.Assets())
	assert.False(t, c.Uploading())
}

func TestHandleUpload_EmptySelectionIsNoOp(t *testing.T) {
	gateway := &fakeGateway{}
	transport := &fakeTransport{gateway: gateway}
	c := newTestController(gateway, transport)

	count, err := c.HandleUpload()
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Zero(t, gateway.listCalls)
	assert.Empty(t, transport.uploads)
}

func TestHandleDelete_RemovesAssetAndRefetches(t *testing.T) {
	gateway := &fakeGateway{assets: []models.AssetResponse{{ID: "a1"}, {ID: "a2"}}}
	c := newTestController(gateway, &fakeTransport{})

	assert.NoError(t, c.FetchAssets())
	assert.NoError(t, c.HandleDelete("a1"))

	assets := c.Assets()
	assert.Len(t, assets, 1)
	for _, asset := range assets {
		assert.NotEqual(t, "a1", asset.ID)
	}
	assert.False(t, c.Deleting())
}

func TestHandleDelete_FailureLeavesStateUnchanged(t *testing.T) {
	gateway := &fakeGateway{assets: []models.AssetResponse{{ID: "a1"}}}
	c := newTestController(gateway, &fakeTransport{})

	assert.NoError(t, c.FetchAssets())

	gateway.mu.Lock()
	gateway.deleteErr = fmt.Errorf("server error")
	gateway.mu.Unlock()

	assert.Error(t, c.HandleDelete("a1"))
	assert.Len(t, c.Assets(), 1)
	assert.False(t, c.Deleting())
}
