package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contentflow-backend/internal/handlers"
	"contentflow-backend/internal/models"
)

// BlobUploader pushes bytes to the storage backend and returns the public URL.
// supabase.StorageClient satisfies it.
type BlobUploader interface {
	UploadFile(pathname, contentType string, data []byte) (string, error)
}

// Client is the REST client the dashboard-facing tooling uses against this
// API: asset listing, deletion, job polling, and the full two-phase upload.
type Client struct {
	baseURL    string
	authToken  string
	uploader   BlobUploader
	httpClient *http.Client
}

func NewClient(baseURL, authToken string, uploader BlobUploader) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		authToken: authToken,
		uploader:  uploader,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListAssets retrieves all assets in a project
func (c *Client) ListAssets(projectID string) ([]models.AssetResponse, error) {
	endpoint := c.baseURL + "/api/projects/" + projectID + "/assets"
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list assets: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result []models.AssetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return result, nil
}

// DeleteAsset deletes one asset and returns the deleted row
func (c *Client) DeleteAsset(projectID, assetID string) (*models.AssetResponse, error) {
	params := url.Values{}
	params.Add("assetId", assetID)
	endpoint := c.baseURL + "/api/projects/" + projectID + "/assets?" + params.Encode()

	req, err := http.NewRequest("DELETE", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to delete asset: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result models.AssetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return &result, nil
}

// ListProcessingJobs retrieves all processing jobs in a project
func (c *Client) ListProcessingJobs(projectID string) ([]models.AssetProcessingJobResponse, error) {
	endpoint := c.baseURL + "/api/projects/" + projectID + "/asset-processing-jobs"
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list processing jobs: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result []models.AssetProcessingJobResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return result, nil
}

// GenerateUploadToken requests a client token authorizing a direct upload
func (c *Client) GenerateUploadToken(pathname string, meta models.UploadMetadata) (string, error) {
	payload, err := json.Marshal(handlers.GenerateTokenPayload{
		Pathname:      pathname,
		ClientPayload: meta,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqBody, err := json.Marshal(handlers.UploadRequest{
		Type:    handlers.UploadEventGenerateToken,
		Payload: payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/api/upload"
	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to generate upload token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result handlers.GenerateTokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return result.ClientToken, nil
}

// CompleteUpload reports a finished blob upload so the asset row and its
// processing job get created
func (c *Client) CompleteUpload(clientToken, blobURL, pathname, contentType string) (*models.AssetResponse, error) {
	var completed handlers.UploadCompletedPayload
	completed.Blob.URL = blobURL
	completed.Blob.Pathname = pathname
	completed.Blob.ContentType = contentType
	completed.TokenPayload = clientToken

	payload, err := json.Marshal(completed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqBody, err := json.Marshal(handlers.UploadRequest{
		Type:    handlers.UploadEventUploadCompleted,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/api/upload"
	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to complete upload: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result handlers.UploadCompletedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return &result.Asset, nil
}

// Upload runs the full two-phase flow for one file: token request, direct
// blob upload, then the completion callback. The destination pathname is
// always {projectID}/{fileName}.
func (c *Client) Upload(projectID, fileName, mimeType string, data []byte) (*models.AssetResponse, error) {
	pathname := projectID + "/" + fileName
	meta := models.UploadMetadata{
		ProjectID: projectID,
		Title:     fileName,
		FileType:  models.FileTypeForMIME(mimeType),
		MimeType:  mimeType,
		Size:      int64(len(data)),
	}

	token, err := c.GenerateUploadToken(pathname, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload token for %s: %w", fileName, err)
	}

	blobURL, err := c.uploader.UploadFile(pathname, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	// The completion callback is the one leg the upload provider itself
	// retries; do the same here so a transient failure does not strand an
	// already-uploaded blob without an asset row.
	var asset *models.AssetResponse
	err = c.RetryWithBackoff(func() error {
		var completeErr error
		asset, completeErr = c.CompleteUpload(token, blobURL, pathname, mimeType)
		return completeErr
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to complete upload of %s: %w", fileName, err)
	}

	return asset, nil
}

// RetryWithBackoff executes a function with exponential backoff retry logic
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
