package worker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

type fakeStore struct {
	mu           sync.Mutex
	claimable    []models.AssetProcessingJob
	assets       map[uuid.UUID]*models.Asset
	content      map[uuid.UUID]string
	statuses     map[uuid.UUID][]string
	failures     map[uuid.UUID]int
	heartbeats   map[uuid.UUID]int
	claimStamped map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assets:       map[uuid.UUID]*models.Asset{},
		content:      map[uuid.UUID]string{},
		statuses:     map[uuid.UUID][]string{},
		failures:     map[uuid.UUID]int{},
		heartbeats:   map[uuid.UUID]int{},
		claimStamped: map[uuid.UUID]bool{},
	}
}

func (f *fakeStore) ClaimableJobs(maxAttempts int, heartbeatCutoff time.Time) ([]models.AssetProcessingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs := f.claimable
	f.claimable = nil
	return jobs, nil
}

func (f *fakeStore) ClaimJob(jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[jobID] = append(f.statuses[jobID], models.JobStatusInProgress)
	f.claimStamped[jobID] = true
	return nil
}

func (f *fakeStore) GetAsset(assetID uuid.UUID) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assets[assetID]
	if !ok {
		return nil, fmt.Errorf("asset not found")
	}
	return asset, nil
}

func (f *fakeStore) UpdateAssetContent(assetID uuid.UUID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[assetID] = content
	return nil
}

func (f *fakeStore) UpdateJobStatus(jobID uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[jobID] = append(f.statuses[jobID], status)
	return nil
}

func (f *fakeStore) UpdateJobFailure(jobID uuid.UUID, errorMsg string, attempts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[jobID] = append(f.statuses[jobID], models.JobStatusFailed)
	f.failures[jobID] = attempts
	return nil
}

func (f *fakeStore) UpdateJobHeartbeat(jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeats[jobID]++
	return nil
}

type fakeDownloader struct {
	files map[string][]byte
	err   error
}

func (f *fakeDownloader) DownloadFile(pathname string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[pathname]
	if !ok {
		return nil, fmt.Errorf("file not found")
	}
	return data, nil
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(fileName string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

func newTestProcessor(store *fakeStore, storage *fakeDownloader, transcriber *fakeTranscriber) *Processor {
	return NewProcessor(store, storage, transcriber, supabase.NewRealtimeClient(nil),
		10*time.Millisecond, 10*time.Millisecond, 3)
}

func makeJob(store *fakeStore, fileType string) models.AssetProcessingJob {
	assetID := uuid.New()
	store.assets[assetID] = &models.Asset{
		ID:       assetID,
		FileName: "proj-1/file.bin",
		FileType: fileType,
		Content:  sql.NullString{},
	}
	return models.AssetProcessingJob{
		ID:        uuid.New(),
		AssetID:   assetID,
		ProjectID: uuid.New(),
		Status:    models.JobStatusCreated,
	}
}

func TestProcessJob_TextContentExtraction(t *testing.T) {
	store := newFakeStore()
	storage := &fakeDownloader{files: map[string][]byte{"proj-1/file.bin": []byte("hello notes")}}
	p := newTestProcessor(store, storage, &fakeTranscriber{})

	job := makeJob(store, models.FileTypeText)
	p.processJob(context.Background(), job)

	assert.Equal(t, "hello notes", store.content[job.AssetID])
	assert.Equal(t, []string{models.JobStatusInProgress, models.JobStatusCompleted}, store.statuses[job.ID])
	// The claim itself stamps the heartbeat so no other worker picks the
	// job up before the first tick.
	assert.True(t, store.claimStamped[job.ID])
}

func TestProcessJob_MarkdownContentExtraction(t *testing.T) {
	store := newFakeStore()
	storage := &fakeDownloader{files: map[string][]byte{"proj-1/file.bin": []byte("# heading")}}
	p := newTestProcessor(store, storage, &fakeTranscriber{})

	job := makeJob(store, models.FileTypeMarkdown)
	p.processJob(context.Background(), job)

	assert.Equal(t, "# heading", store.content[job.AssetID])
	assert.Equal(t, []string{models.JobStatusInProgress, models.JobStatusCompleted}, store.statuses[job.ID])
}

func TestProcessJob_AudioTranscription(t *testing.T) {
	store := newFakeStore()
	storage := &fakeDownloader{files: map[string][]byte{"proj-1/file.bin": []byte("audio-bytes")}}
	transcriber := &fakeTranscriber{transcript: "spoken words"}
	p := newTestProcessor(store, storage, transcriber)

	job := makeJob(store, models.FileTypeAudio)
	p.processJob(context.Background(), job)

	assert.Equal(t, "spoken words", store.content[job.AssetID])
	assert.Equal(t, []string{models.JobStatusInProgress, models.JobStatusCompleted}, store.statuses[job.ID])
}

func TestProcessJob_TranscriptionFailureIncrementsAttempts(t *testing.T) {
	store := newFakeStore()
	storage := &fakeDownloader{files: map[string][]byte{"proj-1/file.bin": []byte("video-bytes")}}
	transcriber := &fakeTranscriber{err: fmt.Errorf("transcription service down")}
	p := newTestProcessor(store, storage, transcriber)

	job := makeJob(store, models.FileTypeVideo)
	job.Attempts = 1
	p.processJob(context.Background(), job)

	assert.Equal(t, 2, store.failures[job.ID])
	assert.Equal(t, []string{models.JobStatusInProgress, models.JobStatusFailed}, store.statuses[job.ID])
	assert.Empty(t, store.content[job.AssetID])
}

func TestProcessJob_OtherFileTypeCompletesWithoutContent(t *testing.T) {
	store := newFakeStore()
	p := newTestProcessor(store, &fakeDownloader{}, &fakeTranscriber{})

	job := makeJob(store, models.FileTypeOther)
	p.processJob(context.Background(), job)

	assert.Empty(t, store.content[job.AssetID])
	assert.Equal(t, []string{models.JobStatusInProgress, models.JobStatusCompleted}, store.statuses[job.ID])
}

func TestRun_DrainsClaimableJobsUntilCancelled(t *testing.T) {
	store := newFakeStore()
	storage := &fakeDownloader{files: map[string][]byte{"proj-1/file.bin": []byte("text")}}
	p := newTestProcessor(store, storage, &fakeTranscriber{})

	job := makeJob(store, models.FileTypeText)
	store.claimable = []models.AssetProcessingJob{job}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		statuses := store.statuses[job.ID]
		return len(statuses) == 2 && statuses[1] == models.JobStatusCompleted
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after cancellation")
	}
}
