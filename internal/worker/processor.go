package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentflow-backend/internal/models"
	"contentflow-backend/internal/supabase"
)

// JobStore is the slice of the database the worker needs.
// supabase.DatabaseClient satisfies it.
type JobStore interface {
	ClaimableJobs(maxAttempts int, heartbeatCutoff time.Time) ([]models.AssetProcessingJob, error)
	ClaimJob(jobID uuid.UUID) error
	GetAsset(assetID uuid.UUID) (*models.Asset, error)
	UpdateAssetContent(assetID uuid.UUID, content string) error
	UpdateJobStatus(jobID uuid.UUID, status string) error
	UpdateJobFailure(jobID uuid.UUID, errorMsg string, attempts int) error
	UpdateJobHeartbeat(jobID uuid.UUID) error
}

// Downloader fetches stored blob bytes by pathname.
// supabase.StorageClient satisfies it.
type Downloader interface {
	DownloadFile(pathname string) ([]byte, error)
}

// Transcriber turns media bytes into text.
// TranscribeClient satisfies it.
type Transcriber interface {
	Transcribe(fileName string, data []byte) (string, error)
}

// Processor is the background worker that drains asset processing jobs. Each
// cycle it claims everything runnable: freshly created jobs, failed jobs with
// attempts to spare, and in-progress jobs whose heartbeat went stale. Text
// and markdown assets get their content read straight from storage; audio and
// video go through transcription.
type Processor struct {
	store          JobStore
	storage        Downloader
	transcriber    Transcriber
	realtimeClient *supabase.RealtimeClient

	pollInterval      time.Duration
	heartbeatInterval time.Duration
	maxAttempts       int
}

func NewProcessor(store JobStore, storage Downloader, transcriber Transcriber, realtimeClient *supabase.RealtimeClient, pollInterval, heartbeatInterval time.Duration, maxAttempts int) *Processor {
	return &Processor{
		store:             store,
		storage:           storage,
		transcriber:       transcriber,
		realtimeClient:    realtimeClient,
		pollInterval:      pollInterval,
		heartbeatInterval: heartbeatInterval,
		maxAttempts:       maxAttempts,
	}
}

// Run drains jobs until the context is cancelled.
func (p *Processor) Run(ctx context.Context) {
	log.Printf("Asset processor started (poll %s, max attempts %d)", p.pollInterval, p.maxAttempts)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		p.runCycle(ctx)

		select {
		case <-ctx.Done():
			log.Printf("Asset processor stopping: %v", ctx.Err())
			return
		case <-ticker.C:
		}
	}
}

func (p *Processor) runCycle(ctx context.Context) {
	// A job whose heartbeat is older than three intervals is considered
	// abandoned by a dead worker and may be reclaimed.
	cutoff := time.Now().Add(-3 * p.heartbeatInterval)
	jobs, err := p.store.ClaimableJobs(p.maxAttempts, cutoff)
	if err != nil {
		log.Printf("Failed to list claimable jobs: %v", err)
		return
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processJob(ctx, job)
	}
}

func (p *Processor) processJob(ctx context.Context, job models.AssetProcessingJob) {
	// Claiming stamps the heartbeat along with the status flip, otherwise
	// the job is reclaimable until the first heartbeat tick.
	if err := p.store.ClaimJob(job.ID); err != nil {
		log.Printf("Failed to claim job %s: %v", job.ID, err)
		return
	}

	// Heartbeat for as long as the job runs, so other workers leave it alone.
	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatCtx.Done():
				return
			case <-ticker.C:
				if err := p.store.UpdateJobHeartbeat(job.ID); err != nil {
					log.Printf("Failed to heartbeat job %s: %v", job.ID, err)
				}
			}
		}
	}()

	err := p.runJob(job)

	stopHeartbeat()
	wg.Wait()

	if err != nil {
		attempts := job.Attempts + 1
		log.Printf("Job %s failed (attempt %d/%d): %v", job.ID, attempts, p.maxAttempts, err)
		if dbErr := p.store.UpdateJobFailure(job.ID, err.Error(), attempts); dbErr != nil {
			log.Printf("Failed to record failure for job %s: %v", job.ID, dbErr)
		}
		if pubErr := p.realtimeClient.PublishProjectEvent(job.ProjectID, "job_failed",
			supabase.JobFailedPayload(job.ProjectID, job.AssetID, err.Error())); pubErr != nil {
			log.Printf("Failed to publish failure event for job %s: %v", job.ID, pubErr)
		}
		return
	}

	if err := p.store.UpdateJobStatus(job.ID, models.JobStatusCompleted); err != nil {
		log.Printf("Failed to mark job %s completed: %v", job.ID, err)
		return
	}
	if pubErr := p.realtimeClient.PublishProjectEvent(job.ProjectID, "job_completed",
		supabase.JobStatusPayload(job.ProjectID, job.AssetID, models.JobStatusCompleted)); pubErr != nil {
		log.Printf("Failed to publish completion event for job %s: %v", job.ID, pubErr)
	}
	log.Printf("Job %s completed for asset %s", job.ID, job.AssetID)
}

// runJob extracts or transcribes the asset's content and writes it back to
// the asset row.
func (p *Processor) runJob(job models.AssetProcessingJob) error {
	asset, err := p.store.GetAsset(job.AssetID)
	if err != nil {
		return fmt.Errorf("failed to load asset: %w", err)
	}

	switch asset.FileType {
	case models.FileTypeText, models.FileTypeMarkdown:
		data, err := p.storage.DownloadFile(asset.FileName)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", asset.FileName, err)
		}
		if err := p.store.UpdateAssetContent(asset.ID, string(data)); err != nil {
			return fmt.Errorf("failed to store content: %w", err)
		}

	case models.FileTypeAudio, models.FileTypeVideo:
		data, err := p.storage.DownloadFile(asset.FileName)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", asset.FileName, err)
		}
		transcript, err := p.transcriber.Transcribe(asset.FileName, data)
		if err != nil {
			return fmt.Errorf("failed to transcribe %s: %w", asset.FileName, err)
		}
		if err := p.store.UpdateAssetContent(asset.ID, transcript); err != nil {
			return fmt.Errorf("failed to store transcript: %w", err)
		}

	default:
		// Nothing to extract; the job still completes so the dashboard
		// stops showing it as pending.
	}

	return nil
}
