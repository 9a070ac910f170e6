package poller

import (
	"log"
	"sync"
	"time"

	"contentflow-backend/internal/models"
)

// JobGateway is the job-status read surface of the API.
// client.Client satisfies it.
type JobGateway interface {
	ListProcessingJobs(projectID string) ([]models.AssetProcessingJobResponse, error)
}

// FreshCompletions compares two asset-id to status mappings and returns the
// asset ids whose status became "completed" in the new mapping after not
// being "completed" before, including jobs absent from the old mapping.
func FreshCompletions(prev, next map[string]string) []string {
	var fresh []string
	for assetID, status := range next {
		if status != models.JobStatusCompleted {
			continue
		}
		if prev[assetID] != models.JobStatusCompleted {
			fresh = append(fresh, assetID)
		}
	}
	return fresh
}

// Poller watches a project's processing jobs by polling and fires a refresh
// callback whenever at least one job freshly completes. It keeps an immutable
// snapshot of the previous poll's asset-id to status mapping and swaps it
// wholesale each cycle.
type Poller struct {
	projectID string
	gateway   JobGateway
	interval  time.Duration

	// onCompleted runs once per poll that observed at least one fresh
	// completion, typically the asset refetch. It is invoked under the
	// poller's lock so no callback can start after Stop returns; it must
	// not call back into the poller.
	onCompleted func()

	mu       sync.Mutex
	snapshot map[string]string
	stopped  bool
}

func NewPoller(projectID string, gateway JobGateway, onCompleted func()) *Poller {
	return &Poller{
		projectID:   projectID,
		gateway:     gateway,
		interval:    time.Second,
		onCompleted: onCompleted,
		snapshot:    map[string]string{},
	}
}

// Statuses returns the asset-id to status mapping from the latest poll.
func (p *Poller) Statuses() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	statuses := make(map[string]string, len(p.snapshot))
	for assetID, status := range p.snapshot {
		statuses[assetID] = status
	}
	return statuses
}

// PollOnce fetches the project's jobs, diffs against the previous snapshot,
// and fires the refresh callback when at least one fresh completion occurred.
// The snapshot is replaced unconditionally. A failed fetch is logged and
// skipped; the snapshot stays as it was. A poll that lands after Stop is
// discarded without touching state.
func (p *Poller) PollOnce() {
	jobs, err := p.gateway.ListProcessingJobs(p.projectID)
	if err != nil {
		log.Printf("Failed to poll processing jobs for project %s: %v", p.projectID, err)
		return
	}

	next := make(map[string]string, len(jobs))
	for _, job := range jobs {
		next[job.AssetID] = job.Status
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	fresh := FreshCompletions(p.snapshot, next)
	p.snapshot = next

	// Fired under the lock: a concurrent Stop blocks until the callback
	// returns, so nothing can run after teardown completes.
	if len(fresh) > 0 && p.onCompleted != nil {
		p.onCompleted()
	}
}

// Start polls once immediately, then at a fixed rate until the returned stop
// function is called. Stopping is idempotent and cancels the timer; a poll
// already in flight may still finish but will not update state.
func (p *Poller) Start() (stop func()) {
	done := make(chan struct{})

	go func() {
		p.PollOnce()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.PollOnce()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.stopped = true
			p.mu.Unlock()
			close(done)
		})
	}
}
