package poller

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"contentflow-backend/internal/models"
)

type fakeJobGateway struct {
	mu        sync.Mutex
	responses [][]models.AssetProcessingJobResponse
	errs      []error
	calls     int
}

func (f *fakeJobGateway) ListProcessingJobs(projectID string) ([]models.AssetProcessingJobResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return f.responses[len(f.responses)-1], nil
	}
	return f.responses[i], nil
}

func jobs(statuses map[string]string) []models.AssetProcessingJobResponse {
	var out []models.AssetProcessingJobResponse
	for assetID, status := range statuses {
		out = append(out, models.AssetProcessingJobResponse{AssetID: assetID, Status: status})
	}
	return out
}

func TestFreshCompletions(t *testing.T) {
	// A job flipping to completed is fresh, including jobs never seen before.
	fresh := FreshCompletions(
		map[string]string{"a1": models.JobStatusCreated},
		map[string]string{"a1": models.JobStatusCompleted, "a2": models.JobStatusCompleted},
	)
	assert.ElementsMatch(t, []string{"a1", "a2"}, fresh)

	// Already-completed jobs never count again.
	fresh = FreshCompletions(
		map[string]string{"a1": models.JobStatusCompleted},
		map[string]string{"a1": models.JobStatusCompleted},
	)
	assert.Empty(t, fresh)

	// Non-completed transitions do not count.
	fresh = FreshCompletions(
		map[string]string{"a1": models.JobStatusCreated},
		map[string]string{"a1": models.JobStatusInProgress, "a2": models.JobStatusFailed},
	)
	assert.Empty(t, fresh)
}

func TestPollOnce_TransitionTriggersOneRefetch(t *testing.T) {
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{
			jobs(map[string]string{"a1": models.JobStatusCreated}),
			jobs(map[string]string{"a1": models.JobStatusCompleted}),
		},
	}

	refetches := 0
	p := NewPoller("proj-1", gateway, func() { refetches++ })

	p.PollOnce()
	assert.Equal(t, 0, refetches)

	p.PollOnce()
	assert.Equal(t, 1, refetches)
}

func TestPollOnce_RepeatedCompletedDoesNotRetrigger(t *testing.T) {
	completed := jobs(map[string]string{"a1": models.JobStatusCompleted})
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{completed, completed},
	}

	refetches := 0
	p := NewPoller("proj-1", gateway, func() { refetches++ })

	// First observation of a completed job is fresh; the identical poll
	// right after must not retrigger.
	p.PollOnce()
	assert.Equal(t, 1, refetches)

	p.PollOnce()
	assert.Equal(t, 1, refetches)
}

func TestPollOnce_MultipleCompletionsOneRefetch(t *testing.T) {
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{
			jobs(map[string]string{"a1": models.JobStatusCreated, "a2": models.JobStatusCreated}),
			jobs(map[string]string{"a1": models.JobStatusCompleted, "a2": models.JobStatusCompleted}),
		},
	}

	refetches := 0
	p := NewPoller("proj-1", gateway, func() { refetches++ })

	p.PollOnce()
	p.PollOnce()
	assert.Equal(t, 1, refetches)
}

func TestPollOnce_FailedPollKeepsSnapshot(t *testing.T) {
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{
			jobs(map[string]string{"a1": models.JobStatusCompleted}),
			nil,
			jobs(map[string]string{"a1": models.JobStatusCompleted}),
		},
		errs: []error{nil, fmt.Errorf("network down"), nil},
	}

	refetches := 0
	p := NewPoller("proj-1", gateway, func() { refetches++ })

	p.PollOnce()
	assert.Equal(t, 1, refetches)

	// The failed poll is skipped; the next one still sees the old snapshot
	// and must not count the unchanged completed job again.
	p.PollOnce()
	p.PollOnce()
	assert.Equal(t, 1, refetches)
	assert.Equal(t, map[string]string{"a1": models.JobStatusCompleted}, p.Statuses())
}

func TestPollOnce_AfterStopDiscardsResult(t *testing.T) {
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{
			jobs(map[string]string{"a1": models.JobStatusCompleted}),
		},
	}

	var refetches int32
	p := NewPoller("proj-1", gateway, func() { atomic.AddInt32(&refetches, 1) })
	stop := p.Start()
	stop()
	stop() // idempotent

	// Let any in-flight poll from Start settle before sampling.
	time.Sleep(20 * time.Millisecond)

	// A poll landing after teardown must not touch state or fire callbacks.
	before := len(p.Statuses())
	refetchesBefore := atomic.LoadInt32(&refetches)
	p.PollOnce()
	assert.Equal(t, before, len(p.Statuses()))
	assert.Equal(t, refetchesBefore, atomic.LoadInt32(&refetches))
}

func TestStop_WaitsForInFlightCallback(t *testing.T) {
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{
			jobs(map[string]string{"a1": models.JobStatusCompleted}),
		},
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	p := NewPoller("proj-1", gateway, func() {
		close(entered)
		<-release
	})
	p.interval = time.Hour // only the immediate poll fires

	stop := p.Start()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("refetch callback never fired")
	}

	stopReturned := make(chan struct{})
	go func() {
		stop()
		close(stopReturned)
	}()

	// Teardown must block while the refetch callback is still running.
	select {
	case <-stopReturned:
		t.Fatal("stop returned while the callback was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopReturned:
	case <-time.After(time.Second):
		t.Fatal("stop did not return after the callback finished")
	}
}

func TestStart_PollsImmediatelyAndAtFixedRate(t *testing.T) {
	gateway := &fakeJobGateway{
		responses: [][]models.AssetProcessingJobResponse{
			jobs(map[string]string{"a1": models.JobStatusCreated}),
		},
	}

	p := NewPoller("proj-1", gateway, nil)
	p.interval = 10 * time.Millisecond

	stop := p.Start()
	defer stop()

	assert.Eventually(t, func() bool {
		gateway.mu.Lock()
		defer gateway.mu.Unlock()
		return gateway.calls >= 3
	}, time.Second, 5*time.Millisecond)

	stop()
	gateway.mu.Lock()
	after := gateway.calls
	gateway.mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	// At most one in-flight poll may finish after stop.
	assert.LessOrEqual(t, gateway.calls, after+1)
}
