package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// ErrRunInProgress reports that the model already has an active run.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// Runner serializes ingestion runs per model. Triggers return immediately
// with the run's batch ID; the run itself executes in the background.
type Runner struct {
	orch   *Orchestrator
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
	wg       sync.WaitGroup
	ready    atomic.Bool
}

// NewRunner creates a Runner around an Orchestrator.
func NewRunner(orch *Orchestrator, logger *slog.Logger) *Runner {
	return &Runner{
		orch:     orch,
		logger:   logger,
		inFlight: make(map[string]bool),
	}
}

// Trigger starts an ingestion run for the given model and run time. Only
// one run per model may be in flight; an overlapping trigger returns
// ErrRunInProgress so automated retriggers cannot pile up. ctx scopes the
// background run, not just the trigger.
func (r *Runner) Trigger(ctx context.Context, model string, runTime time.Time) (string, error) {
	if !domain.KnownModel(model) {
		return "", fmt.Errorf("unknown model %q", model)
	}

	r.mu.Lock()
	if r.inFlight[model] {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrRunInProgress, model)
	}
	r.inFlight[model] = true
	r.mu.Unlock()

	batchID := domain.BatchID(model, runTime, domain.Now())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.inFlight, model)
			r.mu.Unlock()
		}()

		if err := r.orch.Run(ctx, model, runTime, batchID); err != nil {
			r.logger.Error("ingestion run failed",
				"model", model, "batch_id", batchID, "error", err)
			return
		}
		r.ready.Store(true)
	}()

	return batchID, nil
}

// CheckReadiness returns nil once at least one run has completed
// successfully.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no ingestion run has completed yet")
	}
	return nil
}

// Wait blocks until all in-flight runs finish. Called during shutdown so
// partially flushed batches are not abandoned mid-write.
func (r *Runner) Wait() {
	r.wg.Wait()
}
