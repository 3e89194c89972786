package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
	"github.com/couchcryptid/nwp-ingest/internal/pipeline"
)

func TestRunner_Trigger(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 13, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	src := &stubSource{data: fullFieldData()}
	sink := &stubSink{}
	orch := newOrchestrator(src, sink, pipeline.RunConfig{
		Targets: []domain.Target{testTarget()},
	})
	runner := pipeline.NewRunner(orch, slog.Default())

	batchID, err := runner.Trigger(context.Background(), domain.ModelHRRR, testRunTime)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(batchID, "hrrr-"))
	assert.Len(t, batchID, len("hrrr-")+12)

	runner.Wait()
	assert.NotEmpty(t, sink.allPoints())
	assert.NoError(t, runner.CheckReadiness(context.Background()))

	t.Run("same trigger inputs reproduce the batch id", func(t *testing.T) {
		again, err := runner.Trigger(context.Background(), domain.ModelHRRR, testRunTime)
		require.NoError(t, err)
		assert.Equal(t, batchID, again)
		runner.Wait()
	})
}

func TestRunner_RejectsOverlappingRuns(t *testing.T) {
	src := &stubSource{data: fullFieldData(), block: make(chan struct{})}
	sink := &stubSink{}
	orch := newOrchestrator(src, sink, pipeline.RunConfig{
		Targets: []domain.Target{testTarget()},
	})
	runner := pipeline.NewRunner(orch, slog.Default())

	_, err := runner.Trigger(context.Background(), domain.ModelHRRR, testRunTime)
	require.NoError(t, err)

	_, err = runner.Trigger(context.Background(), domain.ModelHRRR, testRunTime)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrRunInProgress))

	// A different model is independent and may run concurrently.
	_, err = runner.Trigger(context.Background(), domain.ModelGFS, testRunTime)
	require.NoError(t, err)

	close(src.block)
	runner.Wait()

	// The slot frees once the run finishes.
	_, err = runner.Trigger(context.Background(), domain.ModelHRRR, testRunTime)
	require.NoError(t, err)
	runner.Wait()
}

func TestRunner_UnknownModel(t *testing.T) {
	orch := newOrchestrator(&stubSource{}, &stubSink{}, pipeline.RunConfig{})
	runner := pipeline.NewRunner(orch, slog.Default())

	_, err := runner.Trigger(context.Background(), "icon", testRunTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestRunner_NotReadyBeforeFirstRun(t *testing.T) {
	orch := newOrchestrator(&stubSource{}, &stubSink{}, pipeline.RunConfig{})
	runner := pipeline.NewRunner(orch, slog.Default())

	err := runner.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ingestion run has completed")
}

func TestRunner_FailedRunDoesNotMarkReady(t *testing.T) {
	failing := make(map[int]bool)
	for _, h := range domain.ForecastHours(domain.ModelHRRR) {
		failing[h] = true
	}
	orch := newOrchestrator(&stubSource{failing: failing}, &stubSink{}, pipeline.RunConfig{
		Targets: []domain.Target{testTarget()},
	})
	runner := pipeline.NewRunner(orch, slog.Default())

	_, err := runner.Trigger(context.Background(), domain.ModelHRRR, testRunTime)
	require.NoError(t, err)
	runner.Wait()

	assert.Error(t, runner.CheckReadiness(context.Background()))
}
