// Package pipeline orchestrates one ingestion run: fan out over the
// model's forecast hours, sample targets and AOIs from the decoded grids,
// and flush the extracted rows to the sink in bounded batches.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
	"github.com/couchcryptid/nwp-ingest/internal/observability"
	"github.com/couchcryptid/nwp-ingest/internal/sample"
)

// RunConfig carries the extraction inputs and tuning knobs for an
// Orchestrator.
type RunConfig struct {
	Variables []domain.VariableSpec
	Targets   []domain.Target
	Regions   []domain.Region

	// MaxConcurrentHours bounds forecast hours processed in parallel
	// across one run.
	MaxConcurrentHours int
	// BatchSize bounds rows per sink write.
	BatchSize int
}

// Orchestrator executes ingestion runs against a grid source and a record
// sink.
type Orchestrator struct {
	source  GridSource
	sink    RecordSink
	logger  *slog.Logger
	metrics *observability.Metrics
	cfg     RunConfig
}

// New creates an Orchestrator, applying defaults for unset tuning knobs.
func New(source GridSource, sink RecordSink, logger *slog.Logger, metrics *observability.Metrics, cfg RunConfig) *Orchestrator {
	if cfg.MaxConcurrentHours <= 0 {
		cfg.MaxConcurrentHours = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Orchestrator{
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// hourOutput collects everything extracted from one forecast hour.
type hourOutput struct {
	points []domain.PointRecord
	tiles  []domain.Tile
	err    error
}

// Run ingests every forecast hour of one model run. Hours are fetched
// concurrently but their outputs are merged in hour order, so replaying a
// run yields identical batches regardless of fetch completion order. A
// failed hour is skipped; the run errors only when every hour fails.
func (o *Orchestrator) Run(ctx context.Context, model string, runTime time.Time, batchID string) error {
	hours := domain.ForecastHours(model)
	if len(hours) == 0 {
		return fmt.Errorf("unknown model %q", model)
	}

	o.metrics.RunsActive.Inc()
	defer o.metrics.RunsActive.Dec()

	o.logger.Info("ingestion run started",
		"model", model, "run_time", runTime, "batch_id", batchID, "hours", len(hours))

	outputs := make([]hourOutput, len(hours))
	sem := make(chan struct{}, o.cfg.MaxConcurrentHours)
	var wg sync.WaitGroup

	for i, hour := range hours {
		wg.Add(1)
		go func(i, hour int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outputs[i] = o.processHour(ctx, model, runTime, hour, batchID)
		}(i, hour)
	}
	wg.Wait()

	var points []domain.PointRecord
	var tiles []domain.Tile
	skipped := 0
	for i, out := range outputs {
		if out.err != nil {
			skipped++
			o.metrics.HoursSkipped.Inc()
			o.logger.Warn("forecast hour skipped",
				"model", model, "hour", hours[i], "error", out.err)
			continue
		}
		points = append(points, out.points...)
		tiles = append(tiles, out.tiles...)
	}

	if skipped == len(hours) {
		return fmt.Errorf("all %d forecast hours failed for model %s", len(hours), model)
	}

	if err := o.flushPoints(ctx, points); err != nil {
		return err
	}
	if err := o.flushTiles(ctx, tiles); err != nil {
		return err
	}

	o.logger.Info("ingestion run complete",
		"model", model, "batch_id", batchID,
		"points", len(points), "tiles", len(tiles), "hours_skipped", skipped)
	return nil
}

// processHour fetches one forecast hour's grids and extracts point records
// and tiles from them. Grids are released before returning on every path.
func (o *Orchestrator) processHour(ctx context.Context, model string, runTime time.Time, hour int, batchID string) hourOutput {
	grids, err := o.source.FetchGrids(ctx, model, runTime, hour, o.cfg.Variables)
	if err != nil {
		return hourOutput{err: err}
	}
	defer func() {
		for _, g := range grids {
			if g != nil {
				g.Release()
			}
		}
	}()

	valid := domain.ValidTime(runTime, hour)

	var out hourOutput
	for _, t := range o.cfg.Targets {
		out.points = append(out.points, sample.TargetRecords(t, grids, model, runTime, valid)...)
	}

	var samples []domain.GridSamplePoint
	for _, r := range o.cfg.Regions {
		samples = append(samples, sample.Region(r, grids, model, runTime, valid)...)
	}
	out.tiles = sample.BuildTiles(samples, batchID)

	o.metrics.PointRecordsEmitted.Add(float64(len(out.points)))
	o.metrics.GridSamplesTaken.Add(float64(len(samples)))
	o.metrics.TilesEmitted.Add(float64(len(out.tiles)))
	return out
}

func (o *Orchestrator) flushPoints(ctx context.Context, records []domain.PointRecord) error {
	for start := 0; start < len(records); start += o.cfg.BatchSize {
		end := min(start+o.cfg.BatchSize, len(records))

		began := time.Now()
		res, err := o.sink.WritePoints(ctx, records[start:end])
		if err != nil {
			return fmt.Errorf("write point batch: %w", err)
		}
		o.metrics.BatchFlushDuration.Observe(time.Since(began).Seconds())
		o.logRejections("points", start, res)
	}
	return nil
}

func (o *Orchestrator) flushTiles(ctx context.Context, tiles []domain.Tile) error {
	for start := 0; start < len(tiles); start += o.cfg.BatchSize {
		end := min(start+o.cfg.BatchSize, len(tiles))

		began := time.Now()
		res, err := o.sink.WriteTiles(ctx, tiles[start:end])
		if err != nil {
			return fmt.Errorf("write tile batch: %w", err)
		}
		o.metrics.BatchFlushDuration.Observe(time.Since(began).Seconds())
		o.logRejections("tiles", start, res)
	}
	return nil
}

// logRejections surfaces per-row sink rejections. Rejected rows are not
// retried within the run; the batch identity makes a replay idempotent.
func (o *Orchestrator) logRejections(kind string, offset int, res domain.SinkResult) {
	for _, rej := range res.Rejected {
		o.metrics.SinkRejections.Inc()
		o.logger.Warn("sink rejected row",
			"kind", kind, "index", offset+rej.Index, "reason", rej.Reason)
	}
}
