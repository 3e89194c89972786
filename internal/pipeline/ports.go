package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// GridSource fetches and decodes the requested variables for one forecast
// hour of a model run.
type GridSource interface {
	FetchGrids(ctx context.Context, model string, runTime time.Time, forecastHour int, specs []domain.VariableSpec) (map[string]domain.Grid, error)
}

// RecordSink persists extracted rows. Partial acceptance is expected:
// rejected rows come back in the result rather than failing the batch.
type RecordSink interface {
	WritePoints(ctx context.Context, records []domain.PointRecord) (domain.SinkResult, error)
	WriteTiles(ctx context.Context, tiles []domain.Tile) (domain.SinkResult, error)
}
