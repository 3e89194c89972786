package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PointRecord is one extracted forecast sample for a named target at one
// valid time. Every metric is independently nullable: absence of a field in
// the source file produces nil, never a fabricated value.
type PointRecord struct {
	TargetID  string    `json:"target_id"`
	Model     string    `json:"model_name"`
	RunTime   time.Time `json:"run_time"`
	ValidTime time.Time `json:"valid_time"`

	// ElevationBand is the target elevation in meters for lapse-adjusted
	// records; nil marks the base (sea-level/model-surface) sample.
	ElevationBand *int `json:"elevation_band"`

	Temperature      *float64 `json:"temperature_2m"`
	Precip           *float64 `json:"precip_kg_m2"`
	WindSpeed        *float64 `json:"wind_speed_10m"`
	WindDir          *float64 `json:"wind_dir_10m"`
	SnowDepth        *float64 `json:"snow_depth"`
	FreezingLevel    *float64 `json:"freezing_level_m"`
	CAPE             *float64 `json:"cape"`
	RelativeHumidity *float64 `json:"relative_humidity"`
}

// Empty reports whether every metric is nil. Empty base records carry no
// signal and are dropped before emission.
func (r PointRecord) Empty() bool {
	return r.Temperature == nil && r.Precip == nil && r.WindSpeed == nil &&
		r.WindDir == nil && r.SnowDepth == nil && r.FreezingLevel == nil &&
		r.CAPE == nil && r.RelativeHumidity == nil
}

// WithElevationBand derives the record for an elevation band from a base
// record. Only temperature is lapse-adjusted; every other metric is copied
// unchanged.
func (r PointRecord) WithElevationBand(band int) PointRecord {
	banded := r
	banded.ElevationBand = &band
	if r.Temperature != nil {
		adjusted := LapseAdjust(*r.Temperature, band)
		banded.Temperature = &adjusted
	}
	return banded
}

// Key returns the sink message key for the record.
func (r PointRecord) Key() string {
	band := "base"
	if r.ElevationBand != nil {
		band = fmt.Sprintf("%d", *r.ElevationBand)
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.TargetID, r.Model, r.ValidTime.UTC().Format(time.RFC3339), band)
}

// GridSamplePoint is one AOI lattice sample. Wind is kept as the orthogonal
// U/V pair rather than speed/direction so later spatial aggregation stays
// linearly interpolable.
type GridSamplePoint struct {
	AoiID     string    `json:"aoi_id"`
	Model     string    `json:"model_name"`
	RunTime   time.Time `json:"run_time"`
	ValidTime time.Time `json:"valid_time"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`

	Temperature      *float64 `json:"temperature_2m"`
	Precip           *float64 `json:"precip_kg_m2"`
	WindU            *float64 `json:"wind_u_10m"`
	WindV            *float64 `json:"wind_v_10m"`
	SnowDepth        *float64 `json:"snow_depth"`
	RelativeHumidity *float64 `json:"relative_humidity"`
}

// TileField is one metric's summary statistics within a tile. Min, Max and
// Mean are nil when every sample in the tile was null for that field.
type TileField struct {
	Name      string   `json:"field_name"`
	Min       *float64 `json:"min_value"`
	Max       *float64 `json:"max_value"`
	Mean      *float64 `json:"mean_value"`
	NullCount int      `json:"null_count"`
}

// Tile is a deterministic spatial bucket of grid samples, keyed by the
// truncated integer degree cell, for one model/run/valid-time.
type Tile struct {
	BatchID   string    `json:"batch_id"`
	Model     string    `json:"model_name"`
	RunTime   time.Time `json:"run_time"`
	ValidTime time.Time `json:"valid_time"`
	LatBin    int       `json:"lat_bin"`
	LonBin    int       `json:"lon_bin"`

	MinLat      float64 `json:"min_lat"`
	MaxLat      float64 `json:"max_lat"`
	MinLon      float64 `json:"min_lon"`
	MaxLon      float64 `json:"max_lon"`
	RowCount    int     `json:"row_count"` // distinct latitudes sampled
	ColCount    int     `json:"col_count"` // distinct longitudes sampled
	SampleCount int     `json:"sample_count"`

	Fields []TileField `json:"fields"`
}

// Key returns the sink message key for the tile.
func (t Tile) Key() string {
	return fmt.Sprintf("%s|%d|%d|%s", t.BatchID, t.LatBin, t.LonBin, t.ValidTime.UTC().Format(time.RFC3339))
}

// BatchID generates a deterministic identifier for one ingestion run.
// Hashing model|run|trigger time makes replays of the same trigger
// idempotent downstream while distinct triggers stay distinguishable.
func BatchID(model string, runTime, triggeredAt time.Time) string {
	input := fmt.Sprintf("%s|%s|%s", model,
		runTime.UTC().Format(time.RFC3339),
		triggeredAt.UTC().Format(time.RFC3339))
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%s-%s", model, hex.EncodeToString(sum[:])[:12])
}

// RejectedRow identifies one row the sink refused within a batch.
type RejectedRow struct {
	Index  int
	Reason string
}

// SinkResult reports the outcome of writing one batch to the sink.
// Rejected rows are logged by the orchestrator but not retried within the
// same run.
type SinkResult struct {
	Written  int
	Rejected []RejectedRow
}
