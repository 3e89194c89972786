package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRunTime   = time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	testValidTime = time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
)

func baseRecord() PointRecord {
	return PointRecord{
		TargetID:    "durango",
		Model:       "HRRR",
		RunTime:     testRunTime,
		ValidTime:   testValidTime,
		Temperature: f(280),
		WindSpeed:   f(5),
		WindDir:     f(0),
		SnowDepth:   f(0.12),
	}
}

func TestPointRecordEmpty(t *testing.T) {
	assert.True(t, PointRecord{TargetID: "x", Model: "GFS"}.Empty())
	assert.False(t, baseRecord().Empty())
	assert.False(t, PointRecord{CAPE: f(0)}.Empty(), "zero is a value, not absence")
}

func TestWithElevationBand(t *testing.T) {
	base := baseRecord()
	banded := base.WithElevationBand(3500)

	require.NotNil(t, banded.ElevationBand)
	assert.Equal(t, 3500, *banded.ElevationBand)
	assert.Equal(t, 267.0, *banded.Temperature, "temperature lapse-adjusted")
	assert.Equal(t, *base.WindSpeed, *banded.WindSpeed, "other metrics copied unchanged")
	assert.Equal(t, *base.SnowDepth, *banded.SnowDepth)
	assert.Nil(t, base.ElevationBand, "base record untouched")
	assert.Equal(t, 280.0, *base.Temperature)

	t.Run("nil temperature stays nil", func(t *testing.T) {
		r := PointRecord{Precip: f(1.5)}
		banded := r.WithElevationBand(2000)
		assert.Nil(t, banded.Temperature)
		assert.Equal(t, 1.5, *banded.Precip)
	})
}

func TestBatchID(t *testing.T) {
	trigger := time.Date(2024, 4, 26, 16, 4, 12, 0, time.UTC)

	id1 := BatchID("hrrr", testRunTime, trigger)
	id2 := BatchID("hrrr", testRunTime, trigger)
	assert.Equal(t, id1, id2, "deterministic for identical inputs")
	assert.Contains(t, id1, "hrrr-")

	assert.NotEqual(t, id1, BatchID("gfs", testRunTime, trigger))
	assert.NotEqual(t, id1, BatchID("hrrr", testRunTime, trigger.Add(time.Second)))
}

func TestPointRecordKey(t *testing.T) {
	base := baseRecord()
	assert.Equal(t, "durango|HRRR|2024-04-26T15:00:00Z|base", base.Key())

	banded := base.WithElevationBand(2500)
	assert.Equal(t, "durango|HRRR|2024-04-26T15:00:00Z|2500", banded.Key())
}
