package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCities = `[{"id":"silverton","name":"Silverton","lat":37.81,"lon":-107.66,"elevation_bands":[2800,3500]}]`

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CITIES_CONFIG", minimalCities)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "nwp-point-forecasts", cfg.KafkaPointsTopic)
	assert.Equal(t, "nwp-forecast-tiles", cfg.KafkaTilesTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.MaxConcurrentFetches)
	assert.Equal(t, 4, cfg.MaxConcurrentHours)
	assert.Empty(t, cfg.Regions)

	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, "silverton", cfg.Targets[0].ID)
	assert.Equal(t, []int{2800, 3500}, cfg.Targets[0].ElevationBands)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_POINTS_TOPIC", "custom-points")
	t.Setenv("KAFKA_TILES_TOPIC", "custom-tiles")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("FETCH_TIMEOUT", "90s")
	t.Setenv("MAX_CONCURRENT_FETCHES", "8")
	t.Setenv("MAX_CONCURRENT_HOURS", "2")
	t.Setenv("CITIES_CONFIG", minimalCities)
	t.Setenv("AOI_CONFIG", `[{"id":"san-juans","min_lat":37.0,"min_lon":-108.35,"max_lat":37.5,"max_lon":-107.45,"resolution":0.05,"polygon":[[37.0,-108.35],[37.5,-108.35],[37.5,-107.45],[37.0,-107.45]]}]`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-points", cfg.KafkaPointsTopic)
	assert.Equal(t, "custom-tiles", cfg.KafkaTilesTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 8, cfg.MaxConcurrentFetches)
	assert.Equal(t, 2, cfg.MaxConcurrentHours)

	require.Len(t, cfg.Regions, 1)
	assert.Equal(t, "san-juans", cfg.Regions[0].ID)
	assert.Equal(t, 0.05, cfg.Regions[0].Resolution)
	assert.Len(t, cfg.Regions[0].Polygon, 4)
}

func TestLoad_MissingTargets(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CITIES_CONFIG")
}

func TestLoad_MalformedCitiesConfig(t *testing.T) {
	t.Setenv("CITIES_CONFIG", `{"not":"an array"}`)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse CITIES_CONFIG")
}

func TestLoad_TargetWithoutID(t *testing.T) {
	t.Setenv("CITIES_CONFIG", `[{"name":"Nowhere","lat":1,"lon":2}]`)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestLoad_RegionWithoutResolution(t *testing.T) {
	t.Setenv("CITIES_CONFIG", minimalCities)
	t.Setenv("AOI_CONFIG", `[{"id":"flat","min_lat":1,"min_lon":2,"max_lat":3,"max_lon":4}]`)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive resolution")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("CITIES_CONFIG", minimalCities)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("CITIES_CONFIG", minimalCities)
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}
