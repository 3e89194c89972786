// Package config loads service settings from environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaPointsTopic string
	KafkaTilesTopic  string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize            int
	FetchTimeout         time.Duration
	MaxConcurrentFetches int
	MaxConcurrentHours   int

	// Targets come from CITIES_CONFIG, a JSON array. At least one target
	// is required: a run with nothing to sample would only burn bucket
	// bandwidth.
	Targets []domain.Target
	// Regions come from AOI_CONFIG and may be empty.
	Regions []domain.Region
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 500)
	if err != nil {
		return nil, err
	}
	maxFetches, err := parsePositiveInt("MAX_CONCURRENT_FETCHES", 4)
	if err != nil {
		return nil, err
	}
	maxHours, err := parsePositiveInt("MAX_CONCURRENT_HOURS", 4)
	if err != nil {
		return nil, err
	}

	targets, err := parseTargets(os.Getenv("CITIES_CONFIG"))
	if err != nil {
		return nil, err
	}
	regions, err := parseRegions(os.Getenv("AOI_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPointsTopic: envOrDefault("KAFKA_POINTS_TOPIC", "nwp-point-forecasts"),
		KafkaTilesTopic:  envOrDefault("KAFKA_TILES_TOPIC", "nwp-forecast-tiles"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,

		BatchSize:            batchSize,
		FetchTimeout:         fetchTimeout,
		MaxConcurrentFetches: maxFetches,
		MaxConcurrentHours:   maxHours,

		Targets: targets,
		Regions: regions,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaPointsTopic == "" {
		return nil, errors.New("KAFKA_POINTS_TOPIC is required")
	}
	if cfg.KafkaTilesTopic == "" {
		return nil, errors.New("KAFKA_TILES_TOPIC is required")
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("CITIES_CONFIG must define at least one target")
	}

	return cfg, nil
}

func parseTargets(raw string) ([]domain.Target, error) {
	if raw == "" {
		return nil, nil
	}
	var targets []domain.Target
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return nil, fmt.Errorf("parse CITIES_CONFIG: %w", err)
	}
	for i, t := range targets {
		if t.ID == "" {
			return nil, fmt.Errorf("parse CITIES_CONFIG: target %d has no id", i)
		}
	}
	return targets, nil
}

func parseRegions(raw string) ([]domain.Region, error) {
	if raw == "" {
		return nil, nil
	}
	var regions []domain.Region
	if err := json.Unmarshal([]byte(raw), &regions); err != nil {
		return nil, fmt.Errorf("parse AOI_CONFIG: %w", err)
	}
	for i, r := range regions {
		if r.ID == "" {
			return nil, fmt.Errorf("parse AOI_CONFIG: region %d has no id", i)
		}
		if r.Resolution <= 0 {
			return nil, fmt.Errorf("parse AOI_CONFIG: region %q has non-positive resolution", r.ID)
		}
	}
	return regions, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
