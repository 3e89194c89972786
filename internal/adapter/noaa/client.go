package noaa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
	"github.com/couchcryptid/nwp-ingest/internal/gribidx"
	"github.com/couchcryptid/nwp-ingest/internal/observability"
)

// Client resolves and fetches the required fields of one GRIB2 file.
// It implements pipeline.GridSource.
type Client struct {
	httpClient    *http.Client
	decoder       domain.GridDecoder
	logger        *slog.Logger
	metrics       *observability.Metrics
	maxConcurrent int

	// baseURL overrides the bucket host when set, keeping only the object
	// path of the built URL.
	baseURL string
}

// NewClient creates a fetch client. maxConcurrent bounds simultaneous
// range requests against one remote file; upstream buckets rate-limit, so
// fan-out is never unbounded.
func NewClient(decoder domain.GridDecoder, timeout time.Duration, maxConcurrent int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		decoder:       decoder,
		logger:        logger,
		metrics:       metrics,
		maxConcurrent: maxConcurrent,
	}
}

// FetchGrids fetches, for one model/run/forecast-hour, the decoded grid of
// every required variable present in the file's idx manifest. A manifest
// fetch failure fails the whole hour; individual range or decode failures
// skip that variable only. The caller owns the returned grids and must
// release them after sampling.
func (c *Client) FetchGrids(ctx context.Context, model string, runTime time.Time, forecastHour int, specs []domain.VariableSpec) (map[string]domain.Grid, error) {
	fileURL, err := c.fileURL(model, runTime, forecastHour)
	if err != nil {
		return nil, err
	}

	idxContent, err := c.fetchIndex(ctx, IndexURL(fileURL))
	if err != nil {
		c.metrics.IndexFetches.WithLabelValues(model, "error").Inc()
		return nil, fmt.Errorf("fetch index for %s f%03d: %w", model, forecastHour, err)
	}
	c.metrics.IndexFetches.WithLabelValues(model, "success").Inc()

	ranges := gribidx.ResolveRanges(gribidx.ParseIndex(idxContent), specs)
	if len(ranges) == 0 {
		c.logger.Warn("no matching variables in index",
			"model", model, "forecast_hour", forecastHour, "url", fileURL)
		return map[string]domain.Grid{}, nil
	}

	return c.fetchRanges(ctx, model, fileURL, forecastHour, ranges), nil
}

func (c *Client) fileURL(model string, runTime time.Time, forecastHour int) (string, error) {
	u, err := FileURL(model, runTime, forecastHour)
	if err != nil {
		return "", err
	}
	if c.baseURL == "" {
		return u, nil
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	return c.baseURL + parsed.Path, nil
}

// fetchIndex retrieves the idx manifest, retrying transient failures with
// capped exponential backoff. 4xx statuses are permanent: the file is not
// there yet (or ever) and hammering the bucket will not change that.
func (c *Client) fetchIndex(ctx context.Context, url string) (string, error) {
	var content string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetch index: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("fetch index: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch index: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read index body: %w", err)
		}
		content = string(body)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return content, nil
}

// fetchRanges fetches and decodes each resolved byte range with bounded
// parallelism. Each task writes its own slot of the results slice; slots
// are merged after the join, so no locking is needed.
func (c *Client) fetchRanges(ctx context.Context, model, fileURL string, forecastHour int, ranges map[string]gribidx.ByteRange) map[string]domain.Grid {
	type task struct {
		name string
		br   gribidx.ByteRange
	}
	tasks := make([]task, 0, len(ranges))
	for name, br := range ranges {
		tasks = append(tasks, task{name: name, br: br})
	}

	results := make([]domain.Grid, len(tasks))
	sem := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup

	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.fetchOne(ctx, model, fileURL, forecastHour, tk.name, tk.br)
		}(i, tk)
	}
	wg.Wait()

	grids := make(map[string]domain.Grid, len(tasks))
	for i, tk := range tasks {
		if results[i] != nil {
			grids[tk.name] = results[i]
		}
	}
	return grids
}

// fetchOne issues a single partial-content request and decodes the payload.
// Failures return nil: the variable is unavailable for this hour, logged
// with enough context to diagnose, and the hour carries on without it.
func (c *Client) fetchOne(ctx context.Context, model, fileURL string, forecastHour int, name string, br gribidx.ByteRange) domain.Grid {
	start := time.Now()
	defer func() {
		c.metrics.RangeFetchDuration.Observe(time.Since(start).Seconds())
	}()

	rangeHeader := fmt.Sprintf("bytes=%d-", br.Start)
	if br.End != gribidx.OpenEnd {
		rangeHeader = fmt.Sprintf("bytes=%d-%d", br.Start, br.End-1)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		c.metrics.RangeFetches.WithLabelValues(model, "http_error").Inc()
		return nil
	}
	req.Header.Set("Range", rangeHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("range fetch failed",
			"variable", name, "url", fileURL, "range", rangeHeader, "error", err)
		c.metrics.RangeFetches.WithLabelValues(model, "http_error").Inc()
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected status for range fetch",
			"variable", name, "url", fileURL, "range", rangeHeader, "status", resp.StatusCode)
		c.metrics.RangeFetches.WithLabelValues(model, "http_error").Inc()
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("range body read failed",
			"variable", name, "url", fileURL, "range", rangeHeader, "error", err)
		c.metrics.RangeFetches.WithLabelValues(model, "http_error").Inc()
		return nil
	}

	grid, err := c.decoder.Decode(data)
	if err != nil {
		c.logger.Warn("decode failed",
			"variable", name, "url", fileURL, "forecast_hour", forecastHour, "error", err)
		c.metrics.RangeFetches.WithLabelValues(model, "decode_error").Inc()
		return nil
	}

	c.metrics.RangeFetches.WithLabelValues(model, "success").Inc()
	return grid
}
