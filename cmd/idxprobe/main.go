// Command idxprobe fetches the idx manifest for one model run and forecast
// hour and prints which required variables resolve to which byte ranges.
// Useful for checking level-matching behavior against live bucket data
// without running a full ingestion.
//
// Usage:
//
//	go run ./cmd/idxprobe -model hrrr -hour 6
//	go run ./cmd/idxprobe -model gfs -run 2024-04-26T12:00:00Z -hour 24
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/adapter/noaa"
	"github.com/couchcryptid/nwp-ingest/internal/domain"
	"github.com/couchcryptid/nwp-ingest/internal/gribidx"
)

func main() {
	model := flag.String("model", "hrrr", "model name (hrrr, gfs, nam, ecmwf)")
	runArg := flag.String("run", "", "run time, RFC3339 (default: latest estimated run)")
	hour := flag.Int("hour", 0, "forecast hour")
	flag.Parse()

	if code := run(*model, *runArg, *hour); code != 0 {
		os.Exit(code)
	}
}

func run(model, runArg string, hour int) int {
	if !domain.KnownModel(model) {
		fmt.Fprintf(os.Stderr, "unknown model %q\n", model)
		return 1
	}

	runTime := domain.LatestRunTime(model)
	if runArg != "" {
		parsed, err := time.Parse(time.RFC3339, runArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -run: %v\n", err)
			return 1
		}
		runTime = parsed
	}

	fileURL, err := noaa.FileURL(model, runTime, hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build url: %v\n", err)
		return 1
	}
	idxURL := noaa.IndexURL(fileURL)

	fmt.Printf("model:    %s\n", model)
	fmt.Printf("run:      %s\n", runTime.UTC().Format(time.RFC3339))
	fmt.Printf("hour:     f%03d\n", hour)
	fmt.Printf("index:    %s\n\n", idxURL)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(idxURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch index: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "fetch index: status %d\n", resp.StatusCode)
		return 1
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read index: %v\n", err)
		return 1
	}

	descriptors := gribidx.ParseIndex(string(body))
	ranges := gribidx.ResolveRanges(descriptors, domain.DefaultVariables)

	fmt.Printf("%d index entries, %d of %d variables resolved\n\n",
		len(descriptors), len(ranges), len(domain.DefaultVariables))

	for _, spec := range domain.DefaultVariables {
		br, ok := ranges[spec.Name]
		if !ok {
			fmt.Printf("  %-20s (absent)\n", spec.Name)
			continue
		}
		end := "EOF"
		if br.End != gribidx.OpenEnd {
			end = fmt.Sprintf("%d", br.End)
		}
		fmt.Printf("  %-20s bytes %d-%s\n", spec.Name, br.Start, end)
	}
	return 0
}
