package domain

import (
	"fmt"
	"regexp"
	"time"
)

// objectPathRe matches HRRR object paths in availability notifications,
// e.g. "hrrr.20240426/conus/hrrr.t12z.wrfsfcf00.grib2".
var objectPathRe = regexp.MustCompile(`hrrr\.(\d{8})/conus/hrrr\.t(\d{2})z`)

// Known model names, matching the NOAA Open Data bucket layout.
const (
	ModelHRRR  = "hrrr"
	ModelGFS   = "gfs"
	ModelNAM   = "nam"
	ModelECMWF = "ecmwf"
)

// KnownModel reports whether name is a supported model.
func KnownModel(name string) bool {
	switch name {
	case ModelHRRR, ModelGFS, ModelNAM, ModelECMWF:
		return true
	}
	return false
}

// ForecastHours returns the default forecast-hour schedule for a model.
func ForecastHours(model string) []int {
	switch model {
	case ModelHRRR:
		return hourRange(0, 18, 1) // hourly out to 18h
	case ModelGFS:
		return hourRange(0, 120, 3)
	case ModelNAM:
		return hourRange(0, 60, 3)
	case ModelECMWF:
		return hourRange(0, 120, 6)
	default:
		return hourRange(0, 24, 1)
	}
}

// ValidTime returns the forecast valid time for a run and forecast hour.
func ValidTime(runTime time.Time, forecastHour int) time.Time {
	return runTime.UTC().Add(time.Duration(forecastHour) * time.Hour)
}

// LatestRunTime estimates the most recent model run whose files should be
// published, accounting for each model's cycle cadence and typical
// publication lag.
func LatestRunTime(model string) time.Time {
	now := clock.Now().UTC()
	switch model {
	case ModelHRRR:
		// Hourly cycles, available roughly 45 minutes after the hour.
		run := now.Truncate(time.Hour)
		if now.Minute() < 45 {
			run = run.Add(-time.Hour)
		}
		return run
	case ModelGFS, ModelNAM:
		// 00/06/12/18Z cycles, available ~4h after.
		return latestCycle(now, []int{0, 6, 12, 18}, 4*time.Hour)
	case ModelECMWF:
		// 00/12Z open-data cycles, available ~6h after.
		return latestCycle(now, []int{0, 12}, 6*time.Hour)
	default:
		return now.Truncate(time.Hour)
	}
}

// RunTimeFromObjectPath parses a model run time from a bucket object path,
// e.g. "hrrr.20240426/conus/hrrr.t12z.wrfsfcf00.grib2". Used when an
// availability notification names the published object.
func RunTimeFromObjectPath(path string) (time.Time, error) {
	m := objectPathRe.FindStringSubmatch(path)
	if m == nil {
		return time.Time{}, fmt.Errorf("no run time in object path %q", path)
	}
	return time.Parse("2006010215", m[1]+m[2])
}

func latestCycle(now time.Time, cycles []int, lag time.Duration) time.Time {
	avail := now.Add(-lag)
	cycle := cycles[0]
	for _, c := range cycles {
		if c <= avail.Hour() {
			cycle = c
		}
	}
	return time.Date(avail.Year(), avail.Month(), avail.Day(), cycle, 0, 0, 0, time.UTC)
}

func hourRange(from, to, step int) []int {
	hours := make([]int, 0, (to-from)/step+1)
	for h := from; h <= to; h += step {
		hours = append(hours, h)
	}
	return hours
}
