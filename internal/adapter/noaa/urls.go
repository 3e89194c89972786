// Package noaa fetches GRIB2 model output from NOAA's public AWS Open Data
// buckets: idx manifests whole, fields by HTTP byte range.
package noaa

import (
	"fmt"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// FileURL builds the public HTTP URL for one model/run/forecast-hour GRIB2
// file. URLs are deterministic; there is no discovery step.
func FileURL(model string, runTime time.Time, forecastHour int) (string, error) {
	runTime = runTime.UTC()
	date := runTime.Format("20060102")
	cycle := fmt.Sprintf("%02d", runTime.Hour())

	switch model {
	case domain.ModelHRRR:
		return fmt.Sprintf(
			"https://noaa-hrrr-bdp-pds.s3.amazonaws.com/hrrr.%s/conus/hrrr.t%sz.wrfsfcf%02d.grib2",
			date, cycle, forecastHour), nil
	case domain.ModelGFS:
		return fmt.Sprintf(
			"https://noaa-gfs-bdp-pds.s3.amazonaws.com/gfs.%s/%s/atmos/gfs.t%sz.pgrb2.0p25.f%03d",
			date, cycle, cycle, forecastHour), nil
	case domain.ModelNAM:
		return fmt.Sprintf(
			"https://noaa-nam-pds.s3.amazonaws.com/nam.%s/nam.t%sz.awphys%02d.tm00.grib2",
			date, cycle, forecastHour), nil
	case domain.ModelECMWF:
		return fmt.Sprintf(
			"https://noaa-ecmwf-pds.s3.amazonaws.com/%s/%sz/0p25/oper/%03d.grib2",
			date, cycle, forecastHour), nil
	default:
		return "", fmt.Errorf("unknown model %q", model)
	}
}

// IndexURL returns the companion idx manifest URL for a GRIB2 file URL.
func IndexURL(fileURL string) string {
	return fileURL + ".idx"
}
