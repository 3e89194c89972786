package sample

import (
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// TargetRecords builds the point records for one named target at one valid
// time: the base record plus one lapse-adjusted record per configured
// elevation band. Wind components are collapsed to speed and direction at
// this boundary. A base record with every metric null carries no signal,
// so it and its bands are dropped entirely.
func TargetRecords(t domain.Target, grids map[string]domain.Grid, model string, runTime, validTime time.Time) []domain.PointRecord {
	base := domain.PointRecord{
		TargetID:  t.ID,
		Model:     model,
		RunTime:   runTime,
		ValidTime: validTime,

		Temperature:      field(grids, "temperature_2m", t.Lat, t.Lon),
		Precip:           field(grids, "precip", t.Lat, t.Lon),
		SnowDepth:        field(grids, "snow_depth", t.Lat, t.Lon),
		FreezingLevel:    field(grids, "freezing_level", t.Lat, t.Lon),
		CAPE:             field(grids, "cape", t.Lat, t.Lon),
		RelativeHumidity: field(grids, "relative_humidity", t.Lat, t.Lon),
	}

	u := field(grids, "wind_u_10m", t.Lat, t.Lon)
	v := field(grids, "wind_v_10m", t.Lat, t.Lon)
	base.WindSpeed, base.WindDir = domain.WindFromComponents(u, v)

	if base.Empty() {
		return nil
	}

	records := make([]domain.PointRecord, 0, 1+len(t.ElevationBands))
	records = append(records, base)
	for _, band := range t.ElevationBands {
		records = append(records, base.WithElevationBand(band))
	}
	return records
}
