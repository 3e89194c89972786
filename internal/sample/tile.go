package sample

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// tileKey buckets samples by model, run, valid time, and truncated degree cell.
type tileKey struct {
	model   string
	runTime time.Time
	valid   time.Time
	latBin  int
	lonBin  int
}

type tileAccum struct {
	minLat, maxLat float64
	minLon, maxLon float64
	lats           map[float64]struct{}
	lons           map[float64]struct{}
	samples        int
	fields         map[string][]float64 // non-null values per field
	nulls          map[string]int
}

// tileFieldNames fixes the metric set and ordering for tile statistics.
var tileFieldNames = []string{
	"precip_kg_m2",
	"relative_humidity",
	"snow_depth",
	"temperature_2m",
	"wind_u_10m",
	"wind_v_10m",
}

// BuildTiles groups AOI samples into fixed-size spatial tiles and computes
// per-field min/max/mean/null-count. Output is deterministic for a given
// sample set regardless of input order: tiles are sorted by key and each
// field's values are sorted before summation, so no floating-point result
// depends on arrival order.
func BuildTiles(points []domain.GridSamplePoint, batchID string) []domain.Tile {
	accums := make(map[tileKey]*tileAccum)

	for _, p := range points {
		key := tileKey{
			model:   p.Model,
			runTime: p.RunTime,
			valid:   p.ValidTime,
			latBin:  int(math.Floor(p.Lat)),
			lonBin:  int(math.Floor(p.Lon)),
		}
		acc, ok := accums[key]
		if !ok {
			acc = &tileAccum{
				minLat: p.Lat, maxLat: p.Lat,
				minLon: p.Lon, maxLon: p.Lon,
				lats:   make(map[float64]struct{}),
				lons:   make(map[float64]struct{}),
				fields: make(map[string][]float64),
				nulls:  make(map[string]int),
			}
			accums[key] = acc
		}
		acc.observe(p)
	}

	keys := make([]tileKey, 0, len(accums))
	for k := range accums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	tiles := make([]domain.Tile, 0, len(keys))
	for _, k := range keys {
		tiles = append(tiles, accums[k].tile(k, batchID))
	}
	return tiles
}

func (a *tileAccum) observe(p domain.GridSamplePoint) {
	a.minLat = math.Min(a.minLat, p.Lat)
	a.maxLat = math.Max(a.maxLat, p.Lat)
	a.minLon = math.Min(a.minLon, p.Lon)
	a.maxLon = math.Max(a.maxLon, p.Lon)
	a.lats[p.Lat] = struct{}{}
	a.lons[p.Lon] = struct{}{}
	a.samples++

	a.observeField("precip_kg_m2", p.Precip)
	a.observeField("relative_humidity", p.RelativeHumidity)
	a.observeField("snow_depth", p.SnowDepth)
	a.observeField("temperature_2m", p.Temperature)
	a.observeField("wind_u_10m", p.WindU)
	a.observeField("wind_v_10m", p.WindV)
}

func (a *tileAccum) observeField(name string, v *float64) {
	if v == nil {
		a.nulls[name]++
		return
	}
	a.fields[name] = append(a.fields[name], *v)
}

func (a *tileAccum) tile(k tileKey, batchID string) domain.Tile {
	fields := make([]domain.TileField, 0, len(tileFieldNames))
	for _, name := range tileFieldNames {
		fields = append(fields, summarize(name, a.fields[name], a.nulls[name]))
	}
	return domain.Tile{
		BatchID:     batchID,
		Model:       k.model,
		RunTime:     k.runTime,
		ValidTime:   k.valid,
		LatBin:      k.latBin,
		LonBin:      k.lonBin,
		MinLat:      a.minLat,
		MaxLat:      a.maxLat,
		MinLon:      a.minLon,
		MaxLon:      a.maxLon,
		RowCount:    len(a.lats),
		ColCount:    len(a.lons),
		SampleCount: a.samples,
		Fields:      fields,
	}
}

func summarize(name string, values []float64, nulls int) domain.TileField {
	field := domain.TileField{Name: name, NullCount: nulls}
	if len(values) == 0 {
		return field
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	min, max, mean := sorted[0], sorted[len(sorted)-1], sum/float64(len(sorted))
	field.Min, field.Max, field.Mean = &min, &max, &mean
	return field
}

func lessKey(a, b tileKey) bool {
	if a.model != b.model {
		return a.model < b.model
	}
	if !a.runTime.Equal(b.runTime) {
		return a.runTime.Before(b.runTime)
	}
	if !a.valid.Equal(b.valid) {
		return a.valid.Before(b.valid)
	}
	if a.latBin != b.latBin {
		return a.latBin < b.latBin
	}
	return a.lonBin < b.lonBin
}
