// Package wgrib decodes GRIB2 messages by shelling out to the wgrib2
// utility. The binary-to-array decode itself is external; this adapter owns
// the temp-file plumbing and turns wgrib2's CSV dump into a queryable grid.
package wgrib

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strconv"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// Decoder implements domain.GridDecoder using the wgrib2 binary.
type Decoder struct {
	bin    string
	logger *slog.Logger
}

// NewDecoder locates wgrib2 on PATH. The binary is required: without it no
// field can be decoded, so absence is a startup error, not a per-field one.
func NewDecoder(logger *slog.Logger) (*Decoder, error) {
	bin, err := exec.LookPath("wgrib2")
	if err != nil {
		return nil, fmt.Errorf("wgrib2 not found in PATH: %w", err)
	}
	return &Decoder{bin: bin, logger: logger}, nil
}

// Decode writes the message bytes to a temp file, runs wgrib2 over it, and
// parses the CSV dump into a grid.
func (d *Decoder) Decode(data []byte) (domain.Grid, error) {
	tmp, err := os.CreateTemp("", "field-*.grib2")
	if err != nil {
		return nil, fmt.Errorf("create temp grib2 file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp grib2 file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp grib2 file: %w", err)
	}

	cmd := exec.Command(d.bin, tmp.Name(), "-inv", os.DevNull, "-csv", "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("wgrib2: %w: %s", err, stderr.String())
	}

	g, err := parseCSV(out.Bytes())
	if err != nil {
		return nil, err
	}
	if len(g.names) == 0 {
		return nil, fmt.Errorf("wgrib2 produced no grid points")
	}
	return g, nil
}

// parseCSV reads wgrib2 -csv output. Record layout:
//
//	"start time","valid time","VAR","LEVEL",lon,lat,value
func parseCSV(data []byte) (*grid, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	g := &grid{fields: make(map[string]*fieldValues)}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse wgrib2 csv: %w", err)
		}
		if len(rec) < 7 {
			continue
		}

		lon, err1 := strconv.ParseFloat(rec[4], 64)
		lat, err2 := strconv.ParseFloat(rec[5], 64)
		val, err3 := strconv.ParseFloat(rec[6], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		name := rec[2]
		fv, ok := g.fields[name]
		if !ok {
			fv = &fieldValues{
				minLat: lat, maxLat: lat,
				minLon: lon, maxLon: lon,
			}
			g.fields[name] = fv
			g.names = append(g.names, name)
		}
		fv.add(lat, lon, val)
	}
	return g, nil
}

// boundsSlack pads the grid extent when rejecting out-of-bounds queries, so
// a target just past the outermost cell center still samples the edge cell.
const boundsSlack = 0.5

type fieldValues struct {
	lats, lons, vals               []float64
	minLat, maxLat, minLon, maxLon float64
}

func (f *fieldValues) add(lat, lon, val float64) {
	f.lats = append(f.lats, lat)
	f.lons = append(f.lons, lon)
	f.vals = append(f.vals, val)
	f.minLat = math.Min(f.minLat, lat)
	f.maxLat = math.Max(f.maxLat, lat)
	f.minLon = math.Min(f.minLon, lon)
	f.maxLon = math.Max(f.maxLon, lon)
}

type grid struct {
	fields map[string]*fieldValues
	names  []string
}

func (g *grid) Fields() []string { return g.names }

// Nearest scans for the closest cell center. Queries outside the field's
// coordinate extent are rejected rather than snapped to an edge cell, which
// is what lets the longitude-convention retry in the sampler work: a signed
// query against a 0-360 grid falls outside the extent and returns missing.
func (g *grid) Nearest(lat, lon float64, field string) (float64, bool) {
	fv, ok := g.fields[field]
	if !ok || len(fv.vals) == 0 {
		return 0, false
	}
	if lat < fv.minLat-boundsSlack || lat > fv.maxLat+boundsSlack ||
		lon < fv.minLon-boundsSlack || lon > fv.maxLon+boundsSlack {
		return 0, false
	}

	best := 0
	bestDist := math.MaxFloat64
	for i := range fv.vals {
		dLat := fv.lats[i] - lat
		dLon := fv.lons[i] - lon
		dist := dLat*dLat + dLon*dLon
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	v := fv.vals[best]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (g *grid) Release() {
	g.fields = nil
	g.names = nil
}
