// Package sample extracts point values from decoded grids: single named
// targets, dense AOI lattices, and spatial tile aggregation.
package sample

import (
	"math"
	"strings"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// Point returns the nearest grid value at (lat, lon), or nil when the grid
// is missing or no convention/field combination yields a value. Sampling
// never propagates an error upstream; absence is the only failure mode.
func Point(g domain.Grid, lat, lon float64, hint string) *float64 {
	if g == nil {
		return nil
	}
	for _, ln := range lonCandidates(lon) {
		for _, name := range fieldCandidates(g.Fields(), hint) {
			if v, ok := g.Nearest(lat, ln, name); ok {
				return &v
			}
		}
	}
	return nil
}

// field samples one canonical output field, taking its decoder hint from
// the variable table so samplers and the table cannot drift apart.
func field(grids map[string]domain.Grid, name string, lat, lon float64) *float64 {
	return Point(grids[name], lat, lon, domain.HintFor(name))
}

// lonCandidates returns the longitude conventions to attempt: the signed
// value, then its 0–360 equivalent. GRIB2 grids disagree on convention and
// the grid itself does not say which it uses.
func lonCandidates(lon float64) []float64 {
	wrapped := math.Mod(lon, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	if wrapped == lon {
		return []float64{lon}
	}
	return []float64{lon, wrapped}
}

// fieldCandidates is the compatibility shim for decoders with inconsistent
// sub-field naming: case-insensitive substring matches against the hint
// come first, then the grid's first exposed field as a last resort. Kept in
// one place so the fallback can be tightened without touching call sites.
func fieldCandidates(fields []string, hint string) []string {
	if len(fields) == 0 {
		return nil
	}
	lowHint := strings.ToLower(hint)
	var candidates []string
	for _, f := range fields {
		lf := strings.ToLower(f)
		if strings.Contains(lf, lowHint) || strings.Contains(lowHint, lf) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		candidates = []string{fields[0]}
	}
	return candidates
}
