package sample

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// LatLon is one lattice coordinate.
type LatLon struct {
	Lat float64
	Lon float64
}

// Lattice enumerates the region's sampling lattice: a rectangular grid at
// the region's resolution covering the bounding box inclusive of both
// bounds, clipped to the region polygon when one is configured. Stepping is
// index-based (step count × resolution) rather than accumulated, so large
// boxes do not drift.
func Lattice(r domain.Region) []LatLon {
	if r.Resolution <= 0 {
		return nil
	}
	latSteps := stepCount(r.MinLat, r.MaxLat, r.Resolution)
	lonSteps := stepCount(r.MinLon, r.MaxLon, r.Resolution)

	ring := polygonRing(r.Polygon)

	points := make([]LatLon, 0, (latSteps+1)*(lonSteps+1))
	for i := 0; i <= latSteps; i++ {
		lat := r.MinLat + float64(i)*r.Resolution
		for j := 0; j <= lonSteps; j++ {
			lon := r.MinLon + float64(j)*r.Resolution
			if ring != nil && !planar.RingContains(ring, orb.Point{lon, lat}) {
				continue
			}
			points = append(points, LatLon{Lat: lat, Lon: lon})
		}
	}
	return points
}

// Region samples every decoded field at each lattice point of an AOI,
// producing dense coverage for whole-region queries. Wind stays as U/V
// components; derivation happens downstream if at all.
func Region(r domain.Region, grids map[string]domain.Grid, model string, runTime, validTime time.Time) []domain.GridSamplePoint {
	lattice := Lattice(r)
	samples := make([]domain.GridSamplePoint, 0, len(lattice))

	for _, p := range lattice {
		samples = append(samples, domain.GridSamplePoint{
			AoiID:            r.ID,
			Model:            model,
			RunTime:          runTime,
			ValidTime:        validTime,
			Lat:              p.Lat,
			Lon:              p.Lon,
			Temperature:      field(grids, "temperature_2m", p.Lat, p.Lon),
			Precip:           field(grids, "precip", p.Lat, p.Lon),
			WindU:            field(grids, "wind_u_10m", p.Lat, p.Lon),
			WindV:            field(grids, "wind_v_10m", p.Lat, p.Lon),
			SnowDepth:        field(grids, "snow_depth", p.Lat, p.Lon),
			RelativeHumidity: field(grids, "relative_humidity", p.Lat, p.Lon),
		})
	}
	return samples
}

// stepCount returns how many resolution-sized steps fit between min and
// max. The epsilon keeps exact multiples from losing their final step to
// floating-point representation.
func stepCount(min, max, resolution float64) int {
	if max < min {
		return 0
	}
	return int(math.Floor((max-min)/resolution + 1e-6))
}

// polygonRing converts configured (lat, lon) vertices into a closed orb
// ring. Fewer than three vertices means no containment constraint.
func polygonRing(vertices [][2]float64) orb.Ring {
	if len(vertices) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v[1], v[0]})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
