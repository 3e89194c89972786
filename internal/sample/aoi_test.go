package sample

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

var laPlata = domain.Region{
	ID:         "la-plata-county",
	Name:       "La Plata County, CO",
	MinLat:     37.00,
	MinLon:     -108.35,
	MaxLat:     37.50,
	MaxLon:     -107.45,
	Resolution: 0.05,
}

func TestLatticeFullBoundingBox(t *testing.T) {
	points := Lattice(laPlata)

	// 0.50/0.05 = 10 lat steps, 0.90/0.05 = 18 lon steps, bounds inclusive.
	require.Len(t, points, 11*19)

	first, last := points[0], points[len(points)-1]
	assert.Equal(t, laPlata.MinLat, first.Lat)
	assert.Equal(t, laPlata.MinLon, first.Lon)
	assert.InDelta(t, laPlata.MaxLat, last.Lat, 1e-9)
	assert.InDelta(t, laPlata.MaxLon, last.Lon, 1e-9)
}

func TestLatticePolygonClip(t *testing.T) {
	region := laPlata
	// Triangle covering roughly the western half of the box.
	region.Polygon = [][2]float64{
		{37.00, -108.35},
		{37.50, -108.35},
		{37.00, -107.90},
	}

	clipped := Lattice(region)
	full := Lattice(laPlata)
	require.NotEmpty(t, clipped)
	assert.Less(t, len(clipped), len(full))

	ring := orb.Ring{
		{-108.35, 37.00},
		{-108.35, 37.50},
		{-107.90, 37.00},
		{-108.35, 37.00},
	}
	for _, p := range clipped {
		assert.True(t, planar.RingContains(ring, orb.Point{p.Lon, p.Lat}),
			"point (%f, %f) outside polygon", p.Lat, p.Lon)
	}
}

func TestLatticeDegenerate(t *testing.T) {
	assert.Nil(t, Lattice(domain.Region{Resolution: 0}))

	single := Lattice(domain.Region{MinLat: 37, MaxLat: 37, MinLon: -108, MaxLon: -108, Resolution: 0.05})
	require.Len(t, single, 1)
	assert.Equal(t, LatLon{Lat: 37, Lon: -108}, single[0])

	// A polygon with fewer than three vertices imposes no constraint.
	region := laPlata
	region.Polygon = [][2]float64{{37.0, -108.0}}
	assert.Len(t, Lattice(region), 11*19)
}

func TestRegionSampling(t *testing.T) {
	grid := &stubGrid{
		fields: map[string]float64{"TMP": 278.0},
		minLat: 36, maxLat: 38,
		minLon: -109, maxLon: -107,
	}
	grids := map[string]domain.Grid{"temperature_2m": grid}

	run := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	valid := run.Add(6 * time.Hour)

	samples := Region(laPlata, grids, "HRRR", run, valid)
	require.Len(t, samples, 11*19)

	s := samples[0]
	assert.Equal(t, "la-plata-county", s.AoiID)
	assert.Equal(t, "HRRR", s.Model)
	assert.Equal(t, run, s.RunTime)
	assert.Equal(t, valid, s.ValidTime)
	require.NotNil(t, s.Temperature)
	assert.Equal(t, 278.0, *s.Temperature)
	assert.Nil(t, s.Precip, "missing grid samples as null")
	assert.Nil(t, s.WindU)
}
