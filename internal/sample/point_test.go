package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// stubGrid is a fixed-value grid covering one bounding box, keyed by field
// name. Longitudes are stored in whichever convention the test configures.
type stubGrid struct {
	fields   map[string]float64
	minLat   float64
	maxLat   float64
	minLon   float64
	maxLon   float64
	released bool
}

func (g *stubGrid) Fields() []string {
	names := make([]string, 0, len(g.fields))
	for name := range g.fields {
		names = append(names, name)
	}
	return names
}

func (g *stubGrid) Nearest(lat, lon float64, field string) (float64, bool) {
	v, ok := g.fields[field]
	if !ok {
		return 0, false
	}
	if lat < g.minLat || lat > g.maxLat || lon < g.minLon || lon > g.maxLon {
		return 0, false
	}
	return v, true
}

func (g *stubGrid) Release() { g.released = true }

func TestPoint(t *testing.T) {
	grid := &stubGrid{
		fields: map[string]float64{"TMP": 285.4},
		minLat: 36, maxLat: 38,
		minLon: -109, maxLon: -107,
	}

	t.Run("signed longitude convention", func(t *testing.T) {
		v := Point(grid, 37.27, -107.88, "TMP")
		require.NotNil(t, v)
		assert.Equal(t, 285.4, *v)
	})

	t.Run("out of bounds returns nil", func(t *testing.T) {
		assert.Nil(t, Point(grid, 50, -107.88, "TMP"))
	})

	t.Run("nil grid returns nil", func(t *testing.T) {
		assert.Nil(t, Point(nil, 37.27, -107.88, "TMP"))
	})
}

func TestPointLongitudeConventions(t *testing.T) {
	// Grid stores longitudes on 0–360; a signed query must still hit it.
	grid := &stubGrid{
		fields: map[string]float64{"TMP": 280.0},
		minLat: 36, maxLat: 38,
		minLon: 251, maxLon: 253,
	}

	v := Point(grid, 37.0, -107.88, "TMP")
	require.NotNil(t, v, "0-360 equivalent of -107.88 is 252.12")
	assert.Equal(t, 280.0, *v)

	v = Point(grid, 37.0, 252.12, "TMP")
	require.NotNil(t, v, "already-wrapped longitude attempted as-is")
	assert.Equal(t, 280.0, *v)
}

func TestPointFieldFallback(t *testing.T) {
	t.Run("case-insensitive substring match", func(t *testing.T) {
		grid := &stubGrid{
			fields: map[string]float64{"tmp2m": 281.5},
			minLat: 0, maxLat: 90, minLon: -180, maxLon: 180,
		}
		v := Point(grid, 37, -107, "TMP")
		require.NotNil(t, v)
		assert.Equal(t, 281.5, *v)
	})

	t.Run("single unmatched sub-field used as fallback", func(t *testing.T) {
		grid := &stubGrid{
			fields: map[string]float64{"unknown0": 42.0},
			minLat: 0, maxLat: 90, minLon: -180, maxLon: 180,
		}
		v := Point(grid, 37, -107, "TMP")
		require.NotNil(t, v)
		assert.Equal(t, 42.0, *v)
	})

	t.Run("no fields returns nil", func(t *testing.T) {
		grid := &stubGrid{fields: map[string]float64{}}
		assert.Nil(t, Point(grid, 37, -107, "TMP"))
	})
}

func TestFieldUsesVariableTableHint(t *testing.T) {
	// Two sub-fields, only one matching the table hint for snow_depth. The
	// hint must come from the variable table, so the decoy is never chosen.
	grid := &stubGrid{
		fields: map[string]float64{"SNOD": 0.4, "reflectivity": 99.0},
		minLat: 36, maxLat: 38,
		minLon: -109, maxLon: -107,
	}
	grids := map[string]domain.Grid{"snow_depth": grid}

	v := field(grids, "snow_depth", 37.0, -107.5)
	require.NotNil(t, v)
	assert.Equal(t, 0.4, *v)

	assert.Nil(t, field(grids, "cape", 37.0, -107.5), "field without a decoded grid stays null")
}
