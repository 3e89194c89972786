package domain

// Grid is one decoded GRIB2 field, queryable by coordinate. A grid is owned
// exclusively by the forecast-hour task that decoded it and must be
// released once sampling for that hour completes.
type Grid interface {
	// Fields lists the sub-field names the decoder exposed for this
	// message, in stable order.
	Fields() []string

	// Nearest returns the value of the named sub-field at the grid cell
	// nearest to (lat, lon). The second return is false when the field is
	// unknown, the coordinate is outside the grid, or the value is missing.
	Nearest(lat, lon float64, field string) (float64, bool)

	// Release frees the grid's underlying buffers. The grid must not be
	// used afterwards.
	Release()
}

// GridDecoder turns the raw bytes of one GRIB2 message into a queryable
// grid. Implementations live in adapter packages; decode failures are
// per-variable and never abort a forecast hour.
type GridDecoder interface {
	Decode(data []byte) (Grid, error)
}
