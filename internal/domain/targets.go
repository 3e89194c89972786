package domain

// Target is a named point to sample, with optional elevation bands for
// lapse-adjusted derived records. JSON tags match the CITIES_CONFIG
// payload format.
type Target struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	ElevationBands []int   `json:"elevation_bands,omitempty"`
}

// Region is an area of interest sampled on a regular lattice. Polygon is an
// optional containment boundary as (lat, lon) vertices; empty means the
// full bounding box. JSON tags match the AOI_CONFIG payload format.
type Region struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	MinLat     float64      `json:"min_lat"`
	MinLon     float64      `json:"min_lon"`
	MaxLat     float64      `json:"max_lat"`
	MaxLon     float64      `json:"max_lon"`
	Resolution float64      `json:"resolution"` // lattice step in degrees
	Polygon    [][2]float64 `json:"polygon,omitempty"`
}
