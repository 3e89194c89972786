package domain

import "math"

const (
	// ReferenceElevationM is the elevation the base temperature sample is
	// assumed to represent when lapse-adjusting to an elevation band.
	ReferenceElevationM = 1500

	// LapseRatePerM is the standard atmospheric lapse rate, 6.5 K per km.
	LapseRatePerM = 0.0065
)

// WindFromComponents derives wind speed (m/s, 2 decimals) and direction
// (degrees, 1 decimal, meteorological "from" convention) from the U and V
// grid components. Either component missing yields both outputs nil.
func WindFromComponents(u, v *float64) (speed, direction *float64) {
	if u == nil || v == nil {
		return nil, nil
	}
	s := roundTo(math.Sqrt(*u**u+*v**v), 2)
	d := math.Mod(270-math.Atan2(*v, *u)*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	d = roundTo(d, 1)
	return &s, &d
}

// LapseAdjust estimates temperature at an elevation band from a base sample
// using the fixed lapse rate. A linear approximation: it ignores terrain
// profile, inversions, and moisture.
func LapseAdjust(tempK float64, elevationM int) float64 {
	return roundTo(tempK-LapseRatePerM*float64(elevationM-ReferenceElevationM), 2)
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
