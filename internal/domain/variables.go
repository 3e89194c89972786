package domain

import "strings"

// LevelType is the vertical-coordinate category of a GRIB2 field.
type LevelType string

const (
	// LevelSurface matches fields at the model surface.
	LevelSurface LevelType = "surface"
	// LevelHeightAboveGround matches fields at a fixed height above ground,
	// e.g. 2 m temperature or 10 m wind.
	LevelHeightAboveGround LevelType = "heightAboveGround"
	// LevelIsothermZero matches fields on the 0°C isotherm.
	LevelIsothermZero LevelType = "isothermZero"
	// LevelNone imposes no level constraint; the variable code alone decides.
	LevelNone LevelType = "none"
)

// VariableSpec describes one required output field and how to locate it in
// an idx manifest. Codes may carry an embedded level qualifier after a colon
// ("HGT:0C isotherm") for producers that fold the level into the synonym.
type VariableSpec struct {
	// Name is the canonical output field name, e.g. "temperature_2m".
	Name string
	// Codes are the accepted idx variable codes, in preference order.
	// Synonyms cover producers that emit accumulation vs rate encodings
	// of the same quantity (APCP vs PRATE).
	Codes []string
	// LevelType constrains the idx level string.
	LevelType LevelType
	// LevelValue is the numeric height for LevelHeightAboveGround, as it
	// appears in the level string ("2", "10").
	LevelValue string
	// Hint is the decoder sub-field name to sample. Decoders expose
	// inconsistent sub-field naming, so this is a hint, not a key; see the
	// field fallback in the sample package.
	Hint string
}

// MatchesLevel reports whether an idx level string satisfies the spec's
// level constraint. Height-above-ground requires both the exact numeric
// value and the literal "above ground" qualifier: "2 mb" contains "2 m" as
// a substring, and matching on the number alone would select a pressure
// level with a different binary layout. The number must also stand alone,
// so "12 m above ground" never satisfies a value of "2".
func (s VariableSpec) MatchesLevel(level string) bool {
	switch s.LevelType {
	case LevelHeightAboveGround:
		if s.LevelValue == "" {
			return false
		}
		i := strings.Index(level, s.LevelValue+" m above ground")
		if i < 0 {
			return false
		}
		return i == 0 || level[i-1] < '0' || level[i-1] > '9'
	case LevelSurface:
		return strings.Contains(strings.ToLower(level), "surface")
	case LevelIsothermZero:
		return strings.Contains(level, "0C")
	default:
		return true
	}
}

// HintFor returns the decoder hint for a canonical field name, or "" when
// the name is not in DefaultVariables.
func HintFor(name string) string {
	for _, s := range DefaultVariables {
		if s.Name == name {
			return s.Hint
		}
	}
	return ""
}

// DefaultVariables is the canonical field table extracted from every model
// run. Hints are the idx variable codes, which is what the wgrib2-based
// decoder exposes as sub-field names.
var DefaultVariables = []VariableSpec{
	{Name: "temperature_2m", Codes: []string{"TMP"}, LevelType: LevelHeightAboveGround, LevelValue: "2", Hint: "TMP"},
	{Name: "wind_u_10m", Codes: []string{"UGRD"}, LevelType: LevelHeightAboveGround, LevelValue: "10", Hint: "UGRD"},
	{Name: "wind_v_10m", Codes: []string{"VGRD"}, LevelType: LevelHeightAboveGround, LevelValue: "10", Hint: "VGRD"},
	{Name: "precip", Codes: []string{"APCP", "PRATE"}, LevelType: LevelSurface, Hint: "APCP"},
	{Name: "snow_depth", Codes: []string{"SNOD"}, LevelType: LevelSurface, Hint: "SNOD"},
	{Name: "freezing_level", Codes: []string{"HGT:0C isotherm", "HGT"}, LevelType: LevelIsothermZero, Hint: "HGT"},
	{Name: "cape", Codes: []string{"CAPE"}, LevelType: LevelSurface, Hint: "CAPE"},
	{Name: "relative_humidity", Codes: []string{"RH"}, LevelType: LevelHeightAboveGround, LevelValue: "2", Hint: "RH"},
}
