// Package domain models numerical weather prediction (NWP) model output as
// extracted from GRIB2 grid files.
//
// # Data Source
//
// Model runs are published as GRIB2 files on NOAA's AWS Open Data buckets
// (HRRR, GFS, NAM, ECMWF open data). Each file carries a companion ".idx"
// text manifest listing the byte offset of every field in the binary file,
// which allows fetching individual fields with HTTP range requests instead
// of downloading multi-gigabyte files whole.
//
// # Idx Conventions
//
// Manifest line format (colon-delimited, one field per line):
//
//	NUM:BYTE_OFFSET:d=YYYYMMDDHH:VAR:LEVEL:FORECAST
//	e.g. "31:20351245:d=2024042600:TMP:2 m above ground:anl:"
//
// LEVEL strings are free text and overlap between vertical coordinate
// systems: "2 m above ground" (height above ground) and "2 mb" (pressure
// level) share the prefix "2 m". Matching a height-above-ground variable on
// the bare number selects the wrong GRIB2 message and decodes a different
// binary layout, so level matching requires both the exact numeric value
// and the literal "above ground" qualifier. See [VariableSpec].
//
// # Derived Quantities
//
// Wind speed and direction are derived from the U/V grid components:
//
//	speed = sqrt(u² + v²)
//	direction = (270 − atan2(v, u)·180/π) mod 360
//
// Direction uses the meteorological "from" convention: 0° is wind blowing
// from due north.
//
// Temperature at a target elevation band is estimated from the base sample
// with a fixed lapse rate of 6.5 K per km against a 1500 m reference
// elevation. This is a static linear approximation, not a terrain model;
// the reference elevation and rate are uniform across all targets.
//
// # Record Identity
//
// Batch IDs are deterministic SHA-256 hashes of model|run|trigger time.
// Tiles carry the batch ID so grid aggregates can be traced back to the
// ingestion run that produced them.
package domain
