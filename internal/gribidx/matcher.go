package gribidx

import (
	"strings"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// Matches reports whether a manifest entry satisfies a variable spec.
//
// Codes with an embedded qualifier ("HGT:0C isotherm") match on variable
// code plus level substring. Bare codes match on variable code plus the
// spec's level-type constraint; see domain.VariableSpec.MatchesLevel for
// the height-above-ground disambiguation this hinges on.
func Matches(desc FieldDescriptor, spec domain.VariableSpec) bool {
	for _, code := range spec.Codes {
		if name, qualifier, ok := strings.Cut(code, ":"); ok {
			if desc.VarCode == name && strings.Contains(desc.Level, qualifier) {
				return true
			}
			continue
		}
		if desc.VarCode == code && spec.MatchesLevel(desc.Level) {
			return true
		}
	}
	return false
}

// ResolveRanges returns, per canonical variable name, the byte range of the
// first matching manifest entry. Ties resolve by file order. Variables with
// no match are absent from the result; that is expected for fields a model
// does not publish, not an error.
func ResolveRanges(entries []FieldDescriptor, specs []domain.VariableSpec) map[string]ByteRange {
	ranges := make(map[string]ByteRange, len(specs))
	for _, spec := range specs {
		for _, entry := range entries {
			if Matches(entry, spec) {
				ranges[spec.Name] = ByteRange{Start: entry.Offset, End: entry.End}
				break
			}
		}
	}
	return ranges
}
