// Package gribidx parses GRIB2 .idx byte-offset manifests and resolves the
// byte range of each required variable for partial-content fetching.
package gribidx

import (
	"strconv"
	"strings"
)

// OpenEnd marks a byte range that runs to the end of the remote file.
const OpenEnd int64 = -1

// FieldDescriptor is one entry of an idx manifest. Descriptors are
// ephemeral: parsed fresh per file, never persisted.
type FieldDescriptor struct {
	// Seq is the manifest sequence number, kept for debugging only. Some
	// producers emit non-integer sequence identifiers; those are coerced
	// to the line's ordinal position.
	Seq      int
	Offset   int64
	End      int64 // exclusive; OpenEnd for the final entry
	Date     string
	VarCode  string
	Level    string
	Forecast string
}

// ByteRange is the span of one field inside the remote file.
type ByteRange struct {
	Start int64
	End   int64 // exclusive; OpenEnd means fetch to end of file
}

// ParseIndex parses manifest text into ordered field descriptors. Lines
// with fewer than six colon-delimited fields, or an unparseable offset, are
// skipped without error. The end offset of each entry is the start offset
// of the next parseable entry; the final entry is open-ended.
func ParseIndex(content string) []FieldDescriptor {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	entries := make([]FieldDescriptor, 0, len(lines))

	for i, line := range lines {
		parts := strings.Split(line, ":")
		if len(parts) < 6 {
			continue
		}

		offset, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}

		seq, err := strconv.Atoi(parts[0])
		if err != nil {
			seq = i + 1
		}

		entries = append(entries, FieldDescriptor{
			Seq:      seq,
			Offset:   offset,
			End:      OpenEnd,
			Date:     parts[2],
			VarCode:  parts[3],
			Level:    parts[4],
			Forecast: parts[5],
		})
	}

	for i := 0; i+1 < len(entries); i++ {
		entries[i].End = entries[i+1].Offset
	}
	return entries
}
