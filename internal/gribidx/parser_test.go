package gribidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `1:0:d=2024042612:PRMSL:mean sea level:anl:
2:520885:d=2024042612:TMP:2 m above ground:anl:
3:1041770:d=2024042612:TMP:2 mb:anl:
4:1562655:d=2024042612:UGRD:10 m above ground:anl:
5:2083540:d=2024042612:VGRD:10 m above ground:anl:
`

func TestParseIndex(t *testing.T) {
	entries := ParseIndex(sampleIndex)
	require.Len(t, entries, 5)

	// Each entry's end equals the next entry's start.
	for i := 0; i+1 < len(entries); i++ {
		assert.Equal(t, entries[i+1].Offset, entries[i].End, "entry %d", i)
	}
	assert.Equal(t, OpenEnd, entries[len(entries)-1].End, "final entry is open-ended")

	first := entries[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, int64(0), first.Offset)
	assert.Equal(t, "d=2024042612", first.Date)
	assert.Equal(t, "PRMSL", first.VarCode)
	assert.Equal(t, "mean sea level", first.Level)
	assert.Equal(t, "anl", first.Forecast)
}

func TestParseIndexMalformedLines(t *testing.T) {
	content := "1:0:d=2024042612:TMP:2 m above ground:anl:\n" +
		"garbage line\n" +
		"3:notanumber:d=2024042612:DPT:2 m above ground:anl:\n" +
		"4:900:d=2024042612:RH:2 m above ground:anl:\n"

	entries := ParseIndex(content)
	require.Len(t, entries, 2, "malformed lines skipped, not fatal")
	assert.Equal(t, int64(900), entries[0].End, "end offset bridges skipped lines")
	assert.Equal(t, OpenEnd, entries[1].End)
}

func TestParseIndexNonIntegerSequence(t *testing.T) {
	content := "1:0:d=2024042612:TMP:surface:anl:\n" +
		"2.1:100:d=2024042612:DPT:surface:anl:\n"

	entries := ParseIndex(content)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[1].Seq, "ordinal position substituted")
	assert.Equal(t, int64(100), entries[1].Offset)
}

func TestParseIndexEmpty(t *testing.T) {
	assert.Empty(t, ParseIndex(""))
	assert.Empty(t, ParseIndex("\n\n"))
}
