package texttable

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Table{
		Headers: []string{"ID", "NAME", "STOCK"},
		Rows: [][]string{
			{"1", "Rice", "25 kg"},
			{"12", "Basmati Rice", "3 kg"},
		},
	})
	require.NoError(t, err)

	want := "" +
		"ID    NAME          STOCK\n" +
		"1     Rice          25 kg\n" +
		"12    Basmati Rice  3 kg\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteEmptyTablePrintsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Table{Headers: []string{"ID", "NAME"}}))
	assert.Equal(t, "ID    NAME\n", buf.String())
}

func TestWriteShrinksToMaxWidth(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Table{
		Headers:  []string{"ID", "DESCRIPTION"},
		Rows:     [][]string{{"1", strings.Repeat("x", 40)}},
		MaxWidth: 30,
	})
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30, line)
	}
	assert.Contains(t, buf.String(), "…")
}

func TestWriteHandlesWideRunes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Table{
		Headers: []string{"NAME", "QTY"},
		Rows:    [][]string{{"大米", "5"}, {"Rice", "7"}},
	}))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "大米  5", lines[1])
	assert.Equal(t, "Rice  7", lines[2])
}

func TestAbbreviateIDs(t *testing.T) {
	headers := []string{"ID", "NAME", "Store ID"}
	rows := [][]string{
		{"94db15db-4d02-46c2-a007-765e7a1d64c7", "Rice", "12345678-1234-1234-1234-1234567890ab"},
		{"42", "Flour", "7"},
	}

	got := AbbreviateIDs(headers, rows)
	assert.Equal(t, [][]string{
		{"94db15db…", "Rice", "12345678…"},
		{"42", "Flour", "7"},
	}, got)
	assert.Equal(t, "94db15db-4d02-46c2-a007-765e7a1d64c7", rows[0][0])
}

func TestTerminalWidthOfBuffer(t *testing.T) {
	assert.Equal(t, 0, TerminalWidth(&bytes.Buffer{}))
}
