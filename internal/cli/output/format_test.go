package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	valid := map[string]Format{
		"table":     FormatTable,
		"":          FormatTable,
		"  table  ": FormatTable,
		"json":      FormatJSON,
		"JSON":      FormatJSON,
	}
	for input, want := range valid {
		got, err := ParseFormat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	for _, input := range []string{"yaml", "yml", "xml", "csv"} {
		_, err := ParseFormat(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "table", FormatTable.String())
	assert.Equal(t, "json", FormatJSON.String())
}

func TestSuccessColored(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, true, "stashed report.pdf")

	out := buf.String()
	assert.Contains(t, out, "stashed report.pdf")
	assert.Contains(t, out, ansiGreen)
	assert.Contains(t, out, ansiReset)
}

func TestSuccessPlain(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, false, "stashed report.pdf")

	assert.Equal(t, "stashed report.pdf\n", buf.String())
}
