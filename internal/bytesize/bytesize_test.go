package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	valid := map[string]ByteSize{
		// plain numbers
		"0":          0,
		"1024":       1024,
		"1073741824": 1 * GiB,

		// explicit bytes
		"1024B": 1024,
		"1024b": 1024,

		// binary units
		"1Ki":    1 * KiB,
		"1KiB":   1 * KiB,
		"100MiB": 100 * MiB,
		"1GiB":   1 * GiB,
		"1TiB":   1 * TiB,

		// decimal units
		"1KB":   1 * KB,
		"100MB": 100 * MB,
		"1GB":   1 * GB,

		// case and whitespace tolerance
		"1gi":   1 * GiB,
		"1GI":   1 * GiB,
		"  1Gi": 1 * GiB,
		"1 Gi":  1 * GiB,

		// fractional sizes
		"1.5Mi": ByteSize(1.5 * float64(MiB)),
		"0.5Gi": ByteSize(0.5 * float64(GiB)),
	}
	for input, want := range valid {
		got, err := Parse(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	invalid := []string{"", "   ", "1Xi", "1ib", "-1Gi", "Gi", ".5Gi", "1.2.3", "abc"}
	for _, input := range invalid {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("1Gi")))
	assert.Equal(t, 1*GiB, b)

	require.NoError(t, b.UnmarshalText([]byte("1024")))
	assert.Equal(t, ByteSize(1024), b)

	assert.Error(t, b.UnmarshalText([]byte("invalid")))
}

func TestString(t *testing.T) {
	cases := map[ByteSize]string{
		512:                           "512B",
		2 * KiB:                       "2KiB",
		100 * MiB:                     "100MiB",
		1 * GiB:                       "1GiB",
		2 * TiB:                       "2TiB",
		1536:                          "1.50KiB",
		ByteSize(1.5 * float64(GiB)):  "1.50GiB",
		ByteSize(1.25 * float64(MiB)): "1.25MiB",
	}
	for size, want := range cases {
		assert.Equal(t, want, size.String(), "size %d", uint64(size))
	}
}

func TestMarshalTextRoundTrip(t *testing.T) {
	b := 1 * GiB
	text, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1GiB", string(text))

	var parsed ByteSize
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, b, parsed)
}
