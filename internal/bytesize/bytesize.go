// Package bytesize parses and formats human-readable byte counts, as
// used by the tus.max_size config option and the CLI size columns.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a byte count that reads from strings like "1GiB", "500Mi",
// "100MB", or a plain number of bytes.
type ByteSize uint64

// Unit multipliers. The i-suffixed units are binary (x1024), the rest
// decimal (x1000).
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// Parse reads a byte count from s. The unit suffix is optional and
// case-insensitive, with or without a trailing B: "1GiB", "1gi", "100MB",
// "100m", "1024".
func Parse(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	cut := 0
	for cut < len(trimmed) && (trimmed[cut] >= '0' && trimmed[cut] <= '9' || trimmed[cut] == '.') {
		cut++
	}
	number := trimmed[:cut]
	if number == "" || number[0] == '.' {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	unit, ok := unitMultiplier(strings.TrimSpace(trimmed[cut:]))
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", strings.TrimSpace(trimmed[cut:]))
	}

	if strings.Contains(number, ".") {
		f, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", number)
		}
		return ByteSize(f * float64(unit)), nil
	}

	n, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", number)
	}
	return ByteSize(n) * unit, nil
}

func unitMultiplier(suffix string) (ByteSize, bool) {
	u := strings.ToLower(suffix)
	if u != "b" {
		u = strings.TrimSuffix(u, "b")
	} else {
		u = ""
	}

	switch u {
	case "":
		return B, true
	case "k":
		return KB, true
	case "m":
		return MB, true
	case "g":
		return GB, true
	case "t":
		return TB, true
	case "ki":
		return KiB, true
	case "mi":
		return MiB, true
	case "gi":
		return GiB, true
	case "ti":
		return TiB, true
	}
	return 0, false
}

// UnmarshalText lets ByteSize decode straight from config strings.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText renders the size back to its human form, so defaults
// round-trip through generated TOML.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// String formats the size with the largest binary unit that fits. Exact
// multiples render without decimals ("1GiB" rather than "1.00GiB").
func (b ByteSize) String() string {
	unit := B
	suffix := "B"
	switch {
	case b >= TiB:
		unit, suffix = TiB, "TiB"
	case b >= GiB:
		unit, suffix = GiB, "GiB"
	case b >= MiB:
		unit, suffix = MiB, "MiB"
	case b >= KiB:
		unit, suffix = KiB, "KiB"
	}

	if b%unit == 0 {
		return fmt.Sprintf("%d%s", uint64(b/unit), suffix)
	}
	return fmt.Sprintf("%.2f%s", float64(b)/float64(unit), suffix)
}

// Int64 converts to int64 for APIs that size in signed bytes.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
