package timeutil

import (
	"testing"
	"time"
)

func TestFormatUnix(t *testing.T) {
	secs := int64(1700000000)
	want := time.Unix(secs, 0).Local().Format(LocalTimeFormat)

	if got := FormatUnix(secs); got != want {
		t.Errorf("FormatUnix(%d) = %q, want %q", secs, got, want)
	}
}

func TestFormatExpiry(t *testing.T) {
	if got := FormatExpiry(nil); got != "-" {
		t.Errorf("FormatExpiry(nil) = %q, want %q", got, "-")
	}

	secs := int64(1700000000)
	want := FormatUnix(secs)
	if got := FormatExpiry(&secs); got != want {
		t.Errorf("FormatExpiry(&%d) = %q, want %q", secs, got, want)
	}
}
