// Package timeutil provides time formatting utilities for CLI output.
package timeutil

import "time"

// LocalTimeFormat is the format used for displaying local times in CLI output.
// Uses Go's reference time: Mon Jan 2 15:04:05 2006.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatUnix converts Unix seconds to a local time string.
func FormatUnix(secs int64) string {
	return time.Unix(secs, 0).Local().Format(LocalTimeFormat)
}

// FormatExpiry renders an optional Unix-seconds expiry. Files without
// one never expire.
func FormatExpiry(secs *int64) string {
	if secs == nil {
		return "-"
	}
	return FormatUnix(*secs)
}
