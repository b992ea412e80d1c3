// Package output renders CLI results as tables or JSON.
//
// Table mode is for humans: borderless columns plus colored status
// lines. JSON mode emits nothing but the marshaled result, so command
// output stays pipeable.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how a command renders its result.
type Format string

const (
	// FormatTable renders results as aligned columns.
	FormatTable Format = "table"
	// FormatJSON renders results as indented JSON.
	FormatJSON Format = "json"
)

// ParseFormat validates an output format flag. Empty defaults to table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

const (
	ansiGreen = "\033[32m"
	ansiReset = "\033[0m"
)

// Success writes a status line, green when colored. Callers emit these
// only in table mode.
func Success(w io.Writer, colored bool, msg string) {
	if colored {
		_, _ = fmt.Fprintf(w, "%s%s%s\n", ansiGreen, msg, ansiReset)
		return
	}
	_, _ = fmt.Fprintln(w, msg)
}
