package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

// textHandler renders records as "[timestamp] [LEVEL] msg key=value",
// with the level and keys colored on terminals.
type textHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	color bool

	// bound attrs and group prefix from WithAttrs/WithGroup
	attrs  []slog.Attr
	prefix string
}

func newTextHandler(w io.Writer, level slog.Leveler, color bool) *textHandler {
	return &textHandler{
		w:     w,
		mu:    &sync.Mutex{},
		level: level,
		color: color,
	}
}

func (h *textHandler) Enabled(_ context.Context, l slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return l >= min
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	// Render into a local buffer; the lock covers only the write so slow
	// writers do not serialize formatting.
	buf := make([]byte, 0, 256)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, "2006-01-02 15:04:05.000")
	buf = append(buf, "] ["...)
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, a := range h.attrs {
		// bound attrs carry their prefix from bind time
		buf = h.appendAttr(buf, a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, a, h.prefix)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	_, err := h.w.Write(buf)
	h.mu.Unlock()
	return err
}

func (h *textHandler) appendLevel(buf []byte, l slog.Level) []byte {
	name, tint := "ERROR", ansiRed
	switch {
	case l < slog.LevelInfo:
		name, tint = "DEBUG", ansiGray
	case l < slog.LevelWarn:
		name, tint = "INFO", ansiGreen
	case l < slog.LevelError:
		name, tint = "WARN", ansiYellow
	}

	if !h.color {
		return append(buf, name...)
	}
	buf = append(buf, tint...)
	buf = append(buf, name...)
	return append(buf, ansiReset...)
}

func (h *textHandler) appendAttr(buf []byte, a slog.Attr, prefix string) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()

	buf = append(buf, ' ')
	if h.color {
		buf = append(buf, ansiCyan...)
	}
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	if h.color {
		buf = append(buf, ansiReset...)
	}
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendString(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		return appendString(buf, fmt.Sprintf("%v", v.Any()))
	}
}

// appendString quotes values that would break key=value tokenizing.
func appendString(buf []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '"' || s[i] == '=' || s[i] < 0x20 {
			return strconv.AppendQuote(buf, s)
		}
	}
	return append(buf, s...)
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	bound := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	bound = append(bound, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		bound = append(bound, a)
	}
	clone.attrs = bound
	return &clone
}

// WithGroup prefixes subsequent keys with the group name, keeping text
// output flat.
func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
