package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyBase holds the state shared by both pretty handlers: options, the
// serialized writer, and attributes accumulated through WithAttrs/WithGroup.
type prettyBase struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func (h prettyBase) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

// with returns a copy of h with attrs qualified by the current group path.
func (h prettyBase) with(attrs []slog.Attr) prettyBase {
	prefix := strings.Join(h.groups, ".")

	next := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next, h.attrs)

	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		next = append(next, a)
	}

	h.attrs = next

	return h
}

func (h prettyBase) group(name string) prettyBase {
	h.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return h
}

// header returns the built-in attributes of r after ReplaceAttr.
func (h prettyBase) header(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		out = append(out, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	out = append(out, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			out = append(out, h.replace(
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)),
			))
		}
	}

	return append(out, h.replace(slog.String(slog.MessageKey, r.Message)))
}

// body returns the handler attributes followed by the record attributes.
func (h prettyBase) body(r slog.Record) []slog.Attr {
	prefix := strings.Join(h.groups, ".")

	out := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	out = append(out, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		out = append(out, h.replace(a))

		return true
	})

	return out
}

func (h prettyBase) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range h.header(r) {
		h.writeAttr(buf, a)
	}

	for _, a := range h.body(r) {
		h.writeAttr(buf, a)
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.with(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &prettyTextHandler{h.group(name)}
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if isEmpty(a) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			if a.Key != "" {
				ga.Key = a.Key + "." + ga.Key
			}

			h.writeAttr(buf, ga)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(colorGray)
	buf.WriteString(a.Key)
	buf.WriteString(colorReset)
	buf.WriteByte('=')

	writeColored(buf, a.Key, a.Value)
}

// writeColored writes v wrapped in a color chosen by its kind.
func writeColored(buf *bytes.Buffer, key string, v slog.Value) {
	color, text := colorCyan, v.String()

	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		color = colorYellow

	case slog.KindBool:
		color = colorRed
		if v.Bool() {
			color = colorGreen
		}

	case slog.KindDuration:
		color = colorMagenta

	case slog.KindTime:
		color, text = colorBlue, v.Time().Format(time.RFC3339)

	case slog.KindString:
		if key == slog.LevelKey {
			color = levelColor(ParseLevel(text))
		}

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			color, text = levelColor(Level(level)), strings.ToUpper(Level(level).String())
		}
	}

	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(colorReset)
}

func levelColor(level Level) string {
	switch {
	case level >= LevelError:
		return colorRed
	case level >= LevelWarn:
		return colorYellow
	case level >= LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

// prettyJSONHandler writes each record as an indented, colorized object.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("{")

	first := true

	for _, a := range h.header(r) {
		h.writeField(buf, a, 1, &first)
	}

	for _, a := range h.body(r) {
		h.writeField(buf, a, 1, &first)
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.with(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &prettyJSONHandler{h.group(name)}
}

func (h *prettyJSONHandler) writeField(
	buf *bytes.Buffer,
	a slog.Attr,
	depth int,
	first *bool,
) {
	a.Value = a.Value.Resolve()

	if isEmpty(a) {
		return
	}

	if !*first {
		buf.WriteByte(',')
	}

	*first = false

	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteString(colorGray)
	buf.WriteString(strconv.Quote(a.Key))
	buf.WriteString(colorReset)
	buf.WriteString(": ")

	if a.Value.Kind() != slog.KindGroup {
		writeColored(buf, a.Key, a.Value)

		return
	}

	buf.WriteByte('{')

	inner := true
	for _, ga := range a.Value.Group() {
		h.writeField(buf, ga, depth+1, &inner)
	}

	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteByte('}')
}

// isEmpty reports whether a was elided by ReplaceAttr.
func isEmpty(a slog.Attr) bool {
	return a.Key == "" && a.Value.Kind() == slog.KindAny && a.Value.Any() == nil
}
