package lang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values). Errors derived from a sentinel with
// [Error.Wrap], [Error.With], or [Error.Describe] match it with [errors.Is].
var (
	ErrParse            = NewError("parse error")
	ErrFunctionNotFound = NewError("function not found")
	ErrExecute          = NewError("command execution failed")
	ErrMaxDepthExceeded = NewError("maximum call depth exceeded")
	ErrReadInput        = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	text  string      // replaces msg in Error() when set
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	kind  *Error      // sentinel this error derives from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
//
//	"<msg>: <err>" or "<msg>" when nothing is wrapped.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	switch {
	case e.text != "":
		part = append(part, e.text)
	case e.msg != "":
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e derives from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.origin() == e.origin()
}

func (e *Error) origin() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.text != "" {
		attrs = append(attrs, slog.String("message", e.text))
	} else if e.msg != "" {
		attrs = append(attrs, slog.String("message", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		text:  e.text,
		err:   err,
		attrs: e.attrs,
		kind:  e.origin(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		text:  e.text,
		err:   e.err,
		attrs: newAttrs,
		kind:  e.origin(),
	}
}

// Describe returns a copy of e whose message is replaced by the formatted
// text. The copy still matches e with [errors.Is].
func (e *Error) Describe(format string, args ...any) *Error {
	return &Error{
		msg:   e.msg,
		text:  fmt.Sprintf(format, args...),
		err:   e.err,
		attrs: e.attrs,
		kind:  e.origin(),
	}
}

// NotFoundError is returned when no definition matches a call.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return "Function '" + e.Name + "' not found"
}

// Is matches [ErrFunctionNotFound].
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFunctionNotFound
}

func (e *NotFoundError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("message", e.Error()),
		slog.String("name", e.Name),
	}

	if len(e.Suggestions) > 0 {
		attrs = append(attrs,
			slog.String("suggestions", strings.Join(e.Suggestions, ", ")))
	}

	return slog.GroupValue(attrs...)
}

// Suggestions returns the "did you mean" candidates carried by err, if any.
func Suggestions(err error) []string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Suggestions
	}

	return nil
}

// ParseError reports the first location where source could not be parsed.
type ParseError struct {
	File    string // Optional name of the source
	Line    int
	Column  int
	Message string
	Text    string // The offending physical source line
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var sb strings.Builder

	sb.WriteString("parse error at ")

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteByte(':')
	}

	sb.WriteString("line ")
	sb.WriteString(strconv.Itoa(e.Line))
	sb.WriteString(", column ")
	sb.WriteString(strconv.Itoa(e.Column))
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	return sb.String()
}

// Unwrap makes every ParseError match [ErrParse].
func (e *ParseError) Unwrap() error { return ErrParse }

func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("message", e.Message),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
	}

	if e.File != "" {
		attrs = append(attrs, slog.String("file", e.File))
	}

	return slog.GroupValue(attrs...)
}

// Snippet returns the offending line prefixed by its line number with a caret
// under the error column:
//
//	  3 | greet() echo "Hello
//	                   ^
func (e *ParseError) Snippet() string {
	if e.Line < 1 {
		return ""
	}

	var sb strings.Builder

	num := strconv.Itoa(e.Line)

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(e.Text)
	sb.WriteByte('\n')

	// 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	sb.WriteString(padding)
	sb.WriteString("^\n")

	return sb.String()
}

// Report writes a user-facing description of the error followed by the
// source snippet.
func (e *ParseError) Report(w io.Writer) error {
	file := ""
	if e.File != "" {
		file = e.File + ":"
	}

	_, err := fmt.Fprintf(w, "Parse error in %sline %d: %s\n\n%s",
		file, e.Line, e.Message, e.Snippet())

	return err
}
