package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/ardnew/run/lang"
)

// Printer writes each command on its own line instead of running it.
type Printer struct {
	w       io.Writer
	printer *syntax.Printer
}

// NewPrinter returns a Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		printer: syntax.NewPrinter(syntax.SingleLine(true)),
	}
}

// Execute writes the formatted command and reports success.
func (p *Printer) Execute(_ context.Context, command string) (lang.ExitStatus, error) {
	_, err := fmt.Fprintln(p.w, p.Format(command))

	return 0, err
}

// Format returns command in canonical shell syntax on a single line, or
// command unchanged if it cannot be parsed.
func (p *Printer) Format(command string) string {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return command
	}

	var buf bytes.Buffer
	if err := p.printer.Print(&buf, file); err != nil {
		return command
	}

	return strings.TrimRight(buf.String(), "\n")
}
