package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ardnew/run/lang"
)

const linePrompt = "> "

// IsTerminal reports whether r and w are both attached to a terminal.
func IsTerminal(r io.Reader, w io.Writer) bool {
	return isTTY(r) && isTTY(w)
}

func isTTY(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runLines evaluates one line of input at a time until exit or end of input.
func runLines(ctx context.Context, cfg Config) error {
	r := bufio.NewReader(cfg.Stdin)

	for {
		fmt.Fprint(cfg.Stdout, linePrompt)

		line, readErr := r.ReadString('\n')

		switch input := strings.TrimSpace(line); input {
		case "":

		case "exit", "quit":
			fmt.Fprintln(cfg.Stdout, "Goodbye!")

			return nil

		default:
			if err := cfg.Session.Eval(ctx, input); err != nil {
				report(cfg.Stderr, err)
			}

			cfg.Session.Status()
		}

		switch {
		case errors.Is(readErr, io.EOF):
			fmt.Fprintln(cfg.Stdout, "\nGoodbye!")

			return nil

		case readErr != nil:
			fmt.Fprintf(cfg.Stderr, "Error reading input: %v\n", readErr)

			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// report writes an evaluation error to w. Parse errors are shown with the
// offending source line.
func report(w io.Writer, err error) {
	var pe *lang.ParseError
	if errors.As(err, &pe) {
		_ = pe.Report(w)

		return
	}

	fmt.Fprintln(w, describe(err))
}
