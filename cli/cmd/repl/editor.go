package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/anmitsu/go-shlex"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens the Runfile in the
// user's editor and parses the result. On a parse error the user is offered
// to edit again; declining leaves the file as written.
type editCommand struct {
	ctx    context.Context
	editor string
	path   string
	logger log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. It returns [ErrEditDeclined] when
// the user declines to fix a parse error.
func (c *editCommand) Run() error {
	scanner := bufio.NewScanner(c.stdin)

	for {
		if err := runEditor(c.ctx, c.editor, c.path, c.stdin, c.stdout, c.stderr); err != nil {
			return err
		}

		data, err := os.ReadFile(c.path)
		if err != nil {
			return err
		}

		_, parseErr := lang.Parse(c.ctx, string(data),
			lang.WithFilename(c.path),
			lang.WithLogger(c.logger),
		)
		c.logger.TraceContext(c.ctx, "editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil))

		if parseErr == nil {
			return nil
		}

		fmt.Fprintln(c.stderr)
		report(c.stderr, parseErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs editor on path. The editor may carry arguments, as in
// "code --wait".
func runEditor(
	ctx context.Context,
	editor, path string,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	if editor == "" {
		editor = defaultEditor
	}

	argv, err := shlex.Split(editor, true)
	if err != nil {
		return err
	}

	if len(argv) == 0 {
		return errors.New("empty editor command")
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
