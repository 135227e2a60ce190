package repl

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/spf13/afero"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/log"
)

// Session is the interpreter state shared by every line entered in a REPL,
// together with the Runfile its definitions were loaded from.
type Session struct {
	interp *lang.Interpreter
	fs     afero.Fs
	path   string
	digest uint64
	logger log.Logger
}

// NewSession returns a Session evaluating with interp. Runfile may be empty.
func NewSession(
	interp *lang.Interpreter,
	fs afero.Fs,
	runfile string,
	logger log.Logger,
) *Session {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Session{interp: interp, fs: fs, path: runfile, logger: logger}
}

// Runfile returns the path of the session's Runfile, or the empty string.
func (s *Session) Runfile() string { return s.path }

// Load reads the Runfile and executes it, the same way a function call from
// the command line loads it. It is a no-op without a Runfile.
func (s *Session) Load(ctx context.Context) error {
	prog, digest, err := s.read(ctx)
	if err != nil || prog == nil {
		return err
	}

	s.digest = digest

	return s.interp.Execute(ctx, prog)
}

// Reload re-reads the Runfile and applies its assignments and definitions
// when its content changed since the last load. No command is run. Current
// definitions are kept when the Runfile cannot be parsed.
func (s *Session) Reload(ctx context.Context) (n int, changed bool, err error) {
	prog, digest, err := s.read(ctx)
	if err != nil || prog == nil {
		return 0, false, err
	}

	if digest == s.digest {
		s.logger.TraceContext(ctx, "runfile unchanged", slog.String("path", s.path))

		return 0, false, nil
	}

	s.digest = digest
	n = s.interp.Define(prog)

	s.logger.DebugContext(ctx, "runfile reloaded",
		slog.String("path", s.path),
		slog.Int("definitions", n))

	return n, true, nil
}

func (s *Session) read(ctx context.Context) (*lang.Program, uint64, error) {
	if s.path == "" {
		return nil, 0, nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, 0, lang.ErrReadInput.Wrap(err).With(slog.String("path", s.path))
	}

	src := string(data)

	prog, err := lang.Parse(ctx, src,
		lang.WithFilename(s.path),
		lang.WithLogger(s.logger),
	)
	if err != nil {
		return nil, 0, err
	}

	return prog, lang.Digest(src), nil
}

// Eval parses line as Runfile source and executes it.
func (s *Session) Eval(ctx context.Context, line string) error {
	prog, err := lang.Parse(ctx, line, lang.WithLogger(s.logger))
	if err != nil {
		return err
	}

	return s.interp.Execute(ctx, prog)
}

// Call splits line into words the way a shell would and invokes the first
// word with the rest as arguments, resolved as on the command line.
func (s *Session) Call(ctx context.Context, line string) error {
	words, err := shlex.Split(line, true)
	if err != nil {
		return err
	}

	if len(words) == 0 {
		return nil
	}

	return s.interp.ResolveAndCall(ctx, words[0], words[1:])
}

// Functions returns the names of all defined functions, sorted.
func (s *Session) Functions() []string { return s.interp.Functions() }

// Variables returns the names of all defined variables, sorted.
func (s *Session) Variables() []string {
	return slices.Sorted(maps.Keys(s.interp.Variables()))
}

// Value returns the value of a variable.
func (s *Session) Value(name string) (string, bool) {
	v, ok := s.interp.Variables()[name]

	return v, ok
}

// Template returns the template of a single-line function, or the empty
// string for a block function or an undefined name.
func (s *Session) Template(name string) string {
	r, err := s.interp.Resolve(name, nil, true)
	if err != nil || r.Block || r.Name != name {
		return ""
	}

	return r.Template
}

// Preview returns a one-line summary of the definition of function name.
func (s *Session) Preview(name string) string {
	r, err := s.interp.Resolve(name, nil, true)
	if err != nil || r.Name != name {
		return ""
	}

	if r.Block {
		return "{ " + strconv.Itoa(len(r.Body)) + " statements }"
	}

	const maxPreview = 40

	if len(r.Template) > maxPreview {
		return r.Template[:maxPreview-3] + "..."
	}

	return r.Template
}

// Dump writes the session's variables and functions as Runfile source.
func (s *Session) Dump(ctx context.Context, w io.Writer) error {
	return s.interp.Snapshot().Format(ctx, w, lang.DefaultIndent)
}

// Status returns and clears the first failing exit status recorded since the
// last call.
func (s *Session) Status() lang.ExitStatus {
	status := s.interp.Status()
	s.interp.ResetStatus()

	return status
}

// describe renders an evaluation error for display.
func describe(err error) string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(err.Error())

	if sugg := lang.Suggestions(err); len(sugg) > 0 {
		sb.WriteString("\nDid you mean: ")
		sb.WriteString(strings.Join(sugg, ", "))
		sb.WriteString("?")
	}

	return sb.String()
}
