package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/log"
	"github.com/ardnew/run/pkg"
	"github.com/ardnew/run/shell"
)

// Env describes the process environment a command runs in.
type Env struct {
	FS     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Dir     string // where Runfile discovery starts
	Home    string
	Runfile string // explicit Runfile path, bypasses discovery

	Shell  string   // host shell program or shell.BuiltinName; empty detects
	Path   []string // directories prepended to PATH for every command
	DryRun bool

	Getenv func(string) string
	Logger log.Logger
}

// DefaultEnv returns an Env for the current process.
func DefaultEnv() *Env {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	return &Env{
		FS:     afero.NewOsFs(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Dir:    wd,
		Home:   pkg.HomeDir(),
		Getenv: os.Getenv,
		Logger: log.Default(),
	}
}

type envKey struct{}

// WithEnv returns a new context.Context containing env.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// envFrom retrieves the Env stored in ctx by WithEnv, or [DefaultEnv] if none
// was stored.
func envFrom(ctx context.Context) *Env {
	env, ok := ctx.Value(envKey{}).(*Env)
	if !ok || env == nil {
		return DefaultEnv()
	}

	return env
}

type kongKey struct{}

// WithContext returns a new context.Context containing the parsed command
// line.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

// kongContextFrom retrieves the *kong.Context stored in ctx by WithContext.
func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// ShellName returns the shell commands are run with.
func (e *Env) ShellName() string {
	if e.Shell != "" {
		return e.Shell
	}

	return shell.Detect()
}

func (e *Env) executor() lang.Executor {
	if e.DryRun {
		return shell.NewPrinter(e.Stdout)
	}

	return shell.New(e.Shell,
		shell.WithStdio(e.Stdin, e.Stdout, e.Stderr),
		shell.WithPath(e.Path...),
		shell.WithLogger(e.Logger),
	)
}

func (e *Env) interpreter() *lang.Interpreter {
	return lang.NewInterpreter(e.executor(), lang.WithLogger(e.Logger))
}

// loadRunfile reads the Runfile and parses it.
// The Runfile is returned with a nil program when it cannot be parsed.
func (e *Env) loadRunfile(ctx context.Context) (pkg.Runfile, *lang.Program, error) {
	rf, err := pkg.LoadRunfile(e.FS, e.Runfile, e.Dir, e.Home)
	if err != nil {
		if errors.Is(err, pkg.ErrNoRunfile) {
			return rf, nil, err
		}

		return rf, nil, ErrLoadRunfile.Wrap(err).
			With(slog.String("path", e.Runfile))
	}

	e.Logger.DebugContext(ctx, "runfile", slog.String("path", rf.Path))

	prog, err := lang.Parse(ctx, rf.Content,
		lang.WithFilename(rf.Path),
		lang.WithLogger(e.Logger),
	)

	return rf, prog, err
}

// IsFile reports whether path names a regular file.
func (e *Env) IsFile(path string) bool {
	info, err := e.FS.Stat(path)

	return err == nil && !info.IsDir()
}

func (e *Env) getenv(key string) string {
	if e.Getenv == nil {
		return ""
	}

	return e.Getenv(key)
}

// errorf writes a line to the error stream.
func (e *Env) errorf(format string, args ...any) {
	fmt.Fprintf(e.Stderr, format+"\n", args...)
}

// printf writes a line to the output stream.
func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Stdout, format+"\n", args...)
}

// reportParseError writes a parse error with its source snippet, or the
// plain error when err is not a [*lang.ParseError].
func (e *Env) reportParseError(err error) {
	var pe *lang.ParseError
	if errors.As(err, &pe) {
		_ = pe.Report(e.Stderr)

		return
	}

	e.errorf("Parse error: %v", err)
}

// status converts the first failing command status of an interpreter into
// an [ExitCode], or nil when every command succeeded.
func status(in *lang.Interpreter) error {
	if s := in.Status(); !s.Success() {
		return ExitCode(s)
	}

	return nil
}
