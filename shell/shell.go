package shell

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/run/lang"
)

const (
	// EnvShell names the environment variable that overrides the shell.
	EnvShell = "RUN_SHELL"

	// BuiltinName selects the in-process POSIX shell.
	BuiltinName = "builtin"

	// DefaultShell is the shell used on Unix-like systems.
	DefaultShell = "sh"

	// GitBash is the default Git for Windows bash location.
	GitBash = `C:\Program Files\Git\bin\bash.exe`
)

// Detect returns the shell used to run commands: the value of [EnvShell] if
// set; on Windows, bash from PATH, then [GitBash], then [BuiltinName];
// otherwise [DefaultShell].
func Detect() string {
	return detect(runtime.GOOS, os.Getenv, exec.LookPath, isFile)
}

func detect(
	goos string,
	getenv func(string) string,
	lookPath func(string) (string, error),
	exists func(string) bool,
) string {
	if s := getenv(EnvShell); s != "" {
		return s
	}

	if goos != "windows" {
		return DefaultShell
	}

	if _, err := lookPath("bash"); err == nil {
		return "bash"
	}

	if exists(GitBash) {
		return GitBash
	}

	return BuiltinName
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// Runner executes commands with a shell.
type Runner struct {
	config

	shell string
}

// New returns a Runner for shell. An empty shell is resolved with [Detect].
func New(shell string, opts ...Option) *Runner {
	if shell == "" {
		shell = Detect()
	}

	return &Runner{config: makeConfig(opts...), shell: shell}
}

// Shell returns the shell program, or [BuiltinName].
func (r *Runner) Shell() string { return r.shell }

// Execute runs command and waits for it to exit. A command that runs and
// exits non-zero reports its status with a nil error.
func (r *Runner) Execute(ctx context.Context, command string) (lang.ExitStatus, error) {
	r.logger.TraceContext(ctx, "execute",
		slog.String("shell", r.shell),
		slog.String("command", command))

	if r.shell == BuiltinName {
		return r.interpret(ctx, command)
	}

	return r.spawn(ctx, command)
}

func (r *Runner) spawn(ctx context.Context, command string) (lang.ExitStatus, error) {
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Env = r.environ()
	cmd.Dir = r.dir

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 1, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return lang.ExitStatus(code), nil
		}

		// terminated by a signal
		return 1, nil
	}

	return 1, err
}

// environ returns the environment of executed commands with the configured
// directories prepended to PATH.
func (r *Runner) environ() []string {
	env := r.env
	if env == nil {
		env = os.Environ()
	}

	if len(r.path) == 0 {
		return env
	}

	key := pathKey(env)

	var current string

	out := make([]string, 0, len(env)+1)

	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			current = v

			continue
		}

		out = append(out, kv)
	}

	return append(out, key+"="+prefixPath(current, r.path...))
}

// prefixPath prepends dirs to the PATH-like list.
func prefixPath(list string, dirs ...string) string {
	return mung.Make(
		mung.WithSubjectItems(filepath.SplitList(list)...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()
}

// pathKey returns the spelling of PATH used by env. Windows environments
// commonly spell it "Path".
func pathKey(env []string) string {
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, "PATH") {
			return k
		}
	}

	return "PATH"
}
