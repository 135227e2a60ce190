package shell

import (
	"io"
	"os"

	"github.com/ardnew/run/log"
)

type config struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    []string
	dir    string
	path   []string
	logger log.Logger
}

// Option configures a [Runner].
type Option func(*config)

// WithStdio sets the standard streams of executed commands.
// A nil stream leaves the default in place.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *config) {
		if stdin != nil {
			c.stdin = stdin
		}

		if stdout != nil {
			c.stdout = stdout
		}

		if stderr != nil {
			c.stderr = stderr
		}
	}
}

// WithEnv replaces the inherited process environment with env, given as
// "KEY=value" pairs.
func WithEnv(env []string) Option {
	return func(c *config) { c.env = env }
}

// WithDir sets the working directory of executed commands.
func WithDir(dir string) Option {
	return func(c *config) { c.dir = dir }
}

// WithPath prepends dirs to the PATH of executed commands.
func WithPath(dirs ...string) Option {
	return func(c *config) { c.path = append(c.path, dirs...) }
}

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func makeConfig(opts ...Option) config {
	c := config{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}
