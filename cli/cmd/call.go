package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/pkg"
)

// Call loads the Runfile and invokes a function the way a command line does,
// e.g. "run docker shell app" resolves docker:shell with argument app.
type Call struct {
	Name  string
	Args  []string
	Which bool // report the resolution instead of running it
}

// Run executes the call command.
func (c *Call) Run(ctx context.Context) error {
	env := envFrom(ctx)

	_, prog, err := env.loadRunfile(ctx)
	switch {
	case errors.Is(err, lang.ErrParse):
		env.reportParseError(err)

		return ExitCode(1)

	case errors.Is(err, pkg.ErrNoRunfile), err != nil:
		env.errorf("Error: %v", err)

		return ExitCode(1)
	}

	in := env.interpreter()

	if c.Which {
		in.Define(prog)

		return c.which(ctx, env, in)
	}

	if err := in.Execute(ctx, prog); err != nil {
		env.errorf("Error loading functions: %v", err)

		return ExitCode(1)
	}

	in.ResetStatus()

	if err := in.ResolveAndCall(ctx, c.Name, c.Args); err != nil {
		env.Logger.DebugContext(ctx, "call failed", slog.Any("error", err))
		env.notFound(err)

		return ExitCode(1)
	}

	return status(in)
}

// which prints the definition the call resolves to and what it would run:
//
//	docker shell app -> docker:shell (subcommand)
//	  docker exec -it app sh
func (c *Call) which(ctx context.Context, env *Env, in *lang.Interpreter) error {
	r, err := in.Resolve(c.Name, c.Args, false)
	if err != nil {
		env.notFound(err)

		return ExitCode(1)
	}

	env.printf("%s -> %s (%s)",
		strings.Join(append([]string{c.Name}, c.Args...), " "), r.Name, r.Strategy)

	if !r.Block {
		env.printf("  %s", in.Expand(r))

		return nil
	}

	var buf bytes.Buffer
	if err := (&lang.Program{Statements: r.Body}).Format(ctx, &buf, lang.DefaultIndent); err != nil {
		return err
	}

	for line := range strings.Lines(buf.String()) {
		env.printf("  %s", strings.TrimRight(line, "\n"))
	}

	return nil
}

// notFound reports a failed call with any "did you mean" candidates.
func (e *Env) notFound(err error) {
	e.errorf("Error: %v", err)

	if s := lang.Suggestions(err); len(s) > 0 {
		e.errorf("Did you mean: %s?", strings.Join(s, ", "))
	}
}
