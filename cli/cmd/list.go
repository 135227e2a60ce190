package cmd

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/pkg"
)

// Output formats accepted by [List].
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// List prints the functions defined in the Runfile. Nothing in the Runfile
// is executed.
type List struct {
	Output string
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) error {
	env := envFrom(ctx)

	_, prog, err := env.loadRunfile(ctx)
	switch {
	case errors.Is(err, pkg.ErrNoRunfile):
		env.errorf("Error: %v", err)

		return ExitCode(1)

	case err != nil:
		env.errorf("Error parsing Runfile: %v", err)

		return ExitCode(1)
	}

	switch l.Output {
	case "", OutputText:
		names := FunctionNames(prog)
		if len(names) == 0 {
			env.printf("No functions defined in Runfile.")

			return nil
		}

		env.printf("Available functions:")

		for _, name := range names {
			env.printf("  %s", name)
		}

		return nil

	case OutputJSON:
		return definitions(env, prog).FormatJSON(ctx, env.Stdout, lang.DefaultIndent)

	case OutputYAML:
		return definitions(env, prog).FormatYAML(ctx, env.Stdout, lang.DefaultIndent)

	default:
		return ErrOutputFormat.With(slog.String("output", l.Output))
	}
}

// FunctionNames returns the names of the top-level function definitions of
// prog in source order, each listed once.
func FunctionNames(prog *lang.Program) []string {
	var names []string

	for stmt := range prog.All() {
		var name string

		switch s := stmt.(type) {
		case *lang.SimpleFunctionDef:
			name = s.Name
		case *lang.FunctionDef:
			name = s.Name
		default:
			continue
		}

		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names
}

// definitions returns the variables and functions prog defines.
func definitions(env *Env, prog *lang.Program) *lang.Program {
	in := lang.NewInterpreter(nil, lang.WithLogger(env.Logger))
	in.Define(prog)

	return in.Snapshot()
}
