package cmd

import (
	"context"

	"github.com/spf13/afero"

	"github.com/ardnew/run/lang"
)

// Script parses a file and executes it in a fresh interpreter. The Runfile is
// not loaded.
type Script struct {
	Path string
}

// Run executes the script command.
func (s *Script) Run(ctx context.Context) error {
	env := envFrom(ctx)

	data, err := afero.ReadFile(env.FS, s.Path)
	if err != nil {
		env.errorf("Error reading file '%s': %v", s.Path, err)

		return ExitCode(1)
	}

	prog, err := lang.Parse(ctx, string(data),
		lang.WithFilename(s.Path),
		lang.WithLogger(env.Logger),
	)
	if err != nil {
		env.reportParseError(err)

		return ExitCode(1)
	}

	in := env.interpreter()

	if err := in.Execute(ctx, prog); err != nil {
		env.errorf("Execution error: %v", err)

		return ExitCode(1)
	}

	return status(in)
}
