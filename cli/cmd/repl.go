package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/run/cli/cmd/repl"
	"github.com/ardnew/run/pkg"
)

// REPL starts an interactive session. Functions from the Runfile, when one
// is found, are loaded before the first prompt.
type REPL struct {
	CacheDir string // history directory; empty keeps history in memory
}

// Run executes the REPL command.
func (r *REPL) Run(ctx context.Context) error {
	env := envFrom(ctx)

	path := env.Runfile
	if path == "" {
		found, err := pkg.FindRunfile(env.FS, env.Dir, env.Home)
		if err != nil && !errors.Is(err, pkg.ErrNoRunfile) {
			return err
		}

		path = found
	}

	env.Logger.DebugContext(ctx, "repl",
		slog.String("runfile", path),
		slog.String("shell", env.ShellName()))

	editor := env.getenv("VISUAL")
	if editor == "" {
		editor = env.getenv("EDITOR")
	}

	return repl.Run(ctx, repl.Config{
		Session:  repl.NewSession(env.interpreter(), env.FS, path, env.Logger),
		Shell:    env.ShellName(),
		Version:  pkg.Version,
		Stdin:    env.Stdin,
		Stdout:   env.Stdout,
		Stderr:   env.Stderr,
		FS:       env.FS,
		CacheDir: r.CacheDir,
		Editor:   editor,
		Logger:   env.Logger,
	})
}
