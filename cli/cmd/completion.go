package cmd

import (
	"context"
	"embed"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/ardnew/run/pkg"
)

//go:embed completions
var completions embed.FS

// Shells lists the shells a completion script is provided for.
//
//nolint:gochecknoglobals
var Shells = []string{"bash", "zsh", "fish"}

// completionFile maps a shell to its embedded script and the path, relative
// to the home directory, it is installed to.
//
//nolint:gochecknoglobals
var completionFile = map[string]struct{ script, install string }{
	"bash": {"completions/run.bash", ".local/share/bash-completion/completions/run"},
	"zsh":  {"completions/run.zsh", ".zsh/completion/_run"},
	"fish": {"completions/run.fish", ".config/fish/completions/run.fish"},
}

// CompletionScript returns the completion script for shell.
func CompletionScript(shell string) ([]byte, error) {
	f, ok := completionFile[shell]
	if !ok {
		return nil, ErrUnknownShell.With(slog.String("shell", shell))
	}

	return completions.ReadFile(f.script)
}

// detectShell picks a supported shell from the value of $SHELL.
func detectShell(env string) string {
	for _, name := range Shells {
		if strings.Contains(env, name) {
			return name
		}
	}

	return ""
}

// Completion prints the completion script for a shell.
type Completion struct {
	Shell string
}

// Run executes the completion command.
func (c *Completion) Run(ctx context.Context) error {
	env := envFrom(ctx)

	script, err := CompletionScript(c.Shell)
	if err != nil {
		env.errorf("Error: %v '%s'", ErrUnknownShell, c.Shell)
		env.errorf("Supported shells: %s", strings.Join(Shells, ", "))

		return ExitCode(1)
	}

	_, err = env.Stdout.Write(script)

	return err
}

// Install writes the completion script for a shell to the location the
// shell loads completions from. The shell is detected from $SHELL when not
// given.
type Install struct {
	Shell string
}

// Run executes the install command.
func (i *Install) Run(ctx context.Context) error {
	env := envFrom(ctx)

	name := i.Shell
	if name == "" {
		name = detectShell(env.getenv("SHELL"))
	}

	if !slices.Contains(Shells, name) {
		if i.Shell == "" {
			env.errorf("Could not detect shell. Please specify: --install-completion <SHELL>")
		} else {
			env.errorf("Error: %v '%s'", ErrUnknownShell, i.Shell)
		}

		env.errorf("Supported shells: %s", strings.Join(Shells, ", "))

		return ExitCode(1)
	}

	env.printf("Installing %s completion for %s...", name, pkg.Name)

	if env.Home == "" {
		env.errorf("Error: Could not determine home directory")

		return ExitCode(1)
	}

	script, err := CompletionScript(name)
	if err != nil {
		return err
	}

	path := filepath.Join(env.Home, filepath.FromSlash(completionFile[name].install))

	env.Logger.DebugContext(ctx, "install completion",
		slog.String("shell", name),
		slog.String("path", path))

	if err := env.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		env.errorf("Error creating completion directory: %v", err)

		return ExitCode(1)
	}

	if err := afero.WriteFile(env.FS, path, script, 0o644); err != nil {
		env.errorf("Error: %v", ErrWriteCompletion.Wrap(err))

		return ExitCode(1)
	}

	env.printf("✓ Installed completion to %s", path)

	switch name {
	case "bash":
		env.printf("\nTo activate completions, restart your shell or run:")
		env.printf("  source ~/.bashrc")

	case "zsh":
		env.zshrcAdvice()
		env.printf("\nTo activate completions, restart your shell or run:")
		env.printf("  exec zsh")

	case "fish":
		env.printf("\nCompletions will be automatically loaded on next shell startup.")
		env.printf("To activate now, restart fish or run:")
		env.printf("  exec fish")
	}

	env.printf("\n✓ Installation complete!")

	return nil
}

const (
	zshFpath    = "fpath=(~/.zsh/completion $fpath)"
	zshCompinit = "autoload -Uz compinit && compinit"
)

// zshrcAdvice prints the lines ~/.zshrc is missing for the installed script
// to be found.
func (e *Env) zshrcAdvice() {
	rc, _ := afero.ReadFile(e.FS, filepath.Join(e.Home, ".zshrc"))

	needFpath := true
	needCompinit := !strings.Contains(string(rc), "autoload -Uz compinit")

	for line := range strings.Lines(string(rc)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "fpath") && strings.Contains(line, "~/.zsh/completion") {
			needFpath = false

			break
		}
	}

	if !needFpath && !needCompinit {
		return
	}

	e.printf("\nAdd the following to your ~/.zshrc:")

	if needFpath {
		e.printf("  %s", zshFpath)
	}

	if needCompinit {
		e.printf("  %s", zshCompinit)
	}

	e.printf("\nOr run:")

	if needFpath {
		e.printf("  echo '%s' >> ~/.zshrc", zshFpath)
	}

	if needCompinit {
		e.printf("  echo '%s' >> ~/.zshrc", zshCompinit)
	}
}
