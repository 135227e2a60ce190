package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/ardnew/run/lang"
)

// Init writes a configuration file holding the current value of every flag
// in Groups. The file is Runfile source: one assignment per flag, with
// hyphens in flag names written as underscores.
type Init struct {
	Path   string
	Force  bool     // overwrite an existing file
	Groups []string // flag groups to record
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	env := envFrom(ctx)

	if _, err := env.FS.Stat(i.Path); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", i.Path)).
			Wrap(ErrFileExists)
	}

	var buf bytes.Buffer

	prog := i.program(kongContextFrom(ctx))
	if err := prog.Format(ctx, &buf, lang.DefaultIndent); err != nil {
		return ErrWriteConfig.With(slog.String("file", i.Path)).Wrap(err)
	}

	if err := env.FS.MkdirAll(filepath.Dir(i.Path), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", i.Path)).Wrap(err)
	}

	if err := afero.WriteFile(env.FS, i.Path, buf.Bytes(), 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", i.Path)).Wrap(err)
	}

	env.Logger.DebugContext(ctx, "initialized configuration file",
		slog.String("path", i.Path),
		slog.Int("settings", len(prog.Statements)))

	env.printf("Wrote %s", i.Path)

	return nil
}

// program builds the configuration from the parsed flag values.
func (i *Init) program(ktx *kong.Context) *lang.Program {
	prog := &lang.Program{}
	if ktx == nil {
		return prog
	}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || flag.Group == nil || !slices.Contains(i.Groups, flag.Group.Key) {
			continue
		}

		value, ok := flagValue(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		prog.Statements = append(prog.Statements, &lang.Assignment{
			Name:  strings.ReplaceAll(flag.Name, "-", "_"),
			Value: lang.StringLiteral(value),
		})
	}

	return prog
}

// flagValue renders a flag value the way the config resolver reads it back.
// Empty values are skipped.
func flagValue(v any) (string, bool) {
	var s string

	switch v := v.(type) {
	case nil:
		return "", false
	case []string:
		s = strings.Join(v, ",")
	default:
		s = fmt.Sprint(v)
	}

	return s, s != ""
}
