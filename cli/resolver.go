package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/log"
)

// resolve returns a [kong.ConfigurationLoader] for config files written in
// Runfile syntax. Every top-level assignment supplies the value of the flag
// of the same name, written with underscores in place of hyphens:
//
//	log_level=debug
//	log_pretty=false
//	shell=bash
//	path=/opt/tools/bin,/usr/local/bin
//
// Function definitions are ignored and nothing in the file is executed.
// A file that cannot be parsed is ignored with a warning. Command-line flags
// override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		prog, err := lang.ParseReader(ctx, r, lang.WithFilename(configPath(baseConfig)))
		if err != nil {
			log.WarnContext(ctx, "ignoring config file", slog.Any("error", err))

			return config{}, nil
		}

		in := lang.NewInterpreter(nil)
		in.Define(prog)

		return config(in.Variables()), nil
	}
}

// config implements [kong.Resolver] for Runfile-syntax configs.
type config map[string]string

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
		if value, ok := c[name]; ok {
			return value, nil
		}
	}

	return nil, nil //nolint:nilnil
}
