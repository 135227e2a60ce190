package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/run/cli/cmd"
	"github.com/ardnew/run/log"
	"github.com/ardnew/run/pkg"
	"github.com/ardnew/run/shell"
)

// configGroups are the flag groups recorded by --init-config.
//
//nolint:gochecknoglobals
var configGroups = []string{"log", "shell"}

type shellConfig struct {
	Runfile string   `env:"RUN_FILE"                help:"Use this Runfile instead of searching for one." placeholder:"PATH" short:"f" type:"path"`
	Shell   string   `env:"RUN_SHELL"               help:"Shell that runs commands ('${shellBuiltin}' for the built-in shell)." placeholder:"PROGRAM"`
	Path    []string `help:"Directory prepended to PATH for commands (repeatable)." placeholder:"DIR" type:"path"`
	DryRun  bool     `help:"Print commands instead of running them."                short:"n"`
}

func (*shellConfig) vars() kong.Vars {
	return kong.Vars{
		"shellBuiltin": shell.BuiltinName,
	}
}

func (*shellConfig) group() kong.Group {
	return kong.Group{Key: "shell", Title: "Shell options"}
}

// CLI is the top-level command-line interface for run.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Shell shellConfig `embed:"" group:"shell"`

	Version kong.VersionFlag `help:"Print version and exit."`

	List   bool   `help:"List available functions."     short:"l"`
	Output string `default:"text"                        enum:"text,json,yaml" help:"Format of --list output."`
	Which  bool   `help:"Show how a function call resolves instead of running it."`

	GenerateCompletion string `help:"Print the completion script for SHELL (bash, zsh, fish)." placeholder:"SHELL"`
	InstallCompletion  bool   `help:"Install the completion script for the shell given as the first argument, or for $SHELL."`

	InitConfig bool `help:"Write the current settings to ${configFile}."`
	Force      bool `help:"Overwrite an existing config file with --init-config."`

	Target []string `arg:"" help:"Script file to execute, or function name followed by its arguments. Starts the REPL when omitted." name:"file-or-function" optional:"" passthrough:""`
}

// Run dispatches to the command selected by the flags and arguments.
func (c *CLI) Run(ctx context.Context, env *cmd.Env) error {
	var target string
	if len(c.Target) > 0 {
		target = c.Target[0]
	}

	switch {
	case c.InitConfig:
		return (&cmd.Init{
			Path:   configPath(baseConfig),
			Force:  c.Force,
			Groups: configGroups,
		}).Run(ctx)

	case c.InstallCompletion:
		return (&cmd.Install{Shell: target}).Run(ctx)

	case c.GenerateCompletion != "":
		return (&cmd.Completion{Shell: c.GenerateCompletion}).Run(ctx)

	case c.List:
		return (&cmd.List{Output: c.Output}).Run(ctx)

	case target == "":
		return (&cmd.REPL{CacheDir: cacheDir()}).Run(ctx)

	case env.IsFile(target):
		return (&cmd.Script{Path: target}).Run(ctx)

	default:
		return (&cmd.Call{Name: target, Args: c.Target[1:], Which: c.Which}).Run(ctx)
	}
}

// Run executes the run CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, cmd.DefaultEnv(), args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	env *cmd.Env,
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(env.FS); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":    pkg.Version,
		"configFile": configFilePath,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Shell.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that the logger is configured before kong
	// reports any parse error.
	cli.Log.scan(args)

	groups := []kong.Group{cli.Log.group(), cli.Shell.group()}
	if g := cli.Pprof.group(); g.Key != "" {
		groups = append(groups, g)
	}

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(env.Stdout, env.Stderr),
		kong.ExplicitGroups(groups),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				FlagsLast:           false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	env.Runfile = cli.Shell.Runfile
	env.Shell = cli.Shell.Shell
	env.Path = cli.Shell.Path
	env.DryRun = cli.Shell.DryRun
	env.Logger = log.Default()

	env.Logger.DebugContext(ctx, "run",
		slog.String("dir", env.Dir),
		slog.String("runfile", env.Runfile),
		slog.String("shell", env.ShellName()),
		slog.Bool("dry_run", env.DryRun))

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithEnv(ctx, env)

	err = cli.Run(ctx, env)

	var code cmd.ExitCode
	if errors.As(err, &code) {
		exit(int(code))

		return nil
	}

	return err
}
