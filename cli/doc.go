// Package cli contains the command line interface for run.
//
// # Usage
//
//	run [flags] [FILE_OR_FUNCTION] [ARGS...]
//
// With a path to an existing file, the file is parsed and executed as a
// script. Otherwise the first argument names a Runfile function, resolved
// the way a command line is:
//
//	run build               # build()
//	run docker shell app    # docker:shell(app)
//	run docker_shell app    # docker:shell(app)
//
// Without arguments an interactive REPL starts. Everything after the first
// argument is passed to the function untouched, flags included.
//
// # Options
//
//   - -l, --list: list the functions of the Runfile (--output text|json|yaml)
//   - --which: show how a call resolves and the command it would run
//   - -n, --dry-run: print commands instead of running them
//   - -f, --runfile: use a Runfile instead of searching for one ($RUN_FILE)
//   - --shell: shell that runs commands, or "builtin" ($RUN_SHELL)
//   - --path: directory prepended to PATH (repeatable)
//   - --generate-completion SHELL: print a completion script
//   - --install-completion [SHELL]: install a completion script
//   - --init-config [--force]: write the current settings to the config file
//
// # Configuration
//
// Flags may also be set in $XDG_CONFIG_HOME/run/config, which is written in
// Runfile syntax with one assignment per flag, or in config.json next to it:
//
//	log_level=debug
//	shell=bash
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (text, json)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, ...); empty omits
//   - --log-caller: include caller information
//   - --log-pretty: colorize output (default when stderr is a terminal)
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o run .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/run/pprof)
package cli
