// Package log provides a small structured logging interface based on
// [log/slog] with an additional [LevelTrace] severity.
//
// Loggers are values. Options such as [WithLevel] or [WithFormat] produce a
// new configuration, so a [Logger] can be shared between goroutines and
// derived with [Logger.Wrap] or [Logger.With] without affecting the
// original.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("runfile loaded", slog.String("path", path))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339"),
//		log.WithCaller(true))
//
// # Package Logger
//
// The package-level functions ([Info], [WarnContext], ...) write through a
// default logger that [Config] reconfigures. Context-unaware functions use
// [DefaultContextProvider].
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] are supported, each with an
// optional colorized "pretty" rendering enabled by [WithPretty].
package log
