package lang

import "github.com/ardnew/run/log"

// DefaultMaxDepth is the default maximum nesting of block function calls.
//
//nolint:gochecknoglobals
var DefaultMaxDepth = 100

type config struct {
	logger   log.Logger
	filename string
	maxDepth int
	cache    bool
}

// Option configures parsing or interpretation.
type Option func(*config)

// WithLogger sets the structured logger.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithFilename sets the name reported in parse errors.
func WithFilename(name string) Option {
	return func(c *config) { c.filename = name }
}

// WithMaxDepth sets the maximum nesting of block function calls.
// Values less than one restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

// WithCache controls whether [Parse] reuses programs parsed from identical
// source. Enabled by default.
func WithCache(enable bool) Option {
	return func(c *config) { c.cache = enable }
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth, cache: true}

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}
