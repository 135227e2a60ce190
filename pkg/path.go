package pkg

import (
	"os"
	"path/filepath"
	"sync"
)

// HomeDir returns the current user's home directory, or the empty string if
// it cannot be determined.
//
//nolint:gochecknoglobals
var HomeDir = sync.OnceValue(
	func() string {
		dir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}

		return dir
	},
)

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Name)
	},
)

// CacheDir returns the cache directory path used for transient files such as
// REPL history.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Name)
	},
)

// userDir resolves a per-user directory with lookup, falling back to
// fallback under the home directory and then the working directory.
func userDir(lookup func() (string, error), fallback string) string {
	if dir, err := lookup(); err == nil {
		return dir
	}

	if home := HomeDir(); home != "" {
		return filepath.Join(home, fallback)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}
