package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ardnew/run/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cacheDir returns the directory holding transient files such as REPL
// history and profiles.
func cacheDir() string { return pkg.CacheDir() }

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired(fs afero.Fs) error {
	for _, dir := range []string{pkg.ConfigDir(), cacheDir()} {
		if err := fs.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
