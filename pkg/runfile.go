package pkg

import (
	"errors"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// RunfileName is the file searched for in the working directory and its
	// ancestors.
	RunfileName = "Runfile"
	// HomeRunfileName is the fallback file in the user's home directory.
	HomeRunfileName = ".runfile"
)

// ErrNoRunfile is returned when neither a Runfile nor ~/.runfile exists.
var ErrNoRunfile = errors.New(
	"No Runfile found. Create ~/.runfile or ./Runfile to define functions.",
)

// Runfile is a located definitions file and its content.
type Runfile struct {
	Path    string
	Content string
}

// FindRunfile searches for [RunfileName] in dir and each of its ancestors,
// stopping after home or the filesystem root, then falls back to
// [HomeRunfileName] in home. An empty file still counts as found.
//
// The returned path is empty and the error is [ErrNoRunfile] when nothing is
// found.
func FindRunfile(fs afero.Fs, dir, home string) (string, error) {
	if dir != "" {
		dir = filepath.Clean(dir)

		for {
			path := filepath.Join(dir, RunfileName)
			if isFile(fs, path) {
				return path, nil
			}

			if (home != "" && dir == filepath.Clean(home)) || isRoot(dir) {
				break
			}

			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}

			dir = parent
		}
	}

	if home != "" {
		path := filepath.Join(home, HomeRunfileName)
		if isFile(fs, path) {
			return path, nil
		}
	}

	return "", ErrNoRunfile
}

// LoadRunfile reads the Runfile at path. When path is empty, the Runfile is
// located with [FindRunfile] starting from dir.
func LoadRunfile(fs afero.Fs, path, dir, home string) (Runfile, error) {
	if path == "" {
		var err error

		path, err = FindRunfile(fs, dir, home)
		if err != nil {
			return Runfile{}, err
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Runfile{}, err
	}

	return Runfile{Path: path, Content: string(data)}, nil
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)

	return err == nil && !info.IsDir()
}

func isRoot(dir string) bool {
	return dir == string(filepath.Separator) ||
		dir == filepath.VolumeName(dir)+string(filepath.Separator)
}
