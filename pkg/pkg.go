//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the run module embedded at build time.
// It is printed by --version and in the REPL banner.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command identifier. It appears in help text,
	// completion scripts, and default config paths.
	Name = "run"
	// Description is a short, human-readable summary of the project used in
	// help output.
	Description = "A simple scripting language for CLI automation"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
