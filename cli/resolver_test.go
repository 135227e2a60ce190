package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve(t *testing.T) {
	const src = `# run settings
log_level=debug
shell="bash"
path=/opt/bin,/usr/local/bin
ignored() echo never
echo never
`

	resolver, err := resolve(context.Background())(strings.NewReader(src))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"shell", "bash"},
		{"path", "/opt/bin,/usr/local/bin"},
		{"ignored", nil},
		{"output", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := &kong.Flag{Value: &kong.Value{Name: tt.flag}}

			got, err := resolver.Resolve(nil, nil, flag)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.flag, err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolve_ParseError(t *testing.T) {
	resolver, err := resolve(context.Background())(strings.NewReader("}\n"))
	if err != nil {
		t.Fatalf("resolve should ignore parse errors, got %v", err)
	}

	got, err := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "shell"}})
	if err != nil || got != nil {
		t.Errorf("Resolve() = (%v, %v), want (nil, nil)", got, err)
	}

	if err := resolver.Validate(nil); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestResolve_Flags(t *testing.T) {
	var cli struct {
		Shell string
		Path  []string
		Quiet bool
	}

	parser, err := kong.New(&cli,
		kong.Resolvers(mustResolve(t, "shell=zsh\npath=a,b\nquiet=true\n")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--shell=fish"}); err != nil {
		t.Fatal(err)
	}

	if cli.Shell != "fish" {
		t.Errorf("Shell = %q, want command line to win", cli.Shell)
	}

	if strings.Join(cli.Path, ":") != "a:b" {
		t.Errorf("Path = %v, want [a b]", cli.Path)
	}

	if !cli.Quiet {
		t.Error("Quiet = false, want true from config")
	}
}

func mustResolve(t *testing.T, src string) kong.Resolver {
	t.Helper()

	r, err := resolve(context.Background())(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	return r
}
