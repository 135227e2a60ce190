package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/run/cli/cmd"
	"github.com/ardnew/run/log"
)

const testRunfile = `greet() echo "Hello, $1"
build() go build ./...
docker:shell() docker exec -it $1 sh
`

type result struct {
	stdout, stderr string
	code           int
	exited         bool
	env            *cmd.Env
}

func runCLI(t *testing.T, files map[string]string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(path), []byte(content), 0o644))
	}

	env := &cmd.Env{
		FS:     fs,
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Dir:    filepath.FromSlash("/home/user/project"),
		Home:   filepath.FromSlash("/home/user"),
		Getenv: func(string) string { return "" },
		Logger: log.Logger{},
	}

	var res result

	exit := func(code int) { res.code, res.exited = code, true }

	args = append([]string{"--shell=builtin"}, args...)
	require.NoError(t, run(context.Background(), exit, env, args...))

	res.stdout, res.stderr, res.env = stdout.String(), stderr.String(), env

	return res
}

func TestRun_Call(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/home/user/project/Runfile": testRunfile},
		"greet", "CLI")

	assert.Equal(t, "Hello, CLI\n", res.stdout)
	assert.False(t, res.exited)
}

func TestRun_CallPassesFlagsThrough(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/home/user/project/Runfile": "show() echo $@\n"},
		"show", "-f", "--list", "x")

	assert.Equal(t, "-f --list x\n", res.stdout)
}

func TestRun_DryRun(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/home/user/project/Runfile": testRunfile},
		"-n", "docker", "shell", "web")

	assert.Equal(t, "docker exec -it web sh\n", res.stdout)
	assert.True(t, res.env.DryRun)
}

func TestRun_Which(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/home/user/project/Runfile": testRunfile},
		"--which", "docker_shell", "web")

	assert.Equal(t,
		"docker_shell web -> docker:shell (underscore)\n  docker exec -it web sh\n",
		res.stdout)
}

func TestRun_NotFound(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/home/user/project/Runfile": testRunfile},
		"deploy")

	assert.True(t, res.exited)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: Function 'deploy' not found")
}

func TestRun_List(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/home/user/project/Runfile": testRunfile},
		"--list")

	assert.Equal(t,
		"Available functions:\n  greet\n  build\n  docker:shell\n",
		res.stdout)
}

func TestRun_ListExplicitRunfile(t *testing.T) {
	res := runCLI(t,
		map[string]string{"/tasks/ci.run": "lint() golangci-lint run\n"},
		"-l", "--runfile=/tasks/ci.run")

	assert.Equal(t, "Available functions:\n  lint\n", res.stdout)
}

func TestRun_Script(t *testing.T) {
	res := runCLI(t,
		map[string]string{
			"/home/user/project/Runfile": testRunfile,
			"/scripts/hello.run":         "hi() echo hi $1\nhi(script)\n",
		},
		filepath.FromSlash("/scripts/hello.run"))

	assert.Equal(t, "hi script\n", res.stdout)
}

func TestRun_GenerateCompletion(t *testing.T) {
	res := runCLI(t, nil, "--generate-completion", "zsh")

	script, err := cmd.CompletionScript("zsh")
	require.NoError(t, err)
	assert.Equal(t, string(script), res.stdout)
}

func TestRun_InstallCompletion(t *testing.T) {
	res := runCLI(t, nil, "--install-completion", "bash")

	assert.Contains(t, res.stdout, "Installing bash completion for run...")

	ok, err := afero.Exists(res.env.FS,
		filepath.FromSlash("/home/user/.local/share/bash-completion/completions/run"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_REPL(t *testing.T) {
	res := runCLI(t, map[string]string{"/home/user/project/Runfile": testRunfile})

	assert.True(t, strings.HasPrefix(res.stdout, "Run Shell "), res.stdout)
	assert.True(t, strings.HasSuffix(res.stdout, "Goodbye!\n"), res.stdout)
}

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(log.DefaultOutput())) })

	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		caller bool
	}{
		{"separate values", []string{"--log-level", "debug", "--log-format", "json"}, "debug", "json", false},
		{"assigned values", []string{"--log-level=warn", "--log-caller"}, "warn", "", true},
		{"stops at target", []string{"greet", "--log-level", "error"}, "", "", false},
		{"stops at dashes", []string{"--", "--log-level=error"}, "", "", false},
		{"negated", []string{"--log-caller", "--no-log-caller"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg logConfig

			cfg.scan(tt.args)

			assert.Equal(t, tt.level, cfg.Level)
			assert.Equal(t, tt.format, cfg.Format)
			assert.Equal(t, tt.caller, cfg.Caller)
		})
	}
}

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		assigned bool
		want     bool
	}{
		{"--log-pretty", "", false, true},
		{"--log-pretty", "false", true, false},
		{"--no-log-pretty", "", false, false},
		{"--no-log-pretty", "false", true, true},
		{"--log-pretty", "bogus", true, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, boolFlag(tt.name, tt.value, tt.assigned),
			"%s=%q assigned=%v", tt.name, tt.value, tt.assigned)
	}
}
