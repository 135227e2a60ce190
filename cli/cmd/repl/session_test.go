package repl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/log"
)

const testRunfile = `# project tasks
name=World
greet() echo "Hello, $1"
build() go build ./...
docker:shell() docker exec -it $1 sh
ci() {
  build()
  echo done
}
`

// recorder is an executor that records commands instead of running them.
type recorder struct {
	commands []string
	status   lang.ExitStatus
}

func (r *recorder) Execute(_ context.Context, command string) (lang.ExitStatus, error) {
	r.commands = append(r.commands, command)

	return r.status, nil
}

var testPath = filepath.FromSlash("/work/Runfile")

func newTestSession(t *testing.T, src string) (*Session, *recorder, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(src), 0o644))

	rec := &recorder{}

	return NewSession(lang.NewInterpreter(rec), fs, testPath, log.Logger{}), rec, fs
}

func TestSession_Load(t *testing.T) {
	s, rec, _ := newTestSession(t, testRunfile)

	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"build", "ci", "docker:shell", "greet"}, s.Functions())
	assert.Equal(t, []string{"name"}, s.Variables())
	assert.Empty(t, rec.commands)
	assert.Equal(t, testPath, s.Runfile())
}

func TestSession_LoadRunsCommands(t *testing.T) {
	s, rec, _ := newTestSession(t, "echo loading\na() echo a\n")

	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"echo loading"}, rec.commands)
}

func TestSession_LoadParseError(t *testing.T) {
	s, _, _ := newTestSession(t, "a() echo \"oops\n")

	err := s.Load(context.Background())
	require.ErrorIs(t, err, lang.ErrParse)
	assert.Empty(t, s.Functions())
}

func TestSession_LoadWithoutRunfile(t *testing.T) {
	s := NewSession(lang.NewInterpreter(&recorder{}), afero.NewMemMapFs(), "", log.Logger{})

	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Functions())

	_, changed, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSession_LoadMissingRunfile(t *testing.T) {
	s := NewSession(lang.NewInterpreter(&recorder{}), afero.NewMemMapFs(), testPath, log.Logger{})

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, lang.ErrReadInput)
}

func TestSession_Reload(t *testing.T) {
	ctx := context.Background()
	s, rec, fs := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(ctx))

	_, changed, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "unchanged content must not reload")

	updated := testRunfile + "test() go test ./...\necho side effect\n"
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(updated), 0o644))

	n, changed, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 6, n)
	assert.Contains(t, s.Functions(), "test")
	assert.Empty(t, rec.commands, "reload must not run commands")
}

func TestSession_ReloadParseErrorKeepsDefinitions(t *testing.T) {
	ctx := context.Background()
	s, _, fs := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(ctx))

	require.NoError(t, afero.WriteFile(fs, testPath, []byte("}\n"), 0o644))

	_, changed, err := s.Reload(ctx)
	require.ErrorIs(t, err, lang.ErrParse)
	assert.False(t, changed)
	assert.Contains(t, s.Functions(), "greet")
}

func TestSession_Eval(t *testing.T) {
	ctx := context.Background()
	s, rec, _ := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Eval(ctx, "greet(Go)"))
	require.NoError(t, s.Eval(ctx, "who=you"))
	require.NoError(t, s.Eval(ctx, "echo $who"))
	require.NoError(t, s.Eval(ctx, "ci()"))

	assert.Equal(t, []string{
		`echo "Hello, Go"`,
		"echo you",
		"go build ./...",
		"echo done",
	}, rec.commands)

	v, ok := s.Value("who")
	assert.True(t, ok)
	assert.Equal(t, "you", v)
}

func TestSession_EvalErrors(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(ctx))

	assert.ErrorIs(t, s.Eval(ctx, `echo "open`), lang.ErrParse)
	assert.ErrorIs(t, s.Eval(ctx, "gret(x)"), lang.ErrFunctionNotFound)
}

func TestSession_Call(t *testing.T) {
	ctx := context.Background()
	s, rec, _ := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Call(ctx, `docker shell "my app"`))
	require.NoError(t, s.Call(ctx, "docker_shell web"))
	require.NoError(t, s.Call(ctx, "   "))

	assert.Equal(t, []string{
		"docker exec -it my app sh",
		"docker exec -it web sh",
	}, rec.commands)

	err := s.Call(ctx, "dokcer")
	require.ErrorIs(t, err, lang.ErrFunctionNotFound)
}

func TestSession_Status(t *testing.T) {
	ctx := context.Background()
	s, rec, _ := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(ctx))

	rec.status = 3
	require.NoError(t, s.Eval(ctx, "build()"))

	assert.Equal(t, lang.ExitStatus(3), s.Status())
	assert.True(t, s.Status().Success(), "status is cleared once read")
}

func TestSession_TemplateAndPreview(t *testing.T) {
	s, _, _ := newTestSession(t, testRunfile)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, `echo "Hello, $1"`, s.Template("greet"))
	assert.Empty(t, s.Template("ci"))
	assert.Empty(t, s.Template("missing"))

	assert.Equal(t, "{ 2 statements }", s.Preview("ci"))
	assert.Equal(t, "go build ./...", s.Preview("build"))
	assert.Empty(t, s.Preview("missing"))

	require.NoError(t, s.Eval(context.Background(),
		"long() echo 0123456789012345678901234567890123456789"))
	assert.Equal(t, "echo 01234567890123456789012345678901...", s.Preview("long"))
}

func TestSession_Dump(t *testing.T) {
	s, _, _ := newTestSession(t, "b() echo b\nx=1\na() echo a\n")
	require.NoError(t, s.Load(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, s.Dump(context.Background(), &buf))

	assert.Equal(t, "x=1\na() echo a\nb() echo b\n", buf.String())
}

func TestDescribe(t *testing.T) {
	err := &lang.NotFoundError{Name: "bild", Suggestions: []string{"build"}}

	assert.Equal(t,
		"Error: Function 'bild' not found\nDid you mean: build?",
		describe(err))
	assert.Equal(t, "Error: boom", describe(errors.New("boom")))
}
