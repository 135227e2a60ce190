package lang

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder is an Executor that records each command and returns the status
// configured for it.
type recorder struct {
	commands []string
	status   map[string]ExitStatus
	err      error
}

func (r *recorder) Execute(_ context.Context, command string) (ExitStatus, error) {
	r.commands = append(r.commands, command)

	if r.err != nil {
		return 0, r.err
	}

	return r.status[command], nil
}

func load(t *testing.T, in *Interpreter, src string) {
	t.Helper()

	if err := in.Execute(context.Background(), mustParse(t, src)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestInterpreter_Execute(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	load(t, in, `
APP=web
greet() echo "Hello, $1!"
build() docker build -t $APP .
echo start $APP
greet("World")
build()
`)

	want := []string{
		"echo start web",
		`echo "Hello, World!"`,
		"docker build -t web .",
	}

	if diff := cmp.Diff(want, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_ResolveAndCall(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	load(t, in, `
docker:shell() docker compose exec $1 bash
deploy:staging() ./deploy.sh staging $@
add() echo "$1 + $2 = $(($1 + $2))"
`)

	ctx := context.Background()

	calls := []struct {
		name string
		args []string
	}{
		{"docker", []string{"shell", "myapp"}},
		{"docker_shell", []string{"api"}},
		{"deploy", []string{"staging", "--force"}},
		{"add", []string{"5", "3"}},
	}

	for _, c := range calls {
		if err := in.ResolveAndCall(ctx, c.name, c.args); err != nil {
			t.Fatalf("ResolveAndCall(%q, %q): %v", c.name, c.args, err)
		}
	}

	want := []string{
		"docker compose exec myapp bash",
		"docker compose exec api bash",
		"./deploy.sh staging --force",
		`echo "5 + 3 = $((5 + 3))"`,
	}

	if diff := cmp.Diff(want, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_BlockFunction(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	load(t, in, `
lint() golangci-lint run
ci() {
  echo "ci for $APP"
  lint()
  TARGET=linux
}
APP=run
`)

	if err := in.ResolveAndCall(context.Background(), "ci", []string{"ignored"}); err != nil {
		t.Fatal(err)
	}

	want := []string{`echo "ci for run"`, "golangci-lint run"}
	if diff := cmp.Diff(want, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	if got := in.Variables()["TARGET"]; got != "linux" {
		t.Errorf("TARGET = %q, want linux", got)
	}
}

func TestInterpreter_LastWriteWins(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	load(t, in, "hello() echo one\nhello() echo two\n")

	if err := in.ResolveAndCall(context.Background(), "hello", nil); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"echo two"}, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_StatePersists(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	load(t, in, "NAME=first\nshow() echo $NAME\n")
	load(t, in, "NAME=second\n")

	if err := in.ResolveAndCall(context.Background(), "show", nil); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"echo second"}, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_NotFoundStopsExecution(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	prog := mustParse(t, "A=1\necho before\nmissing()\nB=2\necho after\n")

	err := in.Execute(context.Background(), prog)
	if !errors.Is(err, ErrFunctionNotFound) {
		t.Fatalf("error = %v, want ErrFunctionNotFound", err)
	}

	if diff := cmp.Diff([]string{"echo before"}, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	vars := in.Variables()
	if vars["A"] != "1" {
		t.Error("effects before the failure were rolled back")
	}

	if _, ok := vars["B"]; ok {
		t.Error("statements after the failure were executed")
	}
}

func TestInterpreter_ResolveAndCallNotFound(t *testing.T) {
	in := NewInterpreter(&recorder{})

	err := in.ResolveAndCall(context.Background(), "nope", nil)
	if !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("error = %v, want ErrFunctionNotFound", err)
	}
}

func TestInterpreter_NonZeroStatus(t *testing.T) {
	rec := &recorder{status: map[string]ExitStatus{"false": 1, "exit 3": 3}}
	in := NewInterpreter(rec)

	load(t, in, "false\necho next\nexit 3\n")

	if diff := cmp.Diff([]string{"false", "echo next", "exit 3"}, rec.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	if got := in.Status(); got != 1 {
		t.Errorf("Status() = %d, want first non-zero status 1", got)
	}

	in.ResetStatus()

	if got := in.Status(); got != 0 {
		t.Errorf("Status() after reset = %d, want 0", got)
	}
}

func TestInterpreter_ExecutorError(t *testing.T) {
	rec := &recorder{err: errors.New("exec: not found")}
	in := NewInterpreter(rec)

	err := in.Execute(context.Background(), mustParse(t, "ls\n"))
	if !errors.Is(err, ErrExecute) {
		t.Errorf("error = %v, want ErrExecute", err)
	}
}

func TestInterpreter_NoExecutor(t *testing.T) {
	in := NewInterpreter(nil)

	err := in.Execute(context.Background(), mustParse(t, "ls\n"))
	if !errors.Is(err, ErrExecute) {
		t.Errorf("error = %v, want ErrExecute", err)
	}
}

func TestInterpreter_MaxDepth(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec, WithMaxDepth(5))

	load(t, in, "loop() {\n  echo tick\n  loop()\n}\n")

	err := in.ResolveAndCall(context.Background(), "loop", nil)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("error = %v, want ErrMaxDepthExceeded", err)
	}

	if got := len(rec.commands); got != 5 {
		t.Errorf("ran %d commands, want 5", got)
	}

	// the call chain unwinds after the failure
	if len(in.chain) != 0 {
		t.Errorf("chain = %q, want empty", in.chain)
	}
}

func TestInterpreter_Canceled(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := in.Execute(ctx, mustParse(t, "echo a\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}

	if len(rec.commands) != 0 {
		t.Errorf("ran %q after cancel", rec.commands)
	}
}

func TestInterpreter_Define(t *testing.T) {
	rec := &recorder{}
	in := NewInterpreter(rec)

	n := in.Define(mustParse(t, "A=1\nb() echo b\necho skipped\nc() {\n  echo c\n}\nb()\n"))
	if n != 3 {
		t.Errorf("Define applied %d statements, want 3", n)
	}

	if len(rec.commands) != 0 {
		t.Errorf("Define ran commands %q", rec.commands)
	}

	if diff := cmp.Diff([]string{"b", "c"}, in.Functions()); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_ResolveAndExpand(t *testing.T) {
	in := NewInterpreter(nil)
	in.Define(mustParse(t, "REG=ghcr.io\npush:image() docker push $REG/$1\n"))

	r, err := in.Resolve("push", []string{"image", "web"}, false)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := in.Expand(r), "docker push ghcr.io/web"; got != want {
		t.Errorf("Expand = %q, want %q", got, want)
	}

	if _, err := in.Resolve("push", []string{"image"}, true); !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("parenthesized Resolve error = %v, want ErrFunctionNotFound", err)
	}
}

func TestInterpreter_Snapshot(t *testing.T) {
	in := NewInterpreter(nil)
	in.Define(mustParse(t, "Z=last\nA=first\nzz() echo z\nmid() {\n  echo m\n}\naa() echo a\n"))

	want := []Statement{
		&Assignment{Name: "A", Value: StringLiteral("first")},
		&Assignment{Name: "Z", Value: StringLiteral("last")},
		&SimpleFunctionDef{Name: "aa", Template: "echo a"},
		&FunctionDef{Name: "mid", Body: []Statement{&Command{Command: "echo m"}}},
		&SimpleFunctionDef{Name: "zz", Template: "echo z"},
	}

	if diff := cmp.Diff(want, in.Snapshot().Statements, ignorePos); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_VariablesIsCopy(t *testing.T) {
	in := NewInterpreter(nil)
	in.Define(mustParse(t, "A=1\n"))

	in.Variables()["A"] = "changed"

	if got := in.Variables()["A"]; got != "1" {
		t.Errorf("A = %q, want 1", got)
	}
}

func TestInterpreter_Evaluate(t *testing.T) {
	in := NewInterpreter(nil)
	in.variables["X"] = "42"

	tests := []struct {
		expr Expression
		want string
	}{
		{StringLiteral("s"), "s"},
		{NumberLiteral(-7), "-7"},
		{Identifier("X"), "42"},
		{Identifier("UNSET"), ""},
	}

	for _, tt := range tests {
		if got := in.evaluate(tt.expr); got != tt.want {
			t.Errorf("evaluate(%v) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
