package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestError_Is(t *testing.T) {
	cause := errors.New("exit status 127")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"sentinel", ErrExecute, ErrExecute, true},
		{"wrapped", ErrExecute.Wrap(cause), ErrExecute, true},
		{"with attrs", ErrExecute.With(slog.String("command", "ls")), ErrExecute, true},
		{"described", ErrMaxDepthExceeded.Describe("depth %d", 3), ErrMaxDepthExceeded, true},
		{"chained", ErrExecute.Wrap(cause).With(slog.Int("n", 1)), ErrExecute, true},
		{"cause reachable", ErrExecute.Wrap(cause), cause, true},
		{"different sentinel", ErrExecute.Wrap(cause), ErrParse, false},
		{"fmt wrapped", fmt.Errorf("load: %w", ErrReadInput.Wrap(cause)), ErrReadInput, true},
		{"not found", &NotFoundError{Name: "x"}, ErrFunctionNotFound, true},
		{"not found other", &NotFoundError{Name: "x"}, ErrExecute, false},
		{"parse error", &ParseError{Line: 1}, ErrParse, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		err  error
		want string
	}{
		{ErrExecute, "command execution failed"},
		{ErrExecute.Wrap(cause), "command execution failed: permission denied"},
		{ErrExecute.With(slog.String("k", "v")), "command execution failed"},
		{ErrMaxDepthExceeded.Describe("call depth %d exceeded", 100), "call depth 100 exceeded"},
		{ErrReadInput.Describe("cannot read %s", "Runfile").Wrap(cause), "cannot read Runfile: permission denied"},
		{&NotFoundError{Name: "deploy"}, "Function 'deploy' not found"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_WithDoesNotMutate(t *testing.T) {
	base := ErrExecute.With(slog.String("a", "1"))
	_ = base.With(slog.String("b", "2"))

	if got := len(base.attrs); got != 1 {
		t.Errorf("base has %d attrs, want 1", got)
	}

	if len(ErrExecute.attrs) != 0 {
		t.Error("sentinel was modified")
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrExecute.Wrap(errors.New("boom")).With(slog.String("command", "ls"))

	v := err.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("kind = %v, want group", v.Kind())
	}

	got := map[string]string{}
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"message": "command execution failed",
		"cause":   "boom",
		"command": "ls",
	}

	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}
}

func TestSuggestions(t *testing.T) {
	err := fmt.Errorf("call: %w", &NotFoundError{Name: "bild", Suggestions: []string{"build"}})

	if got := Suggestions(err); len(got) != 1 || got[0] != "build" {
		t.Errorf("Suggestions = %q, want [build]", got)
	}

	if got := Suggestions(ErrExecute); got != nil {
		t.Errorf("Suggestions = %q, want nil", got)
	}
}

func TestParseError_Snippet(t *testing.T) {
	tests := []struct {
		name string
		err  ParseError
		want string
	}{
		{
			name: "first column",
			err:  ParseError{Line: 7, Column: 1, Text: "}"},
			want: "  7 | }\n      ^\n",
		},
		{
			name: "wide line number",
			err:  ParseError{Line: 120, Column: 3, Text: "  echo 'x"},
			want: "  120 | " + "  echo 'x\n" + "          ^\n",
		},
		{
			name: "no line",
			err:  ParseError{Message: "empty"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Snippet(); got != tt.want {
				t.Errorf("Snippet() = %q, want %q", got, tt.want)
			}
		})
	}
}
