package repl

import (
	"context"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{
			name:   "no function call",
			input:  "build",
			cursor: 5,
		},
		{
			name:       "first arg",
			input:      "greet(",
			cursor:     6,
			wantName:   "greet",
			wantInCall: true,
		},
		{
			name:       "second arg",
			input:      "add(1, 2",
			cursor:     8,
			wantName:   "add",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "colon name",
			input:      "docker:shell(web",
			cursor:     16,
			wantName:   "docker:shell",
			wantInCall: true,
		},
		{
			name:       "comma inside quotes",
			input:      `greet("a, b", c`,
			cursor:     15,
			wantName:   "greet",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "single quoted paren",
			input:      `greet('(', x`,
			cursor:     12,
			wantName:   "greet",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "nested call",
			input:      "outer(a, inner(b, c",
			cursor:     19,
			wantName:   "inner",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "after nested call closes",
			input:      "outer(a, inner(b), c",
			cursor:     20,
			wantName:   "outer",
			wantIndex:  2,
			wantInCall: true,
		},
		{
			name:   "closed call",
			input:  "greet(x)",
			cursor: 8,
		},
		{
			name:   "cursor before paren",
			input:  "greet(x)",
			cursor: 3,
		},
		{
			name:   "bare paren",
			input:  "(x",
			cursor: 2,
		},
		{
			name:       "command substitution",
			input:      "echo $(date",
			cursor:     11,
			wantInCall: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName || got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%q %d %v}",
					tt.input, tt.cursor, got,
					tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestDetectCommandCall(t *testing.T) {
	s, _, _ := newTestSession(t, testRunfile)
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		input      string
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"not a call", "list", "", 0, false},
		{"name only", "call greet", "greet", 0, true},
		{"first arg started", "call greet ", "greet", 0, true},
		{"first arg typed", "call greet wo", "greet", 0, true},
		{"second arg started", "call greet world ", "greet", 1, true},
		{"undefined", "call nope x", "", 0, false},
		{"unterminated quote", `call greet "wo`, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectCommandCall(s, tt.input)
			if got.name != tt.wantName || got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectCommandCall(%q) = %+v, want {%q %d %v}",
					tt.input, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestSignatureHint(t *testing.T) {
	s, _, _ := newTestSession(t, testRunfile)
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		call         functionCall
		wantContains []string
	}{
		{
			name: "not in call",
			call: functionCall{name: "greet"},
		},
		{
			name:         "template",
			call:         functionCall{name: "greet", inCall: true},
			wantContains: []string{"greet()", "$1"},
		},
		{
			name:         "block",
			call:         functionCall{name: "ci", inCall: true},
			wantContains: []string{"ci()", "{ 2 statements }"},
		},
		{
			name: "undefined",
			call: functionCall{name: "nope", inCall: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := signatureHint(s, tt.call)

			if len(tt.wantContains) == 0 && got != "" {
				t.Errorf("signatureHint(%+v) = %q, want empty", tt.call, got)
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("signatureHint(%+v) = %q, want it to contain %q",
						tt.call, got, want)
				}
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		currentArg int
		want       []string
	}{
		{"no params", "go build ./...", 0, []string{"build()", "go build ./..."}},
		{"first param", `echo "Hello, $1"`, 0, []string{"build()", "$1"}},
		{"second param", "cp $1 $2", 1, []string{"build()", "$2", "cp "}},
		{"all params", "echo $@", 3, []string{"build()", "$@"}},
		{"multi digit", "echo $1 $12", 0, []string{"$12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint("build", tt.template, tt.currentArg)

			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("renderSignatureHint(%q, %d) = %q, want it to contain %q",
						tt.template, tt.currentArg, got, want)
				}
			}
		})
	}
}
