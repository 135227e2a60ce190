package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultIndent is the number of spaces per block level used by
// [Program.Format] when indent is not positive.
const DefaultIndent = 2

// Format writes the program in Runfile syntax. Block bodies are indented by
// indent spaces per level, and top-level block definitions are set apart by
// blank lines. Formatting a parsed program and parsing the result again
// yields an equivalent program.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	var prev Statement

	for stmt := range p.All() {
		if prev != nil && (isBlock(prev) || isBlock(stmt)) {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if err := formatStatement(w, stmt, indent, 0); err != nil {
			return err
		}

		prev = stmt
	}

	return nil
}

// FormatJSON writes the program as a JSON array of statements.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p.nodes(), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p.nodes())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the program as a YAML sequence of statements.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.nodes(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// MarshalJSON implements json.Marshaler.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.nodes())
}

func isBlock(s Statement) bool {
	_, ok := s.(*FunctionDef)

	return ok
}

func formatStatement(w io.Writer, stmt Statement, indent, depth int) error {
	pad := strings.Repeat(" ", indent*depth)

	var err error

	switch s := stmt.(type) {
	case *Assignment:
		_, err = fmt.Fprintf(w, "%s%s=%s\n", pad, s.Name, quoteValue(s.Value.String()))

	case *SimpleFunctionDef:
		_, err = fmt.Fprintf(w, "%s%s() %s\n", pad, s.Name, s.Template)

	case *FunctionDef:
		if _, err = fmt.Fprintf(w, "%s%s() {\n", pad, s.Name); err != nil {
			return err
		}

		for _, inner := range s.Body {
			if err = formatStatement(w, inner, indent, depth+1); err != nil {
				return err
			}
		}

		_, err = fmt.Fprintf(w, "%s}\n", pad)

	case *FunctionCall:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = quoteArg(a)
		}

		_, err = fmt.Fprintf(w, "%s%s(%s)\n", pad, s.Name, strings.Join(args, ", "))

	case *Command:
		_, err = fmt.Fprintf(w, "%s%s\n", pad, s.Command)
	}

	return err
}

// quoteValue quotes an assignment value when the parser would otherwise
// change it: surrounding whitespace is trimmed and a single quoted string is
// unquoted.
func quoteValue(v string) string {
	if _, quoted := unquote(v); !quoted && v == strings.TrimSpace(v) {
		return v
	}

	return quote(v)
}

// quoteArg quotes a call argument when it would not survive as a bare one.
func quoteArg(a string) string {
	if a != "" && a == strings.TrimSpace(a) && !strings.ContainsAny(a, `,()"'`) {
		return a
	}

	return quote(a)
}

// quote prefers single quotes, whose content is never interpreted, and falls
// back to double quotes when s contains a single quote.
func quote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	return `"` + s + `"`
}

// node is the serialized form of a statement.
type node struct {
	Kind     string   `json:"kind"               yaml:"kind"`
	Name     string   `json:"name,omitempty"     yaml:"name,omitempty"`
	Value    string   `json:"value,omitempty"    yaml:"value,omitempty"`
	Template string   `json:"template,omitempty" yaml:"template,omitempty"`
	Command  string   `json:"command,omitempty"  yaml:"command,omitempty"`
	Args     []string `json:"args,omitempty"     yaml:"args,omitempty"`
	Body     []node   `json:"body,omitempty"     yaml:"body,omitempty"`
	Line     int      `json:"line,omitempty"     yaml:"line,omitempty"`
}

func (p *Program) nodes() []node {
	if p == nil {
		return []node{}
	}

	return toNodes(p.Statements)
}

func toNodes(stmts []Statement) []node {
	out := make([]node, 0, len(stmts))

	for _, stmt := range stmts {
		n := node{Kind: statementType(stmt), Line: stmt.Pos().Line}

		switch s := stmt.(type) {
		case *Assignment:
			n.Name, n.Value = s.Name, s.Value.String()
		case *SimpleFunctionDef:
			n.Name, n.Template = s.Name, s.Template
		case *FunctionDef:
			n.Name, n.Body = s.Name, toNodes(s.Body)
		case *FunctionCall:
			n.Name, n.Args = s.Name, s.Args
		case *Command:
			n.Command = s.Command
		}

		out = append(out, n)
	}

	return out
}
