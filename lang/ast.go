package lang

import (
	"iter"
	"strconv"
)

// Position is a 1-based line and column in source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Program is the ordered list of statements parsed from a source.
// A Program is not modified after parsing and may be shared.
type Program struct {
	Statements []Statement
}

// All returns an iterator over the top-level statements.
func (p *Program) All() iter.Seq[Statement] {
	return func(yield func(Statement) bool) {
		if p == nil {
			return
		}

		for _, s := range p.Statements {
			if !yield(s) {
				return
			}
		}
	}
}

// Statement is implemented by [Assignment], [FunctionDef],
// [SimpleFunctionDef], [FunctionCall], and [Command].
type Statement interface {
	Pos() Position
	statement()
}

// Assignment stores a value in the variable table: name=value.
type Assignment struct {
	Name     string
	Value    Expression
	Position Position
}

// FunctionDef is a block definition whose body runs statement by statement.
type FunctionDef struct {
	Name     string
	Body     []Statement
	Position Position
}

// SimpleFunctionDef is a single-line definition whose template is expanded
// with call arguments and run as one command.
type SimpleFunctionDef struct {
	Name     string
	Template string
	Position Position
}

// FunctionCall invokes a definition with parenthesized arguments. Quoted
// arguments arrive with their quotes removed.
type FunctionCall struct {
	Name     string
	Args     []string
	Position Position
}

// Command is a shell command line, reconstructed from its tokens.
type Command struct {
	Command  string
	Position Position
}

func (s *Assignment) Pos() Position        { return s.Position }
func (s *FunctionDef) Pos() Position       { return s.Position }
func (s *SimpleFunctionDef) Pos() Position { return s.Position }
func (s *FunctionCall) Pos() Position      { return s.Position }
func (s *Command) Pos() Position           { return s.Position }

func (*Assignment) statement()        {}
func (*FunctionDef) statement()       {}
func (*SimpleFunctionDef) statement() {}
func (*FunctionCall) statement()      {}
func (*Command) statement()           {}

// Expression is the right-hand side of an [Assignment].
// The parser only produces [StringLiteral].
type Expression interface {
	String() string
	expression()
}

// StringLiteral evaluates to itself.
type StringLiteral string

// NumberLiteral evaluates to its decimal representation.
type NumberLiteral int64

// Identifier evaluates to the value of the named variable.
type Identifier string

func (s StringLiteral) String() string { return string(s) }
func (n NumberLiteral) String() string { return strconv.FormatInt(int64(n), 10) }
func (i Identifier) String() string    { return "$" + string(i) }

func (StringLiteral) expression() {}
func (NumberLiteral) expression() {}
func (Identifier) expression()    {}
