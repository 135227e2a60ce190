package lang

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/run/log"
)

// ExitStatus is the exit code of an executed command.
type ExitStatus int

// Success reports whether the command exited with status zero.
func (s ExitStatus) Success() bool { return s == 0 }

// Executor runs a fully substituted command line.
//
// A non-zero exit is reported through the status, not the error. The error
// is reserved for failures to run the command at all.
type Executor interface {
	Execute(ctx context.Context, command string) (ExitStatus, error)
}

// ExecutorFunc adapts a function to [Executor].
type ExecutorFunc func(ctx context.Context, command string) (ExitStatus, error)

// Execute calls f(ctx, command).
func (f ExecutorFunc) Execute(ctx context.Context, command string) (ExitStatus, error) {
	return f(ctx, command)
}

var errNoExecutor = errors.New("no executor configured")

// Interpreter evaluates programs against persistent variable and function
// tables. Definitions from one [Interpreter.Execute] call remain visible to
// later calls on the same Interpreter.
//
// An Interpreter is not safe for concurrent use.
type Interpreter struct {
	tables

	exec     Executor
	logger   log.Logger
	maxDepth int
	chain    []string
	status   ExitStatus
}

// NewInterpreter returns an Interpreter that runs commands with exec.
func NewInterpreter(exec Executor, opts ...Option) *Interpreter {
	cfg := makeConfig(opts...)

	return &Interpreter{
		tables:   newTables(),
		exec:     exec,
		logger:   cfg.logger,
		maxDepth: cfg.maxDepth,
	}
}

// Execute runs each statement of prog in order and stops at the first error.
// Effects of statements before the failing one are kept.
func (in *Interpreter) Execute(ctx context.Context, prog *Program) error {
	for stmt := range prog.All() {
		if err := in.execute(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// Define records the assignments and definitions of prog without running
// any call or command. It returns the number of statements applied.
func (in *Interpreter) Define(prog *Program) int {
	n := 0

	for stmt := range prog.All() {
		switch stmt.(type) {
		case *Assignment, *SimpleFunctionDef, *FunctionDef:
			in.define(stmt)
			n++
		}
	}

	return n
}

// ResolveAndCall invokes name the way a command line does: the direct name,
// then name:args[0] with the remaining args, then name with underscores
// replaced by colons, then a block definition.
func (in *Interpreter) ResolveAndCall(
	ctx context.Context,
	name string,
	args []string,
) error {
	r, err := in.tables.resolve(commandLineStrategies, name, args)
	if err != nil {
		return err
	}

	return in.invoke(ctx, r)
}

// Call invokes name the way a parenthesized call does: the direct name, then
// name with spaces replaced by colons, then the first two words of name
// joined by a colon, then a block definition.
func (in *Interpreter) Call(ctx context.Context, name string, args []string) error {
	r, err := in.tables.resolve(callStrategies, name, args)
	if err != nil {
		return err
	}

	return in.invoke(ctx, r)
}

// Resolve reports how a call would be resolved without running it.
// Parenthesized call rules apply when parens is true.
func (in *Interpreter) Resolve(
	name string,
	args []string,
	parens bool,
) (Resolution, error) {
	if parens {
		return in.tables.resolve(callStrategies, name, args)
	}

	return in.tables.resolve(commandLineStrategies, name, args)
}

// Expand returns the command line a single-line resolution would run.
func (in *Interpreter) Expand(r Resolution) string {
	if r.Block {
		return ""
	}

	return Substitute(r.Template, r.Args, in.variables)
}

// Status returns the first non-zero exit status observed since the last
// [Interpreter.ResetStatus].
func (in *Interpreter) Status() ExitStatus { return in.status }

// ResetStatus clears the recorded exit status.
func (in *Interpreter) ResetStatus() { in.status = 0 }

// Functions returns the names of all defined functions, sorted.
func (in *Interpreter) Functions() []string { return in.names() }

// Variables returns a copy of the variable table.
func (in *Interpreter) Variables() map[string]string {
	return maps.Clone(in.variables)
}

// Snapshot returns the current definitions as a program: assignments first,
// then function definitions, each sorted by name.
func (in *Interpreter) Snapshot() *Program {
	prog := &Program{}

	for _, name := range sortedKeys(in.variables) {
		prog.Statements = append(prog.Statements, &Assignment{
			Name:  name,
			Value: StringLiteral(in.variables[name]),
		})
	}

	defs := make([]Statement, 0, len(in.templates)+len(in.functions))

	for name, tmpl := range in.templates {
		defs = append(defs, &SimpleFunctionDef{Name: name, Template: tmpl})
	}

	for name, body := range in.functions {
		defs = append(defs, &FunctionDef{Name: name, Body: body})
	}

	slices.SortStableFunc(defs, func(a, b Statement) int {
		return strings.Compare(definedName(a), definedName(b))
	})

	prog.Statements = append(prog.Statements, defs...)

	return prog
}

func definedName(s Statement) string {
	switch d := s.(type) {
	case *SimpleFunctionDef:
		return d.Name
	case *FunctionDef:
		return d.Name
	default:
		return ""
	}
}

func (in *Interpreter) define(stmt Statement) {
	switch s := stmt.(type) {
	case *Assignment:
		in.variables[s.Name] = in.evaluate(s.Value)
	case *SimpleFunctionDef:
		in.templates[s.Name] = s.Template
	case *FunctionDef:
		in.functions[s.Name] = s.Body
	}
}

func (in *Interpreter) execute(ctx context.Context, stmt Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in.logger.TraceContext(ctx, "statement",
		slog.String("pos", stmt.Pos().String()),
		slog.String("type", statementType(stmt)))

	switch s := stmt.(type) {
	case *Assignment, *SimpleFunctionDef, *FunctionDef:
		in.define(s)

		return nil

	case *FunctionCall:
		return in.Call(ctx, s.Name, s.Args)

	case *Command:
		return in.run(ctx, Substitute(s.Command, nil, in.variables))

	default:
		return nil
	}
}

func (in *Interpreter) invoke(ctx context.Context, r Resolution) error {
	in.logger.DebugContext(ctx, "resolved",
		slog.String("name", r.Name),
		slog.String("strategy", r.Strategy),
		slog.Int("args", len(r.Args)))

	if !r.Block {
		return in.run(ctx, Substitute(r.Template, r.Args, in.variables))
	}

	if len(in.chain) >= in.maxDepth {
		return ErrMaxDepthExceeded.With(
			slog.Int("max_depth", in.maxDepth),
			slog.String("chain", strings.Join(in.chain, " -> ")+" -> "+r.Name),
		)
	}

	in.chain = append(in.chain, r.Name)
	defer func() { in.chain = in.chain[:len(in.chain)-1] }()

	for _, stmt := range r.Body {
		if err := in.execute(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (in *Interpreter) run(ctx context.Context, command string) error {
	if in.exec == nil {
		return ErrExecute.Wrap(errNoExecutor)
	}

	in.logger.DebugContext(ctx, "run", slog.String("command", command))

	status, err := in.exec.Execute(ctx, command)
	if err != nil {
		return ErrExecute.Wrap(err).With(slog.String("command", command))
	}

	if !status.Success() {
		in.logger.WarnContext(ctx, "command failed",
			slog.Int("status", int(status)),
			slog.String("command", command))

		if in.status == 0 {
			in.status = status
		}
	}

	return nil
}

func (in *Interpreter) evaluate(e Expression) string {
	switch v := e.(type) {
	case StringLiteral:
		return string(v)
	case NumberLiteral:
		return v.String()
	case Identifier:
		return in.variables[string(v)]
	default:
		return ""
	}
}

func statementType(s Statement) string {
	switch s.(type) {
	case *Assignment:
		return "assignment"
	case *FunctionDef:
		return "function"
	case *SimpleFunctionDef:
		return "template"
	case *FunctionCall:
		return "call"
	case *Command:
		return "command"
	default:
		return "unknown"
	}
}
