package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/run/log"
)

// ParseReader parses a program from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Parse parses a program from source text.
//
// Parsing stops at the first error, which is always a [*ParseError].
// Programs parsed from identical source are shared unless caching is
// disabled with [WithCache].
func Parse(ctx context.Context, src string, opts ...Option) (*Program, error) {
	cfg := makeConfig(opts...)

	if cfg.cache {
		if prog, ok := cachedProgram(src); ok {
			cfg.logger.TraceContext(ctx, "parse cache hit",
				slog.Int("statements", len(prog.Statements)))

			return prog, nil
		}
	}

	p := &parser{
		lines:  splitLogical(src),
		source: strings.Split(src, "\n"),
		file:   cfg.filename,
		logger: cfg.logger,
	}

	stmts, err := p.parseStatements(nil)
	if err != nil {
		cfg.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	prog := &Program{Statements: stmts}

	if cfg.cache {
		storeProgram(src, prog)
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("lines", len(p.lines)),
		slog.Int("statements", len(stmts)))

	return prog, nil
}

// parser holds the parser state. It consumes one logical line per statement,
// except for block definitions which consume through their closing brace.
type parser struct {
	lines  []logicalLine
	source []string
	file   string
	pos    int
	logger log.Logger
}

func (p *parser) eof() bool { return p.pos >= len(p.lines) }

func (p *parser) next() logicalLine {
	ln := p.lines[p.pos]
	p.pos++

	return ln
}

// parseStatements parses statements until EOF, or until the closing brace of
// the block opened on line open.
func (p *parser) parseStatements(open *logicalLine) ([]Statement, error) {
	var stmts []Statement

	for !p.eof() {
		ln := p.next()

		text := strings.TrimLeft(ln.text, " \t")
		indent := len(ln.text) - len(text)

		switch {
		case text == "", text[0] == '#':
			continue

		case text == "}":
			if open != nil {
				return stmts, nil
			}

			return nil, p.errorAt(ln, indent, "unexpected '}' outside a function body")
		}

		stmt, err := p.parseStatement(ln, text, indent)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	if open != nil {
		return nil, p.errorAt(*open, len(open.text)-1,
			"unterminated function body, expected '}'")
	}

	return stmts, nil
}

// parseStatement classifies one logical line. Precedence is fixed:
// assignment, function definition, parenthesized call, then command.
func (p *parser) parseStatement(
	ln logicalLine,
	text string,
	indent int,
) (Statement, error) {
	pos := Position{Line: ln.line, Column: column(ln.text, indent)}

	if name, value, ok := cutAssignment(text); ok {
		if v, quoted := unquote(value); quoted {
			value = v
		}

		return &Assignment{Name: name, Value: StringLiteral(value), Position: pos}, nil
	}

	if strings.HasPrefix(text, "()") {
		return nil, p.errorAt(ln, indent, "missing function name")
	}

	if name, rest, ok := cutName(text); ok && strings.HasPrefix(rest, "(") {
		stmt, ok, err := p.parseFunction(ln, indent+len(name), name, rest, pos)
		if err != nil || ok {
			return stmt, err
		}
	}

	cmd, err := p.parseCommand(ln, text, indent)
	if err != nil {
		return nil, err
	}

	return &Command{Command: cmd, Position: pos}, nil
}

// parseFunction parses the text following a name that begins with '('.
// It reports false when the line is not a definition or a well-formed call,
// so that it can be parsed as a command instead.
func (p *parser) parseFunction(
	ln logicalLine,
	offset int,
	name, rest string,
	pos Position,
) (Statement, bool, error) {
	if after, ok := strings.CutPrefix(rest, "()"); ok {
		switch {
		case after == "":
			return &FunctionCall{Name: name, Position: pos}, true, nil

		case !isBlank(after[0]):
			return nil, false, nil
		}

		body := strings.TrimLeft(after, " \t")
		if body == "{" {
			stmts, err := p.parseStatements(&ln)
			if err != nil {
				return nil, false, err
			}

			return &FunctionDef{Name: name, Body: stmts, Position: pos}, true, nil
		}

		bodyOffset := offset + 2 + len(after) - len(body)

		template, err := p.parseCommand(ln, body, bodyOffset)
		if err != nil {
			return nil, false, err
		}

		return &SimpleFunctionDef{Name: name, Template: template, Position: pos}, true, nil
	}

	args, ok := parseArgs(rest)
	if !ok {
		return nil, false, nil
	}

	return &FunctionCall{Name: name, Args: args, Position: pos}, true, nil
}

// parseCommand tokenizes text found at byte offset within ln and returns its
// normalized rendering.
func (p *parser) parseCommand(
	ln logicalLine,
	text string,
	offset int,
) (string, error) {
	toks, err := tokenize(text)
	if err != nil {
		if le, ok := err.(*lexError); ok {
			return "", p.errorAt(ln, offset+le.offset, le.msg)
		}

		return "", err
	}

	return render(toks), nil
}

// errorAt builds a ParseError at byte offset within the logical line.
func (p *parser) errorAt(ln logicalLine, offset int, msg string) *ParseError {
	e := &ParseError{
		File:    p.file,
		Line:    ln.line,
		Column:  column(ln.text, offset),
		Message: msg,
	}

	if ln.line > 0 && ln.line <= len(p.source) {
		e.Text = strings.TrimRight(p.source[ln.line-1], "\r")
	}

	return e
}

// cutAssignment splits "ident=value". The identifier must be followed
// immediately by '='.
func cutAssignment(text string) (name, value string, ok bool) {
	if text == "" || !isIdentifierStart(text[0]) {
		return "", "", false
	}

	i := 1
	for i < len(text) && isIdentifierContinue(text[i]) {
		i++
	}

	if i >= len(text) || text[i] != '=' {
		return "", "", false
	}

	return text[:i], strings.TrimSpace(text[i+1:]), true
}

// cutName splits a leading function name from the rest of text.
func cutName(text string) (name, rest string, ok bool) {
	if text == "" || !isIdentifierStart(text[0]) {
		return "", text, false
	}

	i := 1
	for i < len(text) && isNameContinue(text[i]) {
		i++
	}

	return text[:i], text[i:], true
}

// parseArgs parses a parenthesized, comma-separated argument list that must
// extend to the end of s. Quoted arguments lose their quotes; bare arguments
// are trimmed and otherwise kept verbatim.
func parseArgs(s string) ([]string, bool) {
	if s == "" || s[0] != '(' {
		return nil, false
	}

	var args []string

	i := skipBlanks(s, 1)
	if i < len(s) && s[i] == ')' {
		return nil, strings.TrimSpace(s[i+1:]) == ""
	}

	for i < len(s) {
		var arg string

		switch s[i] {
		case '"', '\'':
			end, err := skipQuoted(s, i)
			if err != nil {
				return nil, false
			}

			arg, i = s[i+1:end-1], end

		default:
			end, ok := skipBareArg(s, i)
			if !ok {
				return nil, false
			}

			arg, i = strings.TrimRight(s[i:end], " \t"), end
			if arg == "" {
				return nil, false
			}
		}

		args = append(args, arg)

		i = skipBlanks(s, i)
		if i >= len(s) {
			return nil, false
		}

		switch s[i] {
		case ',':
			i = skipBlanks(s, i+1)

		case ')':
			return args, strings.TrimSpace(s[i+1:]) == ""

		default:
			return nil, false
		}
	}

	return nil, false
}

// skipBareArg returns the offset of the ',' or ')' ending the bare argument
// at s[i]. Substitutions inside the argument are skipped whole.
func skipBareArg(s string, i int) (int, bool) {
	for j := i; j < len(s); {
		switch c := s[j]; {
		case c == ',' || c == ')':
			return j, true

		case c == '"' || c == '\'':
			return 0, false

		case c == '$' && j+1 < len(s) && (s[j+1] == '(' || s[j+1] == '{'):
			end, err := skipSubstitution(s, j)
			if err != nil {
				return 0, false
			}

			j = end

		default:
			j++
		}
	}

	return 0, false
}

func skipBlanks(s string, i int) int {
	for i < len(s) && isBlank(s[i]) {
		i++
	}

	return i
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifierContinue(c byte) bool {
	return isIdentifierStart(c) || (c >= '0' && c <= '9')
}

func isNameContinue(c byte) bool {
	return isIdentifierContinue(c) || c == ':' || c == '.' || c == '-'
}
