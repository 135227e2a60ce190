package lang

import (
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenQuoted
	tokenOperator
)

// token is a lexical unit of a command line. Quoted tokens keep their quote
// characters. joined reports that no whitespace preceded the token.
type token struct {
	text   string
	offset int
	kind   tokenKind
	joined bool
}

// operators lists shell control and redirection operators, longest first.
//
//nolint:gochecknoglobals
var operators = []string{
	"&>>", "<<<",
	"&>", "||", "&&", ";;", ">>", "<<", ">|", "<>", ">&", "<&", "|&",
	"|", "&", ";", "<", ">",
}

// lexError reports a tokenizer failure at a byte offset of the input.
type lexError struct {
	msg    string
	offset int
}

func (e *lexError) Error() string { return e.msg }

func isOperatorByte(c byte) bool {
	return c == '|' || c == '&' || c == ';' || c == '<' || c == '>'
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// tokenize splits a command line into words, quoted strings, and operators.
// Quoted strings and $(...), ${...}, and `...` substitutions are kept intact.
func tokenize(s string) ([]token, error) {
	var (
		toks  []token
		space = true
	)

	for i := 0; i < len(s); {
		if isBlank(s[i]) {
			space = true
			i++

			continue
		}

		tok := token{offset: i, joined: !space}
		space = false

		switch {
		case s[i] == '"' || s[i] == '\'':
			end, err := skipQuoted(s, i)
			if err != nil {
				return nil, err
			}

			tok.kind, tok.text = tokenQuoted, s[i:end]

		case operatorAt(s, i, tok.joined) > 0:
			n := operatorAt(s, i, tok.joined)
			tok.kind, tok.text = tokenOperator, s[i:i+n]

		default:
			end, err := skipWord(s, i)
			if err != nil {
				return nil, err
			}

			tok.kind, tok.text = tokenWord, s[i:end]
		}

		i += len(tok.text)
		toks = append(toks, tok)
	}

	return toks, nil
}

// operatorAt returns the length of the operator starting at s[i], or zero.
// A run of digits directly followed by a redirection is a file-descriptor
// prefix ("2>&1") when it starts a new token.
func operatorAt(s string, i int, joined bool) int {
	j := i
	if !joined {
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}

		if j > i && (j == len(s) || (s[j] != '>' && s[j] != '<')) {
			return 0
		}
	}

	for _, op := range operators {
		if !strings.HasPrefix(s[j:], op) {
			continue
		}

		end := j + len(op)

		// Duplication targets: >&2, <&0, >&-
		if op == ">&" || op == "<&" {
			for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '-') {
				end++
			}
		}

		return end - i
	}

	return 0
}

func skipWord(s string, i int) (int, error) {
	j := i

	for j < len(s) {
		c := s[j]

		switch {
		case isBlank(c) || c == '"' || c == '\'' || isOperatorByte(c):
			return j, nil

		case c == '\\':
			j = min(j+2, len(s))

		case c == '$' && j+1 < len(s) && (s[j+1] == '(' || s[j+1] == '{'):
			end, err := skipSubstitution(s, j)
			if err != nil {
				return 0, err
			}

			j = end

		case c == '`':
			end, err := skipBackquote(s, j)
			if err != nil {
				return 0, err
			}

			j = end

		default:
			j++
		}
	}

	return j, nil
}

// skipQuoted returns the offset just past the quoted string at s[i].
// Double-quoted strings honor backslash escapes and substitutions.
func skipQuoted(s string, i int) (int, error) {
	q := s[i]

	for j := i + 1; j < len(s); {
		c := s[j]

		switch {
		case c == q:
			return j + 1, nil

		case q == '"' && c == '\\':
			j += 2

		case q == '"' && c == '$' && j+1 < len(s) && (s[j+1] == '(' || s[j+1] == '{'):
			end, err := skipSubstitution(s, j)
			if err != nil {
				return 0, err
			}

			j = end

		case q == '"' && c == '`':
			end, err := skipBackquote(s, j)
			if err != nil {
				return 0, err
			}

			j = end

		default:
			j++
		}
	}

	return 0, &lexError{msg: "unterminated quoted string", offset: i}
}

// skipSubstitution returns the offset just past the balanced $(...) or
// ${...} at s[i].
func skipSubstitution(s string, i int) (int, error) {
	open, closing := s[i+1], byte(')')
	if open == '{' {
		closing = '}'
	}

	depth := 0

	for j := i + 1; j < len(s); {
		c := s[j]

		switch c {
		case '\\':
			j += 2

			continue

		case '"', '\'':
			end, err := skipQuoted(s, j)
			if err != nil {
				return 0, err
			}

			j = end

			continue

		case open:
			depth++

		case closing:
			depth--
			if depth == 0 {
				return j + 1, nil
			}
		}

		j++
	}

	return 0, &lexError{msg: "unterminated substitution", offset: i}
}

func skipBackquote(s string, i int) (int, error) {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			return j + 1, nil
		}
	}

	return 0, &lexError{msg: "unterminated command substitution", offset: i}
}

// render joins tokens with single spaces. Adjacent words and quoted strings
// stay adjacent; operators are always set apart.
func render(toks []token) string {
	var sb strings.Builder

	for i, t := range toks {
		if i > 0 {
			adjacent := t.joined &&
				t.kind != tokenOperator &&
				toks[i-1].kind != tokenOperator
			if !adjacent {
				sb.WriteByte(' ')
			}
		}

		sb.WriteString(t.text)
	}

	return sb.String()
}

// unquote removes one pair of matching outer quotes from s when s is exactly
// one quoted string.
func unquote(s string) (string, bool) {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') {
		return s, false
	}

	end, err := skipQuoted(s, 0)
	if err != nil || end != len(s) {
		return s, false
	}

	return s[1 : len(s)-1], true
}

// column converts a byte offset within s to a 1-based rune column.
func column(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}

	return utf8.RuneCountInString(s[:offset]) + 1
}
