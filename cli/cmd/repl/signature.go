package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anmitsu/go-shlex"
)

// functionCall is a parenthesized call the cursor is inside of.
type functionCall struct {
	name     string // called function name
	argIndex int    // current argument index (0-based)
	inCall   bool   // cursor is inside the argument list
}

// detectFunctionCall reports the innermost call whose argument list contains
// the cursor. Commas inside quotes or nested parentheses do not separate
// arguments.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	type frame struct{ open, arg int }

	var (
		stack []frame
		quote byte
	)

	for i := 0; i < cursor; i++ {
		c := input[i]

		if quote != 0 {
			if c == quote {
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '(':
			stack = append(stack, frame{open: i})
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].arg++
			}
		}
	}

	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	start := top.open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	name := input[start:top.open]
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: top.arg, inCall: true}
}

func isNameRune(r rune) bool {
	return r == '_' || r == ':' || r == '.' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// detectCommandCall reports the function named by a control-mode
// "call NAME ARGS..." line and the index of the argument being typed.
func detectCommandCall(s *Session, input string) functionCall {
	rest, ok := strings.CutPrefix(input, "call ")
	if !ok {
		return functionCall{}
	}

	words, err := shlex.Split(rest, true)
	if err != nil || len(words) == 0 || s.Preview(words[0]) == "" {
		return functionCall{}
	}

	arg := len(words) - 1
	if !strings.HasSuffix(rest, " ") && arg > 0 {
		arg--
	}

	return functionCall{name: words[0], argIndex: arg, inCall: true}
}

// signatureHint describes the function a call resolves to: the template of
// a single-line function with the current argument highlighted, or the size
// of a block function. It is empty for undefined functions.
func signatureHint(s *Session, call functionCall) string {
	if !call.inCall {
		return ""
	}

	if tmpl := s.Template(call.name); tmpl != "" {
		return renderSignatureHint(call.name, tmpl, call.argIndex)
	}

	if preview := s.Preview(call.name); preview != "" {
		return signatureNameStyle.Render(call.name+"()") + " " +
			signatureStyle.Render(preview)
	}

	return ""
}

// renderSignatureHint renders "name() template" with the references to the
// current argument ($N and $@) highlighted.
func renderSignatureHint(name, template string, argIndex int) string {
	current := "$" + strconv.Itoa(argIndex+1)

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name + "()"))
	b.WriteString(" ")

	for i := 0; i < len(template); {
		rest := template[i:]

		switch {
		case strings.HasPrefix(rest, current) && !isDigitAt(rest, len(current)):
			b.WriteString(currentParamStyle.Render(current))
			i += len(current)

		case strings.HasPrefix(rest, "$@"):
			b.WriteString(currentParamStyle.Render("$@"))
			i += 2

		default:
			j := strings.IndexByte(rest[1:], '$')
			if j < 0 {
				j = len(rest)
			} else {
				j++
			}

			b.WriteString(signatureStyle.Render(rest[:j]))
			i += j
		}
	}

	return b.String()
}

func isDigitAt(s string, i int) bool {
	return i < len(s) && s[i] >= '0' && s[i] <= '9'
}
