package lang

import (
	"strings"
	"unicode"
)

// logicalLine is a source line after continuation joining, with the physical
// line number it started on.
type logicalLine struct {
	text string
	line int
}

// Preprocess joins every line whose right-trimmed text ends in a backslash
// with the line that follows it. The backslash is replaced by a single space.
// Each resulting line is right-trimmed and terminated by a newline, and a
// trailing continuation with no following line is kept.
func Preprocess(src string) string {
	var sb strings.Builder

	for _, ln := range splitLogical(src) {
		sb.WriteString(ln.text)
		sb.WriteByte('\n')
	}

	return sb.String()
}

func splitLogical(src string) []logicalLine {
	if src == "" {
		return nil
	}

	physical := strings.Split(src, "\n")
	if strings.HasSuffix(src, "\n") {
		physical = physical[:len(physical)-1]
	}

	var (
		out     []logicalLine
		buf     strings.Builder
		start   int
		pending bool
	)

	for i, line := range physical {
		if !pending {
			start = i + 1
		}

		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)

		if strings.HasSuffix(trimmed, `\`) {
			buf.WriteString(trimmed[:len(trimmed)-1])
			buf.WriteByte(' ')

			pending = true

			continue
		}

		buf.WriteString(trimmed)

		out = append(out, logicalLine{
			text: strings.TrimRightFunc(buf.String(), unicode.IsSpace),
			line: start,
		})

		buf.Reset()

		pending = false
	}

	if pending {
		out = append(out, logicalLine{
			text: strings.TrimRightFunc(buf.String(), unicode.IsSpace),
			line: start,
		})
	}

	return out
}
