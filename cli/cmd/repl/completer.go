package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
//
//nolint:gochecknoglobals
var ctrlCommands = []string{
	"help", "list", "call", "vars", "dump", "edit", "reload", "clear", "quit",
}

// isWordBoundary reports whether r delimits a completion word. Colons, dots,
// and hyphens are part of function names and do not delimit.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', ',', '$', '{', '}',
		'"', '\'', '=', ';', '|', '&', '<', '>':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// isVariableRef reports whether the word beginning at start follows "$" or
// "${", and so names a variable.
func isVariableRef(input string, start int) bool {
	prefix := strings.TrimSuffix(input[:start], "{")

	return strings.HasSuffix(prefix, "$")
}

// candidates returns the names the word beginning at start may complete to.
func candidates(s *Session, mode inputMode, input string, start int) []string {
	if mode == modeCtrl {
		head := strings.TrimSpace(input[:start])

		switch {
		case head == "":
			return ctrlCommands
		case head == "call" && !strings.Contains(strings.TrimSpace(input[start:]), " "):
			return s.Functions()
		default:
			return nil
		}
	}

	if isVariableRef(input, start) {
		return s.Variables()
	}

	return s.Functions()
}

// computeMatches calculates the fuzzy matches for the word at the cursor.
// An empty word yields no matches, leaving room for the hint line.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	names []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	names = candidates(m.session, m.mode, input, wordStart)
	if len(names) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, names), names, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate, while tab-cycling, is highlighted.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		need := used + entryWidth
		if i < len(matches)-1 {
			need += ellipsisWidth
		}

		if i > 0 && need > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
