package lang

import (
	"maps"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Resolution describes the definition a call site maps onto.
type Resolution struct {
	Strategy string      // name of the strategy that matched
	Name     string      // name of the matched definition
	Template string      // template of a single-line definition
	Body     []Statement // body of a block definition
	Args     []string    // arguments passed to the template
	Block    bool        // the match is a block definition
}

// tables holds the interpreter's definitions.
type tables struct {
	variables map[string]string
	functions map[string][]Statement
	templates map[string]string
}

func newTables() tables {
	return tables{
		variables: make(map[string]string),
		functions: make(map[string][]Statement),
		templates: make(map[string]string),
	}
}

// strategy is one rule for mapping a call site onto a definition.
type strategy struct {
	name  string
	match func(t *tables, name string, args []string) (Resolution, bool)
}

// commandLineStrategies resolve invocations without parentheses, such as
// "run docker logs web". Order is significant.
//
//nolint:gochecknoglobals
var commandLineStrategies = []strategy{
	{"direct", matchDirect},
	{"subcommand", matchSubcommand},
	{"underscore", matchUnderscore},
	{"block", matchBlock},
}

// callStrategies resolve parenthesized calls in scripts. Order is significant.
//
//nolint:gochecknoglobals
var callStrategies = []strategy{
	{"direct", matchDirect},
	{"space", matchSpace},
	{"leading-pair", matchLeadingPair},
	{"block", matchBlock},
}

func (t *tables) template(name string, args []string) (Resolution, bool) {
	tmpl, ok := t.templates[name]
	if !ok {
		return Resolution{}, false
	}

	return Resolution{Name: name, Template: tmpl, Args: args}, true
}

// matchDirect looks up name as a single-line definition with all args.
func matchDirect(t *tables, name string, args []string) (Resolution, bool) {
	return t.template(name, args)
}

// matchSubcommand promotes the first argument: name args[0] → "name:args[0]"
// with the remaining arguments.
func matchSubcommand(t *tables, name string, args []string) (Resolution, bool) {
	if len(args) == 0 {
		return Resolution{}, false
	}

	return t.template(name+":"+args[0], args[1:])
}

// matchUnderscore maps underscores to colons: docker_shell → docker:shell.
func matchUnderscore(t *tables, name string, args []string) (Resolution, bool) {
	alt := strings.ReplaceAll(name, "_", ":")
	if alt == name {
		return Resolution{}, false
	}

	return t.template(alt, args)
}

// matchSpace maps spaces to colons: "docker shell" → docker:shell.
func matchSpace(t *tables, name string, args []string) (Resolution, bool) {
	alt := strings.ReplaceAll(name, " ", ":")
	if alt == name {
		return Resolution{}, false
	}

	return t.template(alt, args)
}

// matchLeadingPair joins the first two words of name with a colon and passes
// any further words ahead of args: "docker shell app" → docker:shell(app).
func matchLeadingPair(t *tables, name string, args []string) (Resolution, bool) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return Resolution{}, false
	}

	alt := fields[0] + ":" + fields[1]
	if alt == name {
		return Resolution{}, false
	}

	return t.template(alt, append(slices.Clone(fields[2:]), args...))
}

// matchBlock looks up name as a block definition. Arguments are not passed
// into block bodies.
func matchBlock(t *tables, name string, _ []string) (Resolution, bool) {
	body, ok := t.functions[name]
	if !ok {
		return Resolution{}, false
	}

	return Resolution{Name: name, Body: body, Block: true}, true
}

// resolve returns the first match among strategies, or a [*NotFoundError].
func (t *tables) resolve(
	strategies []strategy,
	name string,
	args []string,
) (Resolution, error) {
	for _, s := range strategies {
		if r, ok := s.match(t, name, args); ok {
			r.Strategy = s.name

			return r, nil
		}
	}

	return Resolution{}, &NotFoundError{Name: name, Suggestions: t.suggest(name)}
}

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// suggest returns the defined names closest to name by fuzzy match score.
func (t *tables) suggest(name string) []string {
	needle := strings.NewReplacer(" ", ":", "_", ":").Replace(name)

	names := t.names()
	if needle == "" || len(names) == 0 {
		return nil
	}

	matches := fuzzy.Find(needle, names)

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// names returns all defined function names, sorted and unique.
func (t *tables) names() []string {
	names := append(sortedKeys(t.templates), sortedKeys(t.functions)...)
	slices.Sort(names)

	return slices.Compact(names)
}

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}
