package lang

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Substitute expands placeholders in template:
//
//  1. $1 … $n with the corresponding element of args. Higher indexes are
//     replaced first so $10 is not consumed by $1. Placeholders beyond
//     len(args) are left untouched.
//  2. $@ with all args joined by single spaces.
//  3. $name and ${name} with the value of each variable in vars, longest
//     name first. Undefined variables are left for the shell to expand.
func Substitute(template string, args []string, vars map[string]string) string {
	out := template

	for k := len(args); k >= 1; k-- {
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(k), args[k-1])
	}

	if strings.Contains(out, "$@") {
		out = strings.ReplaceAll(out, "$@", strings.Join(args, " "))
	}

	if len(vars) == 0 || !strings.Contains(out, "$") {
		return out
	}

	names := sortedKeys(vars)
	slices.SortStableFunc(names, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	pairs := make([]string, 0, 4*len(names))
	for _, name := range names {
		pairs = append(pairs,
			"${"+name+"}", vars[name],
			"$"+name, vars[name],
		)
	}

	return strings.NewReplacer(pairs...).Replace(out)
}
