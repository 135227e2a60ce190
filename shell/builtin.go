package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ardnew/run/lang"
)

// syntaxErrorStatus is the status POSIX shells exit with on a syntax error.
const syntaxErrorStatus = 2

// interpret runs command with the in-process shell. Each command gets a
// fresh interpreter, as each spawned shell would.
func (r *Runner) interpret(ctx context.Context, command string) (lang.ExitStatus, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		fmt.Fprintf(r.stderr, "%s: %v\n", BuiltinName, err)

		return syntaxErrorStatus, nil
	}

	opts := []interp.RunnerOption{
		interp.StdIO(r.stdin, r.stdout, r.stderr),
		interp.Env(expand.ListEnviron(r.environ()...)),
	}

	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return 1, err
	}

	err = runner.Run(ctx, file)
	if err == nil {
		return 0, nil
	}

	var status interp.ExitStatus
	if errors.As(err, &status) {
		return lang.ExitStatus(status), nil
	}

	return 1, err
}
