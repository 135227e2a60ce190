// Package shell runs fully substituted command lines for the interpreter.
//
// A [Runner] hands each command to a host shell as "<shell> -c <command>",
// or interprets it in-process with a POSIX shell when the shell is
// [BuiltinName]. A [Printer] writes commands instead of running them.
// Both implement lang.Executor.
package shell
