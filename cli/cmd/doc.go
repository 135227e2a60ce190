// Package cmd implements the actions of the run command line: calling a
// Runfile function, executing a script file, listing functions, printing and
// installing shell completion scripts, and starting the REPL.
//
// Commands receive their process environment ([Env]) through the
// context.Context given to Run, see [WithEnv].
package cmd
