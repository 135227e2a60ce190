// Package lang implements the Runfile language: a line-oriented scripting
// DSL for naming and invoking shell commands.
//
// # Grammar
//
// Each logical line is one statement. A line ending in a backslash is joined
// with the next line before parsing (see [Preprocess]). Statements are
// classified by the first rule that matches:
//
//	Comment     → '#' <text>
//	Assignment  → Ident '=' <value>
//	FunctionDef → Name '()' WS ( '{' NEWLINE Statement* '}' | Command )
//	Call        → Name '(' ( Arg ( ',' Arg )* )? ')'
//	Command     → ( Word | Quoted | Operator )+
//
//	Ident       → [A-Za-z_][A-Za-z0-9_]*
//	Name        → [A-Za-z_][A-Za-z0-9_:.-]*
//	Arg         → Quoted | <text without ',' or ')'>
//
// # Example
//
//	# Variables are substituted into commands and templates.
//	app=myapp
//
//	# A single-line definition is a template with positional arguments.
//	greet() echo "Hello, $1!"
//	docker:logs() docker logs -f $app-$1
//
//	# A block definition runs each statement in order.
//	release() {
//	  build()
//	  docker:push(latest)
//	}
//
//	greet(World)
//
// # Calling Functions
//
// Scripts call functions with parentheses; [Interpreter.Call] resolves the
// name directly. Command lines such as "run docker logs web" go through
// [Interpreter.ResolveAndCall], which also tries "docker:logs" with the
// remaining arguments and maps underscores to colons.
package lang
