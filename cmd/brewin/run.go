package main

import (
	"brewin/internal/ast"
	"brewin/internal/console"
	"brewin/internal/evaluator"
	"brewin/internal/object"
	"brewin/internal/parser"
	"brewin/internal/util"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func runCommand(config util.Configuration, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dialectName := fs.String("dialect", config.Dialect, "Language dialect: brewin, brewin+, brewin#")
	globalScope := fs.Bool("global-scope", config.GlobalScope, "Make main's top-level variables visible to every function")
	maxDepth := fs.Int("max-depth", config.MaxDepth, "Maximum call depth (0 for the default)")
	trace := fs.Bool("trace", config.Trace, "Log every executed statement at info level")
	debugAST := fs.Bool("debug-ast", config.DebugAST, "Write the AST as JSON next to the source file")
	inputFile := fs.String("input", "", "Read program input from this file instead of the terminal")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: brewin run [flags] file.br")
		return exitUsage
	}
	filename := fs.Arg(0)

	dialect, err := evaluator.LookupDialect(*dialectName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	dialect.GlobalScope = dialect.GlobalScope || *globalScope

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	source := string(src)

	program, err := parser.Parse(source)
	if err != nil {
		reportError(stderr, source, err)
		return exitError
	}
	if *debugAST {
		if err := writeAST(filename+".ast.json", program); err != nil {
			slog.Warn("failed to write AST", slog.String("file", filename), slog.Any("error", err))
		}
	}

	var rw console.IO
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		rw = console.ScriptFromText(string(data)).Echo(stdout)
	} else {
		terminal := console.NewTerminal(stdout)
		defer terminal.Close()
		rw = terminal
	}

	ev, err := evaluator.New(program,
		evaluator.WithDialect(dialect),
		evaluator.WithIO(rw),
		evaluator.WithMaxDepth(*maxDepth),
		evaluator.WithTrace(*trace),
	)
	if err == nil {
		slog.Debug("running program", slog.String("file", filename), slog.String("dialect", dialect.Name))
		err = ev.Run()
	}
	if err != nil {
		reportError(stderr, source, err)
		return exitError
	}
	return exitOK
}

func astCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: brewin ast file.br")
		return exitUsage
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	program, err := parser.Parse(string(src))
	if err != nil {
		reportError(stderr, string(src), err)
		return exitError
	}
	out, err := ast.RenderJSON(program)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	fmt.Fprintln(stdout, out)
	return exitOK
}

func writeAST(path string, program *ast.Program) error {
	out, err := ast.RenderJSON(program)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out+"\n"), 0o644)
}

// reportError prints err in the ErrorType.KIND form, followed by the source
// lines around the failing position when it is known.
func reportError(w io.Writer, source string, err error) {
	var parseErrors parser.ErrorList
	if errors.As(err, &parseErrors) {
		for _, pe := range parseErrors {
			fmt.Fprintf(w, "ErrorType.SYNTAX_ERROR: %s\n", pe.Message)
			fmt.Fprintln(w, util.GetContextLines(source, pe.Line, pe.Column))
		}
		return
	}

	var re *object.RuntimeError
	if errors.As(err, &re) {
		fmt.Fprintf(w, "ErrorType.%s\n", re.Error())
		if re.Pos >= 0 {
			fmt.Fprintln(w, util.Snippet(source, re.Pos))
		}
		return
	}

	fmt.Fprintf(w, "error: %v\n", err)
}
