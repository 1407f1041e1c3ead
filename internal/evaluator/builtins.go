package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/object"
	"fmt"
	"strconv"
	"strings"
)

type builtinFn func(env *object.Environment, call *ast.CallExpression) (object.Object, error)

// builtin resolves the functions provided by the interpreter. They take
// precedence over user functions of the same name.
func (e *Evaluator) builtin(name string) (builtinFn, bool) {
	switch name {
	case "print":
		return e.printLine, true
	case "inputi":
		return e.inputInt, true
	case "inputs":
		return e.inputString, true
	}
	return nil, false
}

func (e *Evaluator) printLine(env *object.Environment, call *ast.CallExpression) (object.Object, error) {
	var out strings.Builder
	for _, arg := range call.Arguments {
		val, err := e.eval(env, arg)
		if err != nil {
			return nil, err
		}
		out.WriteString(val.Inspect())
	}

	if err := e.io.Output(out.String()); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	return object.VOID, nil
}

func (e *Evaluator) inputInt(env *object.Environment, call *ast.CallExpression) (object.Object, error) {
	line, err := e.readInput(env, call)
	if err != nil {
		return nil, err
	}

	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		if e.dialect.Exceptions {
			return nil, &object.Exception{Value: &object.String{Value: "invalid_input"}, Pos: call.Pos()}
		}
		return nil, object.NewTypeError(call.Pos(), "inputi() read %q, which is not an int", line)
	}
	return &object.Integer{Value: n}, nil
}

func (e *Evaluator) inputString(env *object.Environment, call *ast.CallExpression) (object.Object, error) {
	line, err := e.readInput(env, call)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: line}, nil
}

// readInput emits the optional prompt and reads one line.
func (e *Evaluator) readInput(env *object.Environment, call *ast.CallExpression) (string, error) {
	if len(call.Arguments) > 1 {
		return "", object.NewNameError(call.Pos(), "no %s() function that takes > 1 parameter", call.Name)
	}

	if len(call.Arguments) == 1 {
		prompt, err := e.eval(env, call.Arguments[0])
		if err != nil {
			return "", err
		}
		if err := e.io.Output(prompt.Inspect()); err != nil {
			return "", fmt.Errorf("writing output: %w", err)
		}
	}

	line, err := e.io.Input()
	if err != nil {
		return "", fmt.Errorf("reading input for %s(): %w", call.Name, err)
	}
	return line, nil
}
