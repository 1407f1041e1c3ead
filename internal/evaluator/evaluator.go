package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/console"
	"brewin/internal/object"
	"errors"
	"log/slog"
	"os"
)

const DefaultMaxDepth = 5000

type Evaluator struct {
	dialect  Dialect
	io       console.IO
	logger   *slog.Logger
	maxDepth int
	trace    bool

	functions map[funcKey]*ast.FunctionDefinition
	structs   map[string]*object.StructSchema

	depth       int
	returnTypes []ast.TypeName // declared return type of each active call
}

type Option func(*Evaluator)

func WithDialect(d Dialect) Option {
	return func(e *Evaluator) { e.dialect = d }
}

func WithIO(rw console.IO) Option {
	return func(e *Evaluator) { e.io = rw }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithMaxDepth bounds nested calls; exceeding it is a FAULT_ERROR.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithTrace logs every executed statement at Info level.
func WithTrace(on bool) Option {
	return func(e *Evaluator) { e.trace = on }
}

// New builds the function and struct tables for program and validates every
// declaration, so load errors surface before main runs.
func New(program *ast.Program, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		dialect:  DefaultDialect,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.io == nil {
		e.io = console.NewTerminal(os.Stdout)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	if err := e.load(program); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Evaluator) Dialect() Dialect {
	return e.dialect
}

// Run executes main. Output produced before a fatal error stays emitted.
func (e *Evaluator) Run() error {
	env := object.NewEnvironment()
	if e.dialect.GlobalScope {
		env.UseGlobalScope()
	}

	main := e.functions[funcKey{name: "main", arity: 0}]
	e.logger.Debug("run", slog.String("dialect", e.dialect.Name))

	_, err := e.invoke(env, main, nil, main.Pos())

	var ex *object.Exception
	if errors.As(err, &ex) {
		return object.NewFaultError(ex.Pos, "unhandled exception %q", ex.Tag())
	}
	return err
}

// invoke runs fn in a fresh activation. args are already checked against the
// parameter types; thunks are bound as is.
func (e *Evaluator) invoke(env *object.Environment, fn *ast.FunctionDefinition, args []object.Object, pos int) (object.Object, error) {
	if e.depth >= e.maxDepth {
		return nil, object.NewFaultError(pos, "maximum call depth %d exceeded in %s", e.maxDepth, fn.Name)
	}

	e.depth++
	e.returnTypes = append(e.returnTypes, fn.ReturnType)
	env.PushFunction(fn.Name)
	e.logger.Debug("call", slog.String("function", fn.Name), slog.Int("arity", len(args)), slog.Int("depth", e.depth))

	defer func() {
		env.PopFunction()
		e.returnTypes = e.returnTypes[:len(e.returnTypes)-1]
		e.depth--
		e.logger.Debug("return", slog.String("function", fn.Name), slog.Int("depth", e.depth))
	}()

	for i, p := range fn.Parameters {
		env.Create(p.Name, args[i], p.Type)
	}

	sig, err := e.execBlock(env, fn.Body)
	if err != nil {
		return nil, err
	}

	switch sig.Kind {
	case Raise:
		return nil, &object.Exception{Value: sig.Value, Pos: sig.Pos}
	case Return:
		return sig.Value, nil
	default:
		return e.zeroValue(fn.ReturnType), nil
	}
}

// zeroValue is the initial value of a slot of type t and the result of a
// bare return or of falling off the end of a function returning t.
func (e *Evaluator) zeroValue(t ast.TypeName) object.Object {
	if t == ast.Untyped {
		return object.NIL
	}
	return object.ZeroValue(t)
}

func (e *Evaluator) currentReturnType() ast.TypeName {
	return e.returnTypes[len(e.returnTypes)-1]
}
