package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/object"
	"errors"
	"log/slog"
)

type SignalKind int

const (
	Continue SignalKind = iota
	Return
	Raise
)

func (k SignalKind) String() string {
	switch k {
	case Return:
		return "return"
	case Raise:
		return "raise"
	default:
		return "continue"
	}
}

// Signal is the outcome of executing a statement: normal completion, a
// return in progress carrying its value, or a raised exception value.
type Signal struct {
	Kind  SignalKind
	Value object.Object
	Pos   int
}

var next = Signal{Kind: Continue}

// execBlock runs block in a fresh scope. The scope is popped on every exit
// path.
func (e *Evaluator) execBlock(env *object.Environment, block *ast.Block) (Signal, error) {
	env.PushBlock()
	defer env.PopBlock()

	return e.execStatements(env, block.Statements)
}

func (e *Evaluator) execStatements(env *object.Environment, stmts []ast.Statement) (Signal, error) {
	for _, stmt := range stmts {
		sig, err := e.exec(env, stmt)
		if err != nil || sig.Kind != Continue {
			return sig, err
		}
	}
	return next, nil
}

// exec runs one statement. Exceptions raised while evaluating expressions
// become a Raise signal; the returned error is always fatal.
func (e *Evaluator) exec(env *object.Environment, stmt ast.Statement) (Signal, error) {
	if e.trace {
		e.logger.Info("exec", slog.String("kind", stmt.Kind().String()), slog.Int("pos", stmt.Pos()), slog.String("stmt", stmt.String()))
	}

	sig, err := e.execStatement(env, stmt)

	var ex *object.Exception
	if errors.As(err, &ex) {
		return Signal{Kind: Raise, Value: ex.Value, Pos: ex.Pos}, nil
	}
	return sig, err
}

func (e *Evaluator) execStatement(env *object.Environment, stmt ast.Statement) (Signal, error) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		return next, e.execVar(env, s)

	case *ast.AssignStatement:
		return next, e.execAssign(env, s)

	case *ast.CallStatement:
		_, err := e.call(env, s.Call)
		return next, err

	case *ast.IfStatement:
		return e.execIf(env, s)

	case *ast.ForStatement:
		return e.execFor(env, s)

	case *ast.ReturnStatement:
		return e.execReturn(env, s)

	case *ast.RaiseStatement:
		return e.execRaise(env, s)

	case *ast.TryStatement:
		return e.execTry(env, s)

	case *ast.Block:
		return e.execBlock(env, s)

	default:
		return next, object.NewFaultError(stmt.Pos(), "unknown statement kind %s", stmt.Kind())
	}
}

func (e *Evaluator) execVar(env *object.Environment, s *ast.VarStatement) error {
	if s.Type != ast.Untyped && !e.isValueType(s.Type) {
		return object.NewTypeError(s.Pos(), "invalid type %s for variable %s", s.Type, s.Name)
	}
	if !env.Create(s.Name, e.zeroValue(s.Type), s.Type) {
		return object.NewNameError(s.Pos(), "duplicate definition for variable %s", s.Name)
	}
	return nil
}

func (e *Evaluator) execAssign(env *object.Environment, s *ast.AssignStatement) error {
	target := s.Target

	if !target.IsFieldPath() {
		b, ok := env.Get(target.Name())
		if !ok {
			return object.NewNameError(target.Pos(), "undefined variable %s", target.Name())
		}

		if e.deferred(b.Type) {
			env.Set(target.Name(), object.NewThunk(s.Value, env))
			return nil
		}

		val, err := e.eval(env, s.Value)
		if err != nil {
			return err
		}
		val, err = e.convert(b.Type, val, s.Value.Pos(), "variable "+target.Name())
		if err != nil {
			return err
		}
		env.Set(target.Name(), val)
		return nil
	}

	val, err := e.eval(env, s.Value)
	if err != nil {
		return err
	}

	holderPath := target.Path[:len(target.Path)-1]
	field := target.Path[len(target.Path)-1]

	holder, err := e.evalVariable(env, &ast.Variable{Token: target.Token, Path: holderPath})
	if err != nil {
		return err
	}
	sv, err := e.derefStruct(holder, holderPath, target.Pos())
	if err != nil {
		return err
	}

	ft, ok := sv.Schema.FieldType(field)
	if !ok {
		return object.NewNameError(target.Pos(), "struct %s has no field %s", sv.Schema.Name, field)
	}
	val, err = e.convert(ft, val, s.Value.Pos(), "field "+target.String())
	if err != nil {
		return err
	}

	sv.Fields[field] = val
	return nil
}

// condition evaluates a loop or branch condition, coercing int to bool.
func (e *Evaluator) condition(env *object.Environment, expr ast.Expression, what string) (bool, error) {
	val, err := e.eval(env, expr)
	if err != nil {
		return false, err
	}
	b, ok := object.CoerceIntToBool(val).(*object.Boolean)
	if !ok {
		return false, object.NewTypeError(expr.Pos(), "%s condition must be bool, got %s", what, object.TypeName(val))
	}
	return b.Value, nil
}

func (e *Evaluator) execIf(env *object.Environment, s *ast.IfStatement) (Signal, error) {
	ok, err := e.condition(env, s.Condition, "if")
	if err != nil {
		return next, err
	}

	if ok {
		return e.execBlock(env, s.Consequence)
	}
	if s.Alternative != nil {
		return e.execBlock(env, s.Alternative)
	}
	return next, nil
}

// execFor scopes a var declared by the initializer to the loop. The update
// does not run when the body returns or raises.
func (e *Evaluator) execFor(env *object.Environment, s *ast.ForStatement) (Signal, error) {
	env.PushBlock()
	defer env.PopBlock()

	if sig, err := e.exec(env, s.Init); err != nil || sig.Kind != Continue {
		return sig, err
	}

	for {
		ok, err := e.condition(env, s.Condition, "for")
		if err != nil || !ok {
			return next, err
		}

		sig, err := e.execBlock(env, s.Body)
		if err != nil || sig.Kind != Continue {
			return sig, err
		}

		if err := e.execAssign(env, s.Update); err != nil {
			return next, err
		}
	}
}

func (e *Evaluator) execReturn(env *object.Environment, s *ast.ReturnStatement) (Signal, error) {
	rt := e.currentReturnType()

	if s.ReturnValue == nil {
		return Signal{Kind: Return, Value: e.zeroValue(rt), Pos: s.Pos()}, nil
	}
	if rt == ast.VoidType {
		return next, object.NewTypeError(s.Pos(), "void function cannot return a value")
	}

	val, err := e.eval(env, s.ReturnValue)
	if err != nil {
		return next, err
	}
	val, err = e.convert(rt, val, s.ReturnValue.Pos(), "return value")
	if err != nil {
		return next, err
	}
	return Signal{Kind: Return, Value: val, Pos: s.Pos()}, nil
}

func (e *Evaluator) execRaise(env *object.Environment, s *ast.RaiseStatement) (Signal, error) {
	if !e.dialect.Exceptions {
		return next, object.NewNameError(s.Pos(), "raise is not supported in %s", e.dialect.Name)
	}

	val, err := e.eval(env, s.Exception)
	if err != nil {
		return next, err
	}
	if _, ok := val.(*object.String); !ok {
		return next, object.NewTypeError(s.Pos(), "raise requires a string, got %s", object.TypeName(val))
	}

	e.logger.Debug("raise", slog.String("exception", val.Inspect()), slog.Int("pos", s.Pos()))
	return Signal{Kind: Raise, Value: val, Pos: s.Pos()}, nil
}

func (e *Evaluator) execTry(env *object.Environment, s *ast.TryStatement) (Signal, error) {
	if !e.dialect.Exceptions {
		return next, object.NewNameError(s.Pos(), "try is not supported in %s", e.dialect.Name)
	}

	sig, err := e.execBlock(env, s.Body)
	if err != nil || sig.Kind != Raise {
		return sig, err
	}

	tag := (&object.Exception{Value: sig.Value}).Tag()
	for _, c := range s.Catchers {
		if c.Tag == tag {
			e.logger.Debug("catch", slog.String("exception", tag), slog.Int("pos", c.Pos()))
			return e.execBlock(env, c.Body)
		}
	}
	return sig, nil
}
