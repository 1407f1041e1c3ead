package object

import "brewin/internal/ast"

// Evaluator reduces an expression in an environment.
type Evaluator func(env *Environment, expr ast.Expression) (Object, error)

// Thunk is a deferred expression with the environment it was bound in. It is
// evaluated at most once; the value or error is cached.
type Thunk struct {
	Expr ast.Expression
	Env  *Environment

	forcing bool
	done    bool
	value   Object
	err     error
}

func NewThunk(expr ast.Expression, env *Environment) *Thunk {
	return &Thunk{Expr: expr, Env: env.Snapshot()}
}

func (t *Thunk) Type() ObjectType { return THUNK_OBJ }
func (t *Thunk) Inspect() string {
	if t.done && t.err == nil {
		return t.value.Inspect()
	}
	return "<lazy " + t.Expr.String() + ">"
}

func (t *Thunk) Evaluated() bool { return t.done }

func (t *Thunk) Force(eval Evaluator) (Object, error) {
	if t.done {
		return t.value, t.err
	}
	if t.forcing {
		return nil, NewFaultError(t.Expr.Pos(), "lazy value %s depends on itself", t.Expr.String())
	}

	t.forcing = true
	value, err := eval(t.Env, t.Expr)
	t.forcing = false

	t.done = true
	t.value = value
	t.err = err
	// the snapshot is no longer needed once the value is known
	t.Env = nil
	return value, err
}
