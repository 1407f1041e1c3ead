package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/object"
	"log/slog"
)

// deferred reports whether a value bound into a slot of type t is stored as
// a thunk. Typed slots need the value for their type check.
func (e *Evaluator) deferred(t ast.TypeName) bool {
	return e.dialect.Lazy && t == ast.Untyped
}

// force evaluates v if it is a thunk and memoizes the result into the slot
// named name, so later reads skip the thunk. A thunk that reads an older
// thunk forces it in turn; each level counts against the call depth limit.
func (e *Evaluator) force(env *object.Environment, name string, v object.Object) (object.Object, error) {
	th, ok := v.(*object.Thunk)
	if !ok {
		return v, nil
	}

	if !th.Evaluated() {
		if e.depth >= e.maxDepth {
			return nil, object.NewFaultError(th.Expr.Pos(), "maximum call depth %d exceeded forcing %s", e.maxDepth, name)
		}
		e.depth++
		e.logger.Debug("force", slog.String("variable", name), slog.Int("depth", e.depth))
		defer func() { e.depth-- }()
	}

	val, err := th.Force(e.eval)
	if err != nil {
		return nil, err
	}
	env.Set(name, val)
	return val, nil
}
