package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/object"
)

// eval reduces expr to a value. A raised exception comes back as an
// *object.Exception error; any other error is fatal. eval never returns
// Void or a thunk.
func (e *Evaluator) eval(env *object.Environment, expr ast.Expression) (object.Object, error) {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Boolean:
		return object.NativeBool(node.Value), nil

	case *ast.Nil:
		return object.NIL, nil

	case *ast.Variable:
		return e.evalVariable(env, node)

	case *ast.NewExpression:
		return e.evalNew(node)

	case *ast.PrefixExpression:
		right, err := e.eval(env, node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalPrefix(node, right)

	case *ast.InfixExpression:
		if node.Operator == "&&" || node.Operator == "||" {
			return e.evalLogical(env, node)
		}

		left, err := e.eval(env, node.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(env, node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalInfix(node, left, right)

	case *ast.CallExpression:
		val, err := e.call(env, node)
		if err != nil {
			return nil, err
		}
		if val == object.VOID {
			return nil, object.NewTypeError(node.Pos(), "%s() does not return a value", node.Name)
		}
		return val, nil

	default:
		return nil, object.NewFaultError(expr.Pos(), "unknown expression kind %s", expr.Kind())
	}
}

func (e *Evaluator) evalVariable(env *object.Environment, v *ast.Variable) (object.Object, error) {
	b, ok := env.Get(v.Name())
	if !ok {
		return nil, object.NewNameError(v.Pos(), "variable %s not defined", v.Name())
	}

	val, err := e.force(env, v.Name(), b.Value)
	if err != nil {
		return nil, err
	}

	for i, field := range v.Path[1:] {
		sv, err := e.derefStruct(val, v.Path[:i+1], v.Pos())
		if err != nil {
			return nil, err
		}
		fv, ok := sv.Fields[field]
		if !ok {
			return nil, object.NewNameError(v.Pos(), "struct %s has no field %s", sv.Schema.Name, field)
		}
		val = fv
	}

	return val, nil
}

// derefStruct checks that val, reached through path, is a struct instance.
func (e *Evaluator) derefStruct(val object.Object, path []string, pos int) (*object.StructValue, error) {
	switch val := val.(type) {
	case *object.StructValue:
		return val, nil
	case *object.Nil:
		return nil, object.NewFaultError(pos, "nil dereference of %s", joinPath(path))
	default:
		return nil, object.NewTypeError(pos, "%s is a %s, not a struct", joinPath(path), object.TypeName(val))
	}
}

func joinPath(path []string) string {
	return (&ast.Variable{Path: path}).String()
}

func (e *Evaluator) evalNew(node *ast.NewExpression) (object.Object, error) {
	schema, ok := e.structs[node.TypeName]
	if !ok {
		return nil, object.NewTypeError(node.Pos(), "unknown struct type %s", node.TypeName)
	}

	fields := make(map[string]object.Object, len(schema.Fields))
	for _, f := range schema.Fields {
		fields[f.Name] = object.ZeroValue(f.Type)
	}
	return &object.StructValue{Schema: schema, Fields: fields}, nil
}

// call resolves and runs a call. The result may be Void.
func (e *Evaluator) call(env *object.Environment, node *ast.CallExpression) (object.Object, error) {
	if builtin, ok := e.builtin(node.Name); ok {
		return builtin(env, node)
	}

	fn, ok := e.lookupFunction(node.Name, len(node.Arguments))
	if !ok {
		return nil, object.NewNameError(node.Pos(), "function %s with %d args not found", node.Name, len(node.Arguments))
	}

	args := make([]object.Object, len(fn.Parameters))
	for i, p := range fn.Parameters {
		argExpr := node.Arguments[i]
		if e.deferred(p.Type) {
			args[i] = object.NewThunk(argExpr, env)
			continue
		}

		val, err := e.eval(env, argExpr)
		if err != nil {
			return nil, err
		}
		val, err = e.convert(p.Type, val, argExpr.Pos(), "parameter "+p.Name+" of "+fn.Name)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	return e.invoke(env, fn, args, node.Pos())
}

// convert checks val against a declared slot type, applying the int to bool
// coercion for bool slots. Nil fits any struct typed slot.
func (e *Evaluator) convert(t ast.TypeName, val object.Object, pos int, slot string) (object.Object, error) {
	switch t {
	case ast.Untyped:
		return val, nil
	case ast.BoolType:
		val = object.CoerceIntToBool(val)
		if _, ok := val.(*object.Boolean); ok {
			return val, nil
		}
	case ast.IntType:
		if _, ok := val.(*object.Integer); ok {
			return val, nil
		}
	case ast.StringType:
		if _, ok := val.(*object.String); ok {
			return val, nil
		}
	default:
		if !e.isValueType(t) {
			return nil, object.NewTypeError(pos, "invalid type %s for %s", t, slot)
		}
		switch v := val.(type) {
		case *object.Nil:
			return val, nil
		case *object.StructValue:
			if v.Schema.Name == string(t) {
				return val, nil
			}
		}
	}
	return nil, object.NewTypeError(pos, "type mismatch: cannot use %s value for %s of type %s", object.TypeName(val), slot, t)
}
