package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/object"
	"errors"
)

var errDivideByZero = errors.New("division by zero")

type (
	intOp    func(a, b int64) (object.Object, error)
	stringOp func(a, b string) object.Object
	boolOp   func(a, b bool) object.Object
)

// Equality is handled by equal for every type. Integer division truncates
// toward zero.
var intOps = map[string]intOp{
	"+": func(a, b int64) (object.Object, error) { return &object.Integer{Value: a + b}, nil },
	"-": func(a, b int64) (object.Object, error) { return &object.Integer{Value: a - b}, nil },
	"*": func(a, b int64) (object.Object, error) { return &object.Integer{Value: a * b}, nil },
	"/": func(a, b int64) (object.Object, error) {
		if b == 0 {
			return nil, errDivideByZero
		}
		return &object.Integer{Value: a / b}, nil
	},
	"<":  func(a, b int64) (object.Object, error) { return object.NativeBool(a < b), nil },
	"<=": func(a, b int64) (object.Object, error) { return object.NativeBool(a <= b), nil },
	">":  func(a, b int64) (object.Object, error) { return object.NativeBool(a > b), nil },
	">=": func(a, b int64) (object.Object, error) { return object.NativeBool(a >= b), nil },
}

var stringOps = map[string]stringOp{
	"+": func(a, b string) object.Object { return &object.String{Value: a + b} },
}

var boolOps = map[string]boolOp{
	"&&": func(a, b bool) object.Object { return object.NativeBool(a && b) },
	"||": func(a, b bool) object.Object { return object.NativeBool(a || b) },
}

func (e *Evaluator) evalPrefix(node *ast.PrefixExpression, right object.Object) (object.Object, error) {
	switch node.Operator {
	case "-":
		i, ok := right.(*object.Integer)
		if !ok {
			return nil, object.NewTypeError(node.Pos(), "unary - requires an int, got %s", object.TypeName(right))
		}
		return &object.Integer{Value: -i.Value}, nil
	case "!":
		if e.dialect.NotCoercion {
			right = object.CoerceIntToBool(right)
		}
		b, ok := right.(*object.Boolean)
		if !ok {
			return nil, object.NewTypeError(node.Pos(), "unary ! requires a bool, got %s", object.TypeName(right))
		}
		return object.NativeBool(!b.Value), nil
	default:
		return nil, object.NewTypeError(node.Pos(), "unknown operator %s", node.Operator)
	}
}

// evalLogical handles && and ||. Both sides must coerce to bool; whether the
// right side is skipped depends on the dialect.
func (e *Evaluator) evalLogical(env *object.Environment, node *ast.InfixExpression) (object.Object, error) {
	left, err := e.eval(env, node.Left)
	if err != nil {
		return nil, err
	}
	lb, err := e.logicalOperand(node, left)
	if err != nil {
		return nil, err
	}

	if e.dialect.ShortCircuit {
		if node.Operator == "&&" && !lb {
			return object.FALSE, nil
		}
		if node.Operator == "||" && lb {
			return object.TRUE, nil
		}
	}

	right, err := e.eval(env, node.Right)
	if err != nil {
		return nil, err
	}
	rb, err := e.logicalOperand(node, right)
	if err != nil {
		return nil, err
	}

	return boolOps[node.Operator](lb, rb), nil
}

func (e *Evaluator) logicalOperand(node *ast.InfixExpression, v object.Object) (bool, error) {
	b, ok := object.CoerceIntToBool(v).(*object.Boolean)
	if !ok {
		return false, object.NewTypeError(node.Pos(), "incompatible types for %s operation: %s", node.Operator, object.TypeName(v))
	}
	return b.Value, nil
}

func (e *Evaluator) evalInfix(node *ast.InfixExpression, left, right object.Object) (object.Object, error) {
	op := node.Operator

	if op == "==" || op == "!=" {
		eq, err := e.equal(node, left, right)
		if err != nil {
			return nil, err
		}
		if op == "!=" {
			eq = !eq
		}
		return object.NativeBool(eq), nil
	}

	if left.Type() != right.Type() {
		return nil, object.NewTypeError(node.Pos(), "incompatible types for %s operation: %s and %s",
			op, object.TypeName(left), object.TypeName(right))
	}

	switch l := left.(type) {
	case *object.Integer:
		if fn, ok := intOps[op]; ok {
			val, err := fn(l.Value, right.(*object.Integer).Value)
			if errors.Is(err, errDivideByZero) {
				return nil, e.divideByZero(node)
			}
			return val, err
		}
	case *object.String:
		if fn, ok := stringOps[op]; ok {
			return fn(l.Value, right.(*object.String).Value), nil
		}
	case *object.Boolean:
		if fn, ok := boolOps[op]; ok {
			return fn(l.Value, right.(*object.Boolean).Value), nil
		}
	}

	return nil, object.NewTypeError(node.Pos(), "operator %s is not supported for %s", op, object.TypeName(left))
}

func (e *Evaluator) divideByZero(node *ast.InfixExpression) error {
	if e.dialect.Exceptions {
		return &object.Exception{Value: &object.String{Value: "div0"}, Pos: node.Pos()}
	}
	return object.NewFaultError(node.Pos(), "division by zero")
}

// equal implements == for any pair of values. Primitives of one type compare
// by value and primitives of different types are unequal. Nil compares with
// nil and with struct instances; struct instances of one type compare by
// identity. Every other mix is a type error.
func (e *Evaluator) equal(node *ast.InfixExpression, left, right object.Object) (bool, error) {
	lRef := isReference(left)
	rRef := isReference(right)

	switch {
	case lRef && rRef:
		ls, lok := left.(*object.StructValue)
		rs, rok := right.(*object.StructValue)
		if lok && rok && ls.Schema != rs.Schema {
			return false, object.NewTypeError(node.Pos(), "cannot compare %s with %s", ls.Schema.Name, rs.Schema.Name)
		}
		return left == right, nil
	case lRef || rRef:
		return false, object.NewTypeError(node.Pos(), "cannot compare %s with %s", object.TypeName(left), object.TypeName(right))
	}

	switch l := left.(type) {
	case *object.Integer:
		if r, ok := right.(*object.Integer); ok {
			return l.Value == r.Value, nil
		}
	case *object.String:
		if r, ok := right.(*object.String); ok {
			return l.Value == r.Value, nil
		}
	case *object.Boolean:
		if r, ok := right.(*object.Boolean); ok {
			return l.Value == r.Value, nil
		}
	}
	return false, nil
}

func isReference(v object.Object) bool {
	switch v.(type) {
	case *object.Nil, *object.StructValue:
		return true
	}
	return false
}
