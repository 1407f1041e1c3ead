package evaluator

import (
	"brewin/internal/ast"
	"brewin/internal/object"
)

type funcKey struct {
	name  string
	arity int
}

func (e *Evaluator) load(program *ast.Program) error {
	e.structs = make(map[string]*object.StructSchema, len(program.Structs))
	e.functions = make(map[funcKey]*ast.FunctionDefinition, len(program.Functions))

	for _, def := range program.Structs {
		if ast.TypeName(def.Name).IsPrimitive() || ast.TypeName(def.Name) == ast.VoidType {
			return object.NewNameError(def.Pos(), "struct name %s shadows a built in type", def.Name)
		}
		if _, dup := e.structs[def.Name]; dup {
			return object.NewNameError(def.Pos(), "duplicate definition for struct %s", def.Name)
		}
		e.structs[def.Name] = object.NewStructSchema(def)
	}

	// field types are checked once every struct is known, so structs may
	// refer to themselves and to each other
	for _, def := range program.Structs {
		seen := make(map[string]bool, len(def.Fields))
		for _, f := range def.Fields {
			if seen[f.Name] {
				return object.NewNameError(f.Token.Position, "duplicate field %s in struct %s", f.Name, def.Name)
			}
			seen[f.Name] = true
			if !e.isValueType(f.Type) {
				return object.NewTypeError(f.Token.Position, "invalid type %s for field %s.%s", f.Type, def.Name, f.Name)
			}
		}
	}

	for _, fn := range program.Functions {
		key := funcKey{name: fn.Name, arity: len(fn.Parameters)}
		if _, dup := e.functions[key]; dup {
			return object.NewNameError(fn.Pos(), "duplicate definition for function %s with %d parameters", fn.Name, key.arity)
		}

		seen := make(map[string]bool, len(fn.Parameters))
		for _, p := range fn.Parameters {
			if seen[p.Name] {
				return object.NewNameError(p.Token.Position, "duplicate parameter %s in function %s", p.Name, fn.Name)
			}
			seen[p.Name] = true
			if p.Type != ast.Untyped && !e.isValueType(p.Type) {
				return object.NewTypeError(p.Token.Position, "invalid type %s for parameter %s of %s", p.Type, p.Name, fn.Name)
			}
		}

		if rt := fn.ReturnType; rt != ast.Untyped && rt != ast.VoidType && !e.isValueType(rt) {
			return object.NewTypeError(fn.Pos(), "invalid return type %s for function %s", rt, fn.Name)
		}

		e.functions[key] = fn
	}

	if _, ok := e.functions[funcKey{name: "main", arity: 0}]; !ok {
		return object.NewNameError(-1, "no main() function was found")
	}
	return nil
}

// isValueType reports whether t may type a variable, field or parameter.
func (e *Evaluator) isValueType(t ast.TypeName) bool {
	if t.IsPrimitive() {
		return true
	}
	_, ok := e.structs[string(t)]
	return ok
}

func (e *Evaluator) lookupFunction(name string, arity int) (*ast.FunctionDefinition, bool) {
	fn, ok := e.functions[funcKey{name: name, arity: arity}]
	return fn, ok
}
