package object

import (
	"brewin/internal/ast"
	"bytes"
	"strconv"
	"strings"
)

const (
	INTEGER_OBJ = "int"
	BOOLEAN_OBJ = "bool"
	STRING_OBJ  = "string"
	NIL_OBJ     = "nil"
	STRUCT_OBJ  = "struct"
	VOID_OBJ    = "void"
	THUNK_OBJ   = "thunk"

	STRUCT_SCHEMA_OBJ = "STRUCT_SCHEMA"
)

var (
	NIL   = &Nil{}
	VOID  = &Void{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// Void is the result of a call to a function that produces no value. It may
// be discarded but never used as an operand.
type Void struct{}

func (v *Void) Type() ObjectType { return VOID_OBJ }
func (v *Void) Inspect() string  { return "void" }

type StructSchema struct {
	Name       string
	Fields     []*ast.Field
	FieldIndex map[string]int
}

func NewStructSchema(def *ast.StructDefinition) *StructSchema {
	s := &StructSchema{
		Name:       def.Name,
		Fields:     def.Fields,
		FieldIndex: make(map[string]int, len(def.Fields)),
	}
	for i, f := range def.Fields {
		s.FieldIndex[f.Name] = i
	}
	return s
}

func (s *StructSchema) Type() ObjectType { return STRUCT_SCHEMA_OBJ }
func (s *StructSchema) Inspect() string {
	var out bytes.Buffer
	out.WriteString(s.Name)
	out.WriteString(" struct {")
	parts := []string{}
	for _, field := range s.Fields {
		parts = append(parts, field.String())
	}
	out.WriteString(strings.Join(parts, "; "))
	out.WriteString("}")
	return out.String()
}

// FieldType reports the declared type of a field.
func (s *StructSchema) FieldType(name string) (ast.TypeName, bool) {
	i, ok := s.FieldIndex[name]
	if !ok {
		return ast.Untyped, false
	}
	return s.Fields[i].Type, true
}

// StructValue is a heap allocated instance. Copies of the pointer share the
// field map, which is how aliasing and cycles such as v.z.z = v work.
type StructValue struct {
	Schema *StructSchema
	Fields map[string]Object
}

func (s *StructValue) Type() ObjectType { return STRUCT_OBJ }
func (s *StructValue) Inspect() string  { return "<" + s.Schema.Name + ">" }

// TypeName is the user facing name of a value's type: a primitive name or
// the struct's declared name.
func TypeName(obj Object) string {
	if sv, ok := obj.(*StructValue); ok {
		return sv.Schema.Name
	}
	return string(obj.Type())
}

// ZeroValue is the default for a declared type. Struct typed and untyped
// slots start as nil.
func ZeroValue(t ast.TypeName) Object {
	switch t {
	case ast.IntType:
		return &Integer{Value: 0}
	case ast.BoolType:
		return FALSE
	case ast.StringType:
		return &String{Value: ""}
	case ast.VoidType:
		return VOID
	default:
		return NIL
	}
}

// CoerceIntToBool returns Bool(v != 0) for an Integer and v otherwise.
func CoerceIntToBool(obj Object) Object {
	if i, ok := obj.(*Integer); ok {
		return NativeBool(i.Value != 0)
	}
	return obj
}
