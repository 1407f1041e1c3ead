package ast

import (
	"brewin/internal/token"
	"bytes"
	"strconv"
	"strings"
)

// Kind tags every node with its place in the fixed node vocabulary.
type Kind int

const (
	ProgramNode Kind = iota
	StructDefNode
	FunctionDefNode
	BlockNode
	VarDefNode
	AssignmentNode
	CallStatementNode
	IfNode
	ForNode
	ReturnNode
	RaiseNode
	TryNode
	CatchClauseNode
	CallNode
	NewNode
	VariableNode
	IntLiteralNode
	StringLiteralNode
	BoolLiteralNode
	NilLiteralNode
	NegNode
	NotNode
	BinaryNode
)

var kindNames = [...]string{
	ProgramNode:       "program",
	StructDefNode:     "struct-def",
	FunctionDefNode:   "function-def",
	BlockNode:         "block",
	VarDefNode:        "var-def",
	AssignmentNode:    "assignment",
	CallStatementNode: "call-statement",
	IfNode:            "if",
	ForNode:           "for",
	ReturnNode:        "return",
	RaiseNode:         "raise",
	TryNode:           "try",
	CatchClauseNode:   "catch-clause",
	CallNode:          "function-call",
	NewNode:           "new-instance",
	VariableNode:      "variable-reference",
	IntLiteralNode:    "int-literal",
	StringLiteralNode: "string-literal",
	BoolLiteralNode:   "bool-literal",
	NilLiteralNode:    "nil-literal",
	NegNode:           "unary-neg",
	NotNode:           "unary-not",
	BinaryNode:        "binary",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
	Kind() Kind
	Pos() int
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// TypeName is a declared type annotation. The empty string means untyped.
type TypeName string

const (
	Untyped    TypeName = ""
	IntType    TypeName = "int"
	BoolType   TypeName = "bool"
	StringType TypeName = "string"
	VoidType   TypeName = "void"
)

func (t TypeName) IsPrimitive() bool {
	return t == IntType || t == BoolType || t == StringType
}

func annotate(out *bytes.Buffer, t TypeName) {
	if t != Untyped {
		out.WriteString(": ")
		out.WriteString(string(t))
	}
}

type Program struct {
	Structs   []*StructDefinition
	Functions []*FunctionDefinition
}

func (p *Program) Kind() Kind { return ProgramNode }
func (p *Program) Pos() int   { return 0 }
func (p *Program) TokenLiteral() string {
	if len(p.Structs) > 0 {
		return p.Structs[0].TokenLiteral()
	}
	if len(p.Functions) > 0 {
		return p.Functions[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Structs {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	for _, f := range p.Functions {
		out.WriteString(f.String())
		out.WriteString("\n")
	}

	return out.String()
}

type Field struct {
	Token token.Token // the field name
	Name  string
	Type  TypeName
}

func (f *Field) String() string {
	var out bytes.Buffer
	out.WriteString(f.Name)
	annotate(&out, f.Type)
	return out.String()
}

type StructDefinition struct {
	Token  token.Token // the token.STRUCT token
	Name   string
	Fields []*Field
}

func (sd *StructDefinition) Kind() Kind           { return StructDefNode }
func (sd *StructDefinition) Pos() int             { return sd.Token.Position }
func (sd *StructDefinition) statementNode()       {}
func (sd *StructDefinition) TokenLiteral() string { return sd.Token.Literal }
func (sd *StructDefinition) String() string {
	var out bytes.Buffer

	out.WriteString("struct ")
	out.WriteString(sd.Name)
	out.WriteString(" {")
	for _, f := range sd.Fields {
		out.WriteString(" ")
		out.WriteString(f.String())
		out.WriteString(";")
	}
	out.WriteString(" }")

	return out.String()
}

type Parameter = Field

type FunctionDefinition struct {
	Token      token.Token // the token.FUNCTION token
	Name       string
	Parameters []*Parameter
	ReturnType TypeName
	Body       *Block
}

func (fd *FunctionDefinition) Kind() Kind           { return FunctionDefNode }
func (fd *FunctionDefinition) Pos() int             { return fd.Token.Position }
func (fd *FunctionDefinition) statementNode()       {}
func (fd *FunctionDefinition) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDefinition) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fd.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("func ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	annotate(&out, fd.ReturnType)
	out.WriteString(" ")
	out.WriteString(fd.Body.String())

	return out.String()
}

type Block struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (b *Block) Kind() Kind           { return BlockNode }
func (b *Block) Pos() int             { return b.Token.Position }
func (b *Block) statementNode()       {}
func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) String() string {
	var out bytes.Buffer

	out.WriteString("{")
	for _, s := range b.Statements {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(" }")

	return out.String()
}

type VarStatement struct {
	Token token.Token // the token.VAR token
	Name  string
	Type  TypeName
}

func (vs *VarStatement) Kind() Kind           { return VarDefNode }
func (vs *VarStatement) Pos() int             { return vs.Token.Position }
func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Literal }
func (vs *VarStatement) String() string {
	var out bytes.Buffer
	out.WriteString("var ")
	out.WriteString(vs.Name)
	annotate(&out, vs.Type)
	out.WriteString(";")
	return out.String()
}

type AssignStatement struct {
	Token  token.Token // the = token
	Target *Variable
	Value  Expression
}

func (as *AssignStatement) Kind() Kind           { return AssignmentNode }
func (as *AssignStatement) Pos() int             { return as.Target.Pos() }
func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String() + ";"
}

type CallStatement struct {
	Call *CallExpression
}

func (cs *CallStatement) Kind() Kind           { return CallStatementNode }
func (cs *CallStatement) Pos() int             { return cs.Call.Pos() }
func (cs *CallStatement) statementNode()       {}
func (cs *CallStatement) TokenLiteral() string { return cs.Call.TokenLiteral() }
func (cs *CallStatement) String() string       { return cs.Call.String() + ";" }

type IfStatement struct {
	Token       token.Token // the token.IF token
	Condition   Expression
	Consequence *Block
	Alternative *Block
}

func (is *IfStatement) Kind() Kind           { return IfNode }
func (is *IfStatement) Pos() int             { return is.Token.Position }
func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())

	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}

	return out.String()
}

type ForStatement struct {
	Token     token.Token // the token.FOR token
	Init      Statement   // *AssignStatement or *VarStatement
	Condition Expression
	Update    *AssignStatement
	Body      *Block
}

func (fs *ForStatement) Kind() Kind           { return ForNode }
func (fs *ForStatement) Pos() int             { return fs.Token.Position }
func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	out.WriteString("for (")
	out.WriteString(strings.TrimSuffix(fs.Init.String(), ";"))
	out.WriteString("; ")
	out.WriteString(fs.Condition.String())
	out.WriteString("; ")
	out.WriteString(strings.TrimSuffix(fs.Update.String(), ";"))
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) Kind() Kind           { return ReturnNode }
func (rs *ReturnStatement) Pos() int             { return rs.Token.Position }
func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}

type RaiseStatement struct {
	Token     token.Token // the 'raise' token
	Exception Expression
}

func (rs *RaiseStatement) Kind() Kind           { return RaiseNode }
func (rs *RaiseStatement) Pos() int             { return rs.Token.Position }
func (rs *RaiseStatement) statementNode()       {}
func (rs *RaiseStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RaiseStatement) String() string {
	return "raise " + rs.Exception.String() + ";"
}

type CatchClause struct {
	Token token.Token // the 'catch' token
	Tag   string
	Body  *Block
}

func (cc *CatchClause) Kind() Kind           { return CatchClauseNode }
func (cc *CatchClause) Pos() int             { return cc.Token.Position }
func (cc *CatchClause) TokenLiteral() string { return cc.Token.Literal }
func (cc *CatchClause) String() string {
	return "catch " + strconv.Quote(cc.Tag) + " " + cc.Body.String()
}

type TryStatement struct {
	Token    token.Token // the 'try' token
	Body     *Block
	Catchers []*CatchClause
}

func (ts *TryStatement) Kind() Kind           { return TryNode }
func (ts *TryStatement) Pos() int             { return ts.Token.Position }
func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string {
	var out bytes.Buffer

	out.WriteString("try ")
	out.WriteString(ts.Body.String())
	for _, c := range ts.Catchers {
		out.WriteString(" ")
		out.WriteString(c.String())
	}

	return out.String()
}

type CallExpression struct {
	Token     token.Token // the function name
	Name      string
	Arguments []Expression
}

func (ce *CallExpression) Kind() Kind           { return CallNode }
func (ce *CallExpression) Pos() int             { return ce.Token.Position }
func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	return ce.Name + "(" + strings.Join(args, ", ") + ")"
}

type NewExpression struct {
	Token    token.Token // the 'new' token
	TypeName string
}

func (ne *NewExpression) Kind() Kind           { return NewNode }
func (ne *NewExpression) Pos() int             { return ne.Token.Position }
func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) String() string       { return "new " + ne.TypeName }

// Variable is a plain name or a dotted struct field path such as a.b.c.
type Variable struct {
	Token token.Token // the first identifier
	Path  []string
}

func (v *Variable) Kind() Kind           { return VariableNode }
func (v *Variable) Pos() int             { return v.Token.Position }
func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Literal }
func (v *Variable) String() string       { return strings.Join(v.Path, ".") }
func (v *Variable) Name() string         { return v.Path[0] }
func (v *Variable) IsFieldPath() bool    { return len(v.Path) > 1 }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) Kind() Kind           { return IntLiteralNode }
func (il *IntegerLiteral) Pos() int             { return il.Token.Position }
func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) Kind() Kind           { return StringLiteralNode }
func (sl *StringLiteral) Pos() int             { return sl.Token.Position }
func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) Kind() Kind           { return BoolLiteralNode }
func (b *Boolean) Pos() int             { return b.Token.Position }
func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string       { return b.Token.Literal }

type Nil struct {
	Token token.Token
}

func (n *Nil) Kind() Kind           { return NilLiteralNode }
func (n *Nil) Pos() int             { return n.Token.Position }
func (n *Nil) expressionNode()      {}
func (n *Nil) TokenLiteral() string { return n.Token.Literal }
func (n *Nil) String() string       { return n.Token.Literal }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. ! or -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) Kind() Kind {
	if pe.Operator == "!" {
		return NotNode
	}
	return NegNode
}
func (pe *PrefixExpression) Pos() int             { return pe.Token.Position }
func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) Kind() Kind           { return BinaryNode }
func (ie *InfixExpression) Pos() int             { return ie.Token.Position }
func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}
