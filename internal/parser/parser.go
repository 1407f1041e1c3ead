package parser

import (
	"brewin/internal/ast"
	"brewin/internal/lexer"
	"brewin/internal/token"
	"brewin/internal/util"
	"fmt"
	"strconv"
	"strings"
)

const (
	_           int = iota
	LOWEST          // lowest
	LOGICAL_OR      // ||
	LOGICAL_AND     // &&
	COMPARISON      // == != < <= > >=
	SUM             // + -
	PRODUCT         // * /
	PREFIX          // -X or !X
)

var precedences = map[token.TokenType]int{
	token.LOGICAL_OR:  LOGICAL_OR,
	token.LOGICAL_AND: LOGICAL_AND,
	token.EQ:          COMPARISON,
	token.NOT_EQ:      COMPARISON,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.SLASH:       PRODUCT,
	token.ASTERISK:    PRODUCT,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Error is a lex or parse error anchored to a source position.
type Error struct {
	Pos     int
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s", e.Line, e.Column, e.Message)
}

// ErrorList collects every error found while parsing one source.
type ErrorList []*Error

func (el ErrorList) Error() string {
	msgs := make([]string, len(el))
	for i, e := range el {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

type Parser struct {
	l      *lexer.Lexer
	src    string // source code here
	errors ErrorList

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{
		l:      l,
		src:    source,
		errors: ErrorList{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.NEW, p.parseNewExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range precedences {
		p.registerInfix(tt, p.parseInfixExpression)
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse lexes and parses a whole program, returning an ErrorList when the
// source is malformed.
func Parse(source string) (*ast.Program, error) {
	p := New(lexer.New(source), source)
	program := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return program, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) errorAt(pos int, message string, args ...interface{}) {
	line, col := util.GetLineAndColumn(p.src, pos)
	p.errors = append(p.errors, &Error{
		Pos:     pos,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(message, args...),
	})
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.errorAt(p.curToken.Position, message, args...)
}

func (p *Parser) peekError(t token.TokenType) {
	if p.peekTokenIs(token.ILLEGAL) {
		p.illegalError(p.peekToken)
		return
	}
	p.errorAt(p.peekToken.Position, "expected next token to be %q, got %s instead", string(t), describe(p.peekToken))
}

func (p *Parser) illegalError(tok token.Token) {
	switch {
	case tok.Literal == "/*":
		p.errorAt(tok.Position, "unterminated block comment")
	case strings.HasPrefix(tok.Literal, `"`):
		p.errorAt(tok.Position, "unterminated string literal")
	default:
		p.errorAt(tok.Position, "illegal character %q", tok.Literal)
	}
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.illegalError(tok)
		return
	}
	p.addError("no prefix parse function for %s found", describe(tok))
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	if string(tok.Type) == tok.Literal {
		return fmt.Sprintf("%q", tok.Literal)
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
}

func (p *Parser) Errors() ErrorList {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{
		Structs:   []*ast.StructDefinition{},
		Functions: []*ast.FunctionDefinition{},
	}

	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.STRUCT:
			if sd := p.parseStructDefinition(); sd != nil {
				program.Structs = append(program.Structs, sd)
			}
		case token.FUNCTION:
			if fd := p.parseFunctionDefinition(); fd != nil {
				program.Functions = append(program.Functions, fd)
			}
		case token.ILLEGAL:
			p.illegalError(p.curToken)
		default:
			p.addError("expected func or struct, got %s", describe(p.curToken))
		}
		if len(p.errors) > 0 {
			p.synchronize()
			continue
		}
		p.nextToken()
	}

	return program
}

// synchronize skips ahead to the next top level declaration after an error.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.STRUCT) && !p.curTokenIs(token.FUNCTION) {
		p.nextToken()
	}
}

func (p *Parser) parseType() (ast.TypeName, bool) {
	if !p.expectPeek(token.IDENT) {
		return ast.Untyped, false
	}
	return ast.TypeName(p.curToken.Literal), true
}

// parseOptionalType reads `: type` when present.
func (p *Parser) parseOptionalType() (ast.TypeName, bool) {
	if !p.peekTokenIs(token.COLON) {
		return ast.Untyped, true
	}
	p.nextToken()
	return p.parseType()
}

func (p *Parser) parseStructDefinition() *ast.StructDefinition {
	sd := &ast.StructDefinition{Token: p.curToken, Fields: []*ast.Field{}}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	sd.Name = p.curToken.Literal

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.Field{Token: p.curToken, Name: p.curToken.Literal}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		t, ok := p.parseType()
		if !ok {
			return nil
		}
		field.Type = t
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		sd.Fields = append(sd.Fields, field)
	}
	p.nextToken()

	return sd
}

func (p *Parser) parseFunctionDefinition() *ast.FunctionDefinition {
	fd := &ast.FunctionDefinition{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fd.Name = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fd.Parameters = params

	rt, ok := p.parseOptionalType()
	if !ok {
		return nil
	}
	fd.ReturnType = rt

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fd.Body = p.parseBlock()
	if fd.Body == nil {
		return nil
	}

	return fd
}

func (p *Parser) parseFunctionParameters() ([]*ast.Parameter, bool) {
	params := []*ast.Parameter{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		param := &ast.Parameter{Token: p.curToken, Name: p.curToken.Literal}
		t, ok := p.parseOptionalType()
		if !ok {
			return nil, false
		}
		param.Type = t
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return params, true
}

// parseBlock expects curToken on `{` and leaves it on the matching `}`.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken, Statements: []ast.Statement{}}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError("expected } to close block, got end of input")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

func (p *Parser) parseStatement() ast.Statement {
	var stmt ast.Statement

	switch p.curToken.Type {
	case token.VAR:
		if s := p.parseVarStatement(); s != nil {
			stmt = s
		}
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			if s := p.parseCallStatement(); s != nil {
				stmt = s
			}
			break
		}
		if s := p.parseAssignment(); s != nil && p.expectPeek(token.SEMICOLON) {
			stmt = s
		}
	case token.IF:
		if s := p.parseIfStatement(); s != nil {
			stmt = s
		}
	case token.FOR:
		if s := p.parseForStatement(); s != nil {
			stmt = s
		}
	case token.RETURN:
		if s := p.parseReturnStatement(); s != nil {
			stmt = s
		}
	case token.RAISE:
		if s := p.parseRaiseStatement(); s != nil {
			stmt = s
		}
	case token.TRY:
		if s := p.parseTryStatement(); s != nil {
			stmt = s
		}
	case token.ILLEGAL:
		p.illegalError(p.curToken)
	default:
		p.addError("unexpected %s at start of statement", describe(p.curToken))
	}

	return stmt
}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	t, ok := p.parseOptionalType()
	if !ok {
		return nil
	}
	stmt.Type = t

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return stmt
}

func (p *Parser) parseCallStatement() *ast.CallStatement {
	call := p.parseCallExpression()
	if call == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.CallStatement{Call: call}
}

// parseAssignment parses `path = expr` without the trailing semicolon.
func (p *Parser) parseAssignment() *ast.AssignStatement {
	target := p.parseVariable()
	if target == nil {
		return nil
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	stmt := &ast.AssignStatement{Token: p.curToken, Target: target}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlock()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()

		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Alternative = p.parseBlock()
		if stmt.Alternative == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	switch p.curToken.Type {
	case token.VAR:
		init := p.parseVarStatement()
		if init == nil {
			return nil
		}
		stmt.Init = init
	case token.IDENT:
		init := p.parseAssignment()
		if init == nil || !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		stmt.Init = init
	default:
		p.addError("expected for loop initializer, got %s", describe(p.curToken))
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Update = p.parseAssignment()
	if stmt.Update == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return stmt
}

func (p *Parser) parseRaiseStatement() *ast.RaiseStatement {
	stmt := &ast.RaiseStatement{Token: p.curToken}

	p.nextToken()
	stmt.Exception = p.parseExpression(LOWEST)
	if stmt.Exception == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{Token: p.curToken, Catchers: []*ast.CatchClause{}}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}

	for p.peekTokenIs(token.CATCH) {
		p.nextToken()
		clause := &ast.CatchClause{Token: p.curToken}

		if !p.expectPeek(token.STRING) {
			return nil
		}
		clause.Tag = p.curToken.Literal

		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		clause.Body = p.parseBlock()
		if clause.Body == nil {
			return nil
		}
		stmt.Catchers = append(stmt.Catchers, clause)
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(token.LPAREN) {
		if call := p.parseCallExpression(); call != nil {
			return call
		}
		return nil
	}
	if v := p.parseVariable(); v != nil {
		return v
	}
	return nil
}

// parseVariable reads a name or dotted field path starting at curToken.
func (p *Parser) parseVariable() *ast.Variable {
	v := &ast.Variable{Token: p.curToken, Path: []string{p.curToken.Literal}}

	for p.peekTokenIs(token.PERIOD) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		v.Path = append(v.Path, p.curToken.Literal)
	}

	return v
}

func (p *Parser) parseCallExpression() *ast.CallExpression {
	call := &ast.CallExpression{Token: p.curToken, Name: p.curToken.Literal}
	p.nextToken() // onto (

	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args

	return call
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil, false
	}
	list = append(list, first)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil, false
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.Nil{Token: p.curToken}
}

func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.NewExpression{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.TypeName = p.curToken.Literal
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
