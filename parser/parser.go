// Package parser is used to generate the abstract syntax tree (AST) for a program.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST.
package parser

import (
	"fmt"
	"strconv"

	"github.com/yukr-lang/yukr/ast"
	"github.com/yukr-lang/yukr/internal/lexer"
	"github.com/yukr-lang/yukr/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parse the provided input as yukr source code and return the AST. This is
// shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(input string, options ...Option) (*ast.Program, error) {
	var opts Parser
	for _, opt := range options {
		opt(&opts)
	}
	l := lexer.New(input)
	if opts.filename != "" {
		l.SetFilename(opts.filename)
	}
	return New(l, options...).Parse()
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in error positions.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parser object
type Parser struct {
	// l is our lexer
	l *lexer.Lexer

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []error

	// stmtErrorCount tracks error count at start of current statement.
	stmtErrorCount int

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	filename string
	depth    int
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}

	// Prime the token pump
	p.nextToken()
	p.nextToken()

	p.registerPrefix(token.FALSE, p.parseBool)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.LPAREN, p.parseGrouping)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.TRUE, p.parseBool)

	p.registerInfix(token.ASTERISK, p.parseBinary)
	p.registerInfix(token.MINUS, p.parseBinary)
	p.registerInfix(token.PLUS, p.parseBinary)
	p.registerInfix(token.SLASH, p.parseBinary)
	return p
}

func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken moves to the next token from the lexer. Lexer failures are
// recorded as syntax errors; the offending token arrives as ILLEGAL.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	var err error
	p.peekToken, err = p.l.Next()
	if err != nil {
		p.errors = append(p.errors, &Error{
			Type:     "syntax error",
			Message:  err.Error(),
			Position: p.peekToken.Position,
			Cause:    err,
		})
	}
}

// Parse the program that is provided via the lexer. If there are errors,
// the returned AST holds only the statements that parsed cleanly and the
// error aggregates every problem found, up to MaxErrors.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		if len(p.errors) >= MaxErrors {
			break
		}
		p.stmtErrorCount = len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil && !p.hadNewError() {
			program.Stmts = append(program.Stmts, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}
	if len(p.errors) > 0 {
		return program, newErrors(p.errors...)
	}
	return program, nil
}

func (p *Parser) hadNewError() bool {
	return len(p.errors) > p.stmtErrorCount
}

// synchronize skips tokens until the current token ends a statement, so
// parsing can resume with the token after it.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.RBRACE) {
			return
		}
		switch p.peekToken.Type {
		case token.VAR, token.PRINT, token.CLASS, token.FUN, token.EOF:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, &Error{
		Type:     "parse error",
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	})
}

func describe(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of input"
	case token.STRING:
		return "string"
	default:
		return fmt.Sprintf("%q", t.Literal)
	}
}

// expectPeek advances if the next token has the expected type, otherwise it
// records an error and leaves the position unchanged.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(token.ILLEGAL) {
		// already reported by the lexer
		return false
	}
	p.errorf(p.peekToken.Position, "unexpected %s while parsing %s (expected %q)",
		describe(p.peekToken), context, string(t))
	return false
}

func (p *Parser) enter() bool {
	if p.depth >= p.maxDepth {
		p.errorf(p.curToken.Position, "maximum nesting depth of %d exceeded", p.maxDepth)
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.PRINT:
		return p.parsePrint()
	case token.VAR:
		return p.parseVar()
	case token.CLASS:
		return p.parseClass()
	case token.FUN:
		return p.parseFun()
	case token.LBRACE:
		return p.parseBlock()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssign()
		}
	}
	return p.parseExprStmt()
}

func (p *Parser) parsePrint() ast.Stmt {
	stmt := &ast.Print{Print: p.curToken.Position}
	p.nextToken()
	stmt.Value = p.parseExpr(LOWEST)
	if stmt.Value == nil || !p.expectPeek("print statement", token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseVar() ast.Stmt {
	stmt := &ast.Var{Var: p.curToken.Position}
	if !p.expectPeek("var statement", token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Ident{NamePos: p.curToken.Position, Name: p.curToken.Literal}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpr(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}
	if !p.expectPeek("var statement", token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssign() ast.Stmt {
	stmt := &ast.Assign{Name: &ast.Ident{NamePos: p.curToken.Position, Name: p.curToken.Literal}}
	p.nextToken() // =
	p.nextToken()
	stmt.Value = p.parseExpr(LOWEST)
	if stmt.Value == nil || !p.expectPeek("assignment", token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExprStmt() ast.Stmt {
	x := p.parseExpr(LOWEST)
	if x == nil || !p.expectPeek("expression statement", token.SEMICOLON) {
		return nil
	}
	return &ast.ExprStmt{X: x}
}

// parseBlock parses a braced statement list. On return curToken is the
// closing brace.
func (p *Parser) parseBlock() *ast.Block {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	block := &ast.Block{Lbrace: p.curToken.Position}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken.Position, "unterminated block (expected %q)", "}")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Stmts = append(block.Stmts, stmt)
		p.nextToken()
	}
	block.Rbrace = p.curToken.Position
	return block
}

func (p *Parser) parseClass() ast.Stmt {
	stmt := &ast.ClassDecl{Class: p.curToken.Position}
	if !p.expectPeek("class declaration", token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Ident{NamePos: p.curToken.Position, Name: p.curToken.Literal}
	if !p.expectPeek("class declaration", token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlock(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFun() ast.Stmt {
	stmt := &ast.FunDecl{Fun: p.curToken.Position}
	if !p.expectPeek("function declaration", token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Ident{NamePos: p.curToken.Position, Name: p.curToken.Literal}
	if !p.expectPeek("function declaration", token.LPAREN) {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		for {
			if !p.expectPeek("function parameters", token.IDENT) {
				return nil
			}
			stmt.Params = append(stmt.Params, &ast.Ident{
				NamePos: p.curToken.Position,
				Name:    p.curToken.Literal,
			})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if !p.expectPeek("function parameters", token.RPAREN) {
		return nil
	}
	if !p.expectPeek("function declaration", token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlock(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseExpr parses an expression starting at curToken. On return curToken
// is the last token of the expression.
func (p *Parser) parseExpr(precedence int) ast.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		if !p.curTokenIs(token.ILLEGAL) {
			p.errorf(p.curToken.Position, "invalid syntax (unexpected %s)", describe(p.curToken))
		}
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		if left = infix(left); left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseNumber() ast.Expr {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken.Position, "invalid number literal %q", p.curToken.Literal)
		return nil
	}
	return &ast.Number{ValuePos: p.curToken.Position, Literal: p.curToken.Literal, Value: value}
}

func (p *Parser) parseString() ast.Expr {
	return &ast.String{ValuePos: p.curToken.Position, Value: p.curToken.Literal}
}

func (p *Parser) parseBool() ast.Expr {
	return &ast.Bool{ValuePos: p.curToken.Position, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNil() ast.Expr {
	return &ast.Nil{NilPos: p.curToken.Position}
}

func (p *Parser) parseIdent() ast.Expr {
	return &ast.Ident{NamePos: p.curToken.Position, Name: p.curToken.Literal}
}

func (p *Parser) parseGrouping() ast.Expr {
	group := &ast.Grouping{Lparen: p.curToken.Position}
	p.nextToken()
	if group.X = p.parseExpr(LOWEST); group.X == nil {
		return nil
	}
	if !p.expectPeek("grouped expression", token.RPAREN) {
		return nil
	}
	return group
}

func (p *Parser) parseUnary() ast.Expr {
	expr := &ast.Unary{OpPos: p.curToken.Position, Op: p.curToken.Literal}
	p.nextToken()
	if expr.X = p.parseExpr(PREFIX); expr.X == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	expr := &ast.Binary{X: left, OpPos: p.curToken.Position, Op: p.curToken.Literal}
	precedence := p.curPrecedence()
	p.nextToken()
	if expr.Y = p.parseExpr(precedence); expr.Y == nil {
		return nil
	}
	return expr
}
