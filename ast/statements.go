package ast

import (
	"strings"

	"github.com/yukr-lang/yukr/internal/token"
)

// Print writes the value of an expression to the program output.
type Print struct {
	Print token.Position // position of "print" keyword
	Value Expr
}

func (s *Print) stmtNode() {}

func (s *Print) Pos() token.Position { return s.Print }

func (s *Print) String() string { return "print " + s.Value.String() + ";" }

// Var declares a local variable with an optional initializer.
type Var struct {
	Var   token.Position // position of "var" keyword
	Name  *Ident
	Value Expr // nil when declared without an initializer
}

func (s *Var) stmtNode() {}

func (s *Var) Pos() token.Position { return s.Var }

func (s *Var) String() string {
	if s.Value == nil {
		return "var " + s.Name.Name + ";"
	}
	return "var " + s.Name.Name + " = " + s.Value.String() + ";"
}

// Assign stores a new value into an existing variable.
type Assign struct {
	Name  *Ident
	Value Expr
}

func (s *Assign) stmtNode() {}

func (s *Assign) Pos() token.Position { return s.Name.Pos() }

func (s *Assign) String() string { return s.Name.Name + " = " + s.Value.String() + ";" }

// ExprStmt is an expression evaluated for its value.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }

func (s *ExprStmt) String() string { return s.X.String() + ";" }

// Block is a braced list of statements that opens a new scope.
type Block struct {
	Lbrace token.Position
	Stmts  []Stmt
	Rbrace token.Position
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }

func (s *Block) String() string {
	var out strings.Builder
	out.WriteString("{")
	for _, stmt := range s.Stmts {
		out.WriteString(" ")
		out.WriteString(stmt.String())
	}
	out.WriteString(" }")
	return out.String()
}

// ClassDecl declares a class by name.
type ClassDecl struct {
	Class token.Position // position of "class" keyword
	Name  *Ident
	Body  *Block
}

func (s *ClassDecl) stmtNode() {}

func (s *ClassDecl) Pos() token.Position { return s.Class }

func (s *ClassDecl) String() string { return "class " + s.Name.Name + " " + s.Body.String() }

// FunDecl declares a function by name.
type FunDecl struct {
	Fun    token.Position // position of "fun" keyword
	Name   *Ident
	Params []*Ident
	Body   *Block
}

func (s *FunDecl) stmtNode() {}

func (s *FunDecl) Pos() token.Position { return s.Fun }

func (s *FunDecl) String() string {
	params := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, p.Name)
	}
	return "fun " + s.Name.Name + "(" + strings.Join(params, ", ") + ") " + s.Body.String()
}
