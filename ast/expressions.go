package ast

import (
	"strconv"

	"github.com/yukr-lang/yukr/internal/token"
)

// Number is a numeric literal.
type Number struct {
	ValuePos token.Position
	Literal  string
	Value    float64
}

func (x *Number) exprNode() {}

func (x *Number) Pos() token.Position { return x.ValuePos }

func (x *Number) String() string { return x.Literal }

// String is a string literal. Value holds the text with escapes resolved.
type String struct {
	ValuePos token.Position
	Value    string
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }

func (x *String) String() string { return strconv.Quote(x.Value) }

// Bool is a true or false literal.
type Bool struct {
	ValuePos token.Position
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }

func (x *Bool) String() string { return strconv.FormatBool(x.Value) }

// Nil is the nil literal.
type Nil struct {
	NilPos token.Position
}

func (x *Nil) exprNode() {}

func (x *Nil) Pos() token.Position { return x.NilPos }

func (x *Nil) String() string { return "nil" }

// Ident is a reference to a variable.
type Ident struct {
	NamePos token.Position
	Name    string
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }

func (x *Ident) String() string { return x.Name }

// Binary is an infix arithmetic expression such as "x + y".
type Binary struct {
	X     Expr
	OpPos token.Position
	Op    string
	Y     Expr
}

func (x *Binary) exprNode() {}

func (x *Binary) Pos() token.Position { return x.X.Pos() }

func (x *Binary) String() string {
	return "(" + x.X.String() + " " + x.Op + " " + x.Y.String() + ")"
}

// Unary is a prefix expression such as "-x".
type Unary struct {
	OpPos token.Position
	Op    string
	X     Expr
}

func (x *Unary) exprNode() {}

func (x *Unary) Pos() token.Position { return x.OpPos }

func (x *Unary) String() string { return "(" + x.Op + x.X.String() + ")" }

// Grouping is a parenthesized expression.
type Grouping struct {
	Lparen token.Position
	X      Expr
}

func (x *Grouping) exprNode() {}

func (x *Grouping) Pos() token.Position { return x.Lparen }

func (x *Grouping) String() string { return x.X.String() }
