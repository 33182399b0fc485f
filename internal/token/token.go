// Package token defines language keywords and tokens used when lexing source code.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char   int    // byte offset within the file
	Line   int    // 0-indexed line number
	Column int    // 0-indexed column number
	File   string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// String formats the position as file:line:column using 1-indexed numbers.
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
}

// Token represents one token lexed from the input source code.
type Token struct {
	Type     Type
	Literal  string
	Position Position
}

// Token types
const (
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	CLASS     Type = "CLASS"
	COMMA     Type = ","
	EOF       Type = "EOF"
	FALSE     Type = "FALSE"
	FUN       Type = "FUN"
	IDENT     Type = "IDENT"
	ILLEGAL   Type = "ILLEGAL"
	LBRACE    Type = "{"
	LPAREN    Type = "("
	MINUS     Type = "-"
	NIL       Type = "NIL"
	NUMBER    Type = "NUMBER"
	PLUS      Type = "+"
	PRINT     Type = "PRINT"
	RBRACE    Type = "}"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	STRING    Type = "STRING"
	TRUE      Type = "TRUE"
	VAR       Type = "VAR"
)

// Reserved keywords
var keywords = map[string]Type{
	"class": CLASS,
	"false": FALSE,
	"fun":   FUN,
	"nil":   NIL,
	"print": PRINT,
	"true":  TRUE,
	"var":   VAR,
}

// LookupIdentifier used to determinate whether identifier is keyword nor not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}
