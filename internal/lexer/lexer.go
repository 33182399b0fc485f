// Package lexer turns yukr source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"

	"github.com/yukr-lang/yukr/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	input    string
	position int  // current character position
	next     int  // next character position
	ch       byte // current character
	line     int
	column   int
	file     string
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input, column: -1}
	l.readChar()
	return l
}

// SetFilename sets the filename recorded in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.file = filename
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = -1
	}
	if l.next >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.next]
	}
	l.position = l.next
	l.next++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.next >= len(l.input) {
		return 0
	}
	return l.input[l.next]
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:   l.position,
		Line:   l.line,
		Column: l.column,
		File:   l.file,
	}
}

// Next returns the next token. At the end of the input it returns EOF
// tokens indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	pos := l.pos()
	newToken := func(t token.Type, literal string) token.Token {
		return token.Token{Type: t, Literal: literal, Position: pos}
	}
	var tok token.Token
	switch l.ch {
	case 0:
		if l.position < len(l.input) {
			return newToken(token.ILLEGAL, "\x00"), fmt.Errorf("unexpected NUL byte at %s", pos)
		}
		return newToken(token.EOF, ""), nil
	case '=':
		tok = newToken(token.ASSIGN, "=")
	case '+':
		tok = newToken(token.PLUS, "+")
	case '-':
		tok = newToken(token.MINUS, "-")
	case '*':
		tok = newToken(token.ASTERISK, "*")
	case '/':
		tok = newToken(token.SLASH, "/")
	case '(':
		tok = newToken(token.LPAREN, "(")
	case ')':
		tok = newToken(token.RPAREN, ")")
	case '{':
		tok = newToken(token.LBRACE, "{")
	case '}':
		tok = newToken(token.RBRACE, "}")
	case ',':
		tok = newToken(token.COMMA, ",")
	case ';':
		tok = newToken(token.SEMICOLON, ";")
	case '"':
		s, err := l.readString()
		if err != nil {
			return newToken(token.ILLEGAL, s), err
		}
		return newToken(token.STRING, s), nil
	default:
		if isDigit(l.ch) {
			return newToken(token.NUMBER, l.readNumber()), nil
		}
		if isIdentStart(l.ch) {
			ident := l.readIdentifier()
			return newToken(token.LookupIdentifier(ident), ident), nil
		}
		ch := l.ch
		l.readChar()
		return newToken(token.ILLEGAL, string(ch)), fmt.Errorf("unexpected character %q at %s", ch, pos)
	}
	l.readChar()
	return tok, nil
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readString() (string, error) {
	pos := l.pos()
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			if l.position >= len(l.input) {
				return out.String(), fmt.Errorf("unterminated string literal at %s", pos)
			}
			out.WriteByte(l.ch)
		case '"':
			l.readChar()
			return out.String(), nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case '\\':
				out.WriteByte('\\')
			case '"':
				out.WriteByte('"')
			default:
				return out.String(), fmt.Errorf("invalid escape sequence \\%c at %s", l.ch, pos)
			}
		default:
			out.WriteByte(l.ch)
		}
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}
