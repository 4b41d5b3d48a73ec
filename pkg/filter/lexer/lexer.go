// Package lexer turns a filter expression string into a stream of tokens.
package lexer

import "fmt"

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // status, url, isGraphQL, ...
	INT    // 200
	FLOAT  // 1.5
	STRING // "POST"
	REGEX  // /pattern/flags

	// Operators
	EQ     // ==
	NOT_EQ // !=
	LT     // <
	GT     // >
	LTE    // <=
	GTE    // >=
	AND    // &&
	OR     // ||
	BANG   // !

	// Delimiters
	DOT    // .
	COMMA  // ,
	LPAREN // (
	RPAREN // )

	// Keywords
	TRUE  // true
	FALSE // false
)

// Token represents a single token. Column is 1-based. Flags is only set
// for REGEX tokens (the trailing letters after the closing slash).
type Token struct {
	Type    TokenType
	Literal string
	Column  int
	Flags   string
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Column: %d}", t.Type.String(), t.Literal, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case REGEX:
		return "REGEX"
	case EQ:
		return "EQ"
	case NOT_EQ:
		return "NOT_EQ"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LTE:
		return "LTE"
	case GTE:
		return "GTE"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case BANG:
		return "BANG"
	case DOT:
		return "DOT"
	case COMMA:
		return "COMMA"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Keywords map for identifying language keywords
var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input         string
	position      int       // current position in input (points to current char)
	readPosition  int       // current reading position in input (after current char)
	ch            byte      // current char under examination
	column        int       // current 1-based column number
	lastTokenType TokenType // last token type for regex context detection
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{input: input, lastTokenType: ILLEGAL}
	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL represents EOF
		l.position = l.readPosition
	} else {
		l.ch = l.input[l.readPosition]
		l.position = l.readPosition
		l.readPosition++
	}
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			col := l.column
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Column: col}
		} else {
			tok = l.illegal("unexpected character '='; did you mean '=='?")
		}
	case '!':
		if l.peekChar() == '=' {
			col := l.column
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!=", Column: col}
		} else {
			tok = newToken(BANG, l.ch, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			col := l.column
			l.readChar()
			tok = Token{Type: LTE, Literal: "<=", Column: col}
		} else {
			tok = newToken(LT, l.ch, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			col := l.column
			l.readChar()
			tok = Token{Type: GTE, Literal: ">=", Column: col}
		} else {
			tok = newToken(GT, l.ch, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			col := l.column
			l.readChar()
			tok = Token{Type: AND, Literal: "&&", Column: col}
		} else {
			tok = l.illegal("unexpected character '&'; did you mean '&&'?")
		}
	case '|':
		if l.peekChar() == '|' {
			col := l.column
			l.readChar()
			tok = Token{Type: OR, Literal: "||", Column: col}
		} else {
			tok = l.illegal("unexpected character '|'; did you mean '||'?")
		}
	case '.':
		tok = newToken(DOT, l.ch, l.column)
	case ',':
		tok = newToken(COMMA, l.ch, l.column)
	case '(':
		tok = newToken(LPAREN, l.ch, l.column)
	case ')':
		tok = newToken(RPAREN, l.ch, l.column)
	case '"':
		tok = l.readString()
	case '/':
		if l.regexAllowed() {
			tok = l.readRegex()
		} else {
			tok = l.illegal("unexpected character '/'")
		}
	case 0:
		tok = Token{Type: EOF, Literal: "", Column: l.column}
	default:
		switch {
		case isLetter(l.ch):
			tok.Column = l.column
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			l.lastTokenType = tok.Type
			return tok
		case isDigit(l.ch):
			tok = l.readNumber()
			l.lastTokenType = tok.Type
			return tok
		default:
			tok = l.illegal(fmt.Sprintf("unexpected character %q", string(l.ch)))
		}
	}

	l.readChar()
	l.lastTokenType = tok.Type
	return tok
}

// regexAllowed reports whether a '/' at the current position can start a
// regex literal. Regexes only appear in prefix position: at the start of
// the input, after an opening paren or comma, or after an operator.
func (l *Lexer) regexAllowed() bool {
	switch l.lastTokenType {
	case ILLEGAL, LPAREN, COMMA, EQ, NOT_EQ, LT, GT, LTE, GTE, AND, OR, BANG:
		return true
	}
	return false
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() Token {
	col := l.column
	start := l.position
	typ := INT
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return Token{Type: typ, Literal: l.input[start:l.position], Column: col}
}

// readString reads a double-quoted string literal, handling standard
// escapes. The returned token's Literal holds the unescaped value.
func (l *Lexer) readString() Token {
	col := l.column
	var out []byte
	for {
		l.readChar()
		switch l.ch {
		case '"':
			return Token{Type: STRING, Literal: string(out), Column: col}
		case 0:
			return Token{Type: ILLEGAL, Literal: "unterminated string", Column: col}
		case '\\':
			l.readChar()
			switch l.ch {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '/':
				out = append(out, '/')
			case 0:
				return Token{Type: ILLEGAL, Literal: "unterminated string", Column: col}
			default:
				return Token{Type: ILLEGAL, Literal: fmt.Sprintf("invalid escape \\%s in string", string(l.ch)), Column: col}
			}
		default:
			out = append(out, l.ch)
		}
	}
}

// readRegex reads a /pattern/flags literal. The Literal holds the raw
// pattern (with \/ unescaped to /); Flags holds the trailing letters.
func (l *Lexer) readRegex() Token {
	col := l.column
	var pattern []byte
	for {
		l.readChar()
		switch l.ch {
		case '/':
			flags := l.readRegexFlags()
			return Token{Type: REGEX, Literal: string(pattern), Column: col, Flags: flags}
		case 0:
			return Token{Type: ILLEGAL, Literal: "unterminated regex", Column: col}
		case '\\':
			if l.peekChar() == '/' {
				l.readChar()
				pattern = append(pattern, '/')
			} else {
				// Leave other escapes for the regexp engine.
				pattern = append(pattern, '\\')
				l.readChar()
				if l.ch == 0 {
					return Token{Type: ILLEGAL, Literal: "unterminated regex", Column: col}
				}
				pattern = append(pattern, l.ch)
			}
		default:
			pattern = append(pattern, l.ch)
		}
	}
}

// readRegexFlags consumes flag letters after the closing slash. Called
// with l.ch on the closing '/'; returns with l.ch on the last flag letter
// so NextToken's readChar moves past it.
func (l *Lexer) readRegexFlags() string {
	start := l.readPosition
	for isLetter(l.peekChar()) {
		l.readChar()
	}
	return l.input[start:l.readPosition]
}

func (l *Lexer) illegal(reason string) Token {
	return Token{Type: ILLEGAL, Literal: reason, Column: l.column}
}

func newToken(tokenType TokenType, ch byte, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Column: column}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
