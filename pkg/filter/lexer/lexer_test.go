package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `status >= 400 && method == "POST" || !isGraphQL
url.contains("/api/") && path.matches(/^\/v[0-9]+\//i)
time > 1.5 != < <= (request.header("X-Id"), true false)`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "status"},
		{GTE, ">="},
		{INT, "400"},
		{AND, "&&"},
		{IDENT, "method"},
		{EQ, "=="},
		{STRING, "POST"},
		{OR, "||"},
		{BANG, "!"},
		{IDENT, "isGraphQL"},
		{IDENT, "url"},
		{DOT, "."},
		{IDENT, "contains"},
		{LPAREN, "("},
		{STRING, "/api/"},
		{RPAREN, ")"},
		{AND, "&&"},
		{IDENT, "path"},
		{DOT, "."},
		{IDENT, "matches"},
		{LPAREN, "("},
		{REGEX, `^/v[0-9]+/`},
		{RPAREN, ")"},
		{IDENT, "time"},
		{GT, ">"},
		{FLOAT, "1.5"},
		{NOT_EQ, "!="},
		{LT, "<"},
		{LTE, "<="},
		{LPAREN, "("},
		{IDENT, "request"},
		{DOT, "."},
		{IDENT, "header"},
		{LPAREN, "("},
		{STRING, "X-Id"},
		{RPAREN, ")"},
		{COMMA, ","},
		{TRUE, "true"},
		{FALSE, "false"},
		{RPAREN, ")"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestRegexFlags(t *testing.T) {
	l := New(`(/graphql/i)`)

	if tok := l.NextToken(); tok.Type != LPAREN {
		t.Fatalf("expected LPAREN, got %s", tok)
	}
	tok := l.NextToken()
	if tok.Type != REGEX {
		t.Fatalf("expected REGEX, got %s", tok)
	}
	if tok.Literal != "graphql" {
		t.Errorf("pattern wrong. expected=%q, got=%q", "graphql", tok.Literal)
	}
	if tok.Flags != "i" {
		t.Errorf("flags wrong. expected=%q, got=%q", "i", tok.Flags)
	}
	if tok := l.NextToken(); tok.Type != RPAREN {
		t.Fatalf("expected RPAREN, got %s", tok)
	}
}

func TestRegexOnlyInPrefixPosition(t *testing.T) {
	// After an identifier a slash cannot start a regex.
	l := New(`status /foo/`)

	if tok := l.NextToken(); tok.Type != IDENT {
		t.Fatalf("expected IDENT, got %s", tok)
	}
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok)
	}
	if tok.Literal != "unexpected character '/'" {
		t.Errorf("reason wrong. got=%q", tok.Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"plain"`, "plain"},
		{`"with \"quotes\""`, `with "quotes"`},
		{`"tab\there"`, "tab\there"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"back\\slash"`, `back\slash`},
		{`"slash\/ok"`, "slash/ok"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("input %q: expected STRING, got %s", tt.input, tok)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: expected=%q, got=%q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{`status = 200`, "unexpected character '='; did you mean '=='?"},
		{`a & b`, "unexpected character '&'; did you mean '&&'?"},
		{`a | b`, "unexpected character '|'; did you mean '||'?"},
		{`"unclosed`, "unterminated string"},
		{`(/unclosed`, "unterminated regex"},
		{`url @ 1`, `unexpected character "@"`},
	}

	for _, tt := range tests {
		l := New(tt.input)
		var tok Token
		for {
			tok = l.NextToken()
			if tok.Type == ILLEGAL || tok.Type == EOF {
				break
			}
		}
		if tok.Type != ILLEGAL {
			t.Fatalf("input %q: expected an ILLEGAL token, got EOF", tt.input)
		}
		if tok.Literal != tt.reason {
			t.Errorf("input %q: reason expected=%q, got=%q", tt.input, tt.reason, tok.Literal)
		}
	}
}

func TestTokenColumns(t *testing.T) {
	l := New(`status >= 400`)

	expected := []struct {
		typ TokenType
		col int
	}{
		{IDENT, 1},
		{GTE, 8},
		{INT, 11},
		{EOF, 14},
	}

	for i, tt := range expected {
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.typ, tok.Type)
		}
		if tok.Column != tt.col {
			t.Errorf("tests[%d] - column wrong. expected=%d, got=%d", i, tt.col, tok.Column)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		typ      TokenType
		expected string
	}{
		{"0", INT, "0"},
		{"200", INT, "200"},
		{"1.5", FLOAT, "1.5"},
		{"0.25", FLOAT, "0.25"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("input %q: expected %s, got %s", tt.input, tt.typ, tok)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: literal expected=%q, got=%q", tt.input, tt.expected, tok.Literal)
		}
	}
}
