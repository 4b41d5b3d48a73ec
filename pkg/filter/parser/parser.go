// Package parser builds filter expression ASTs from the token stream.
package parser

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sambeau/harq/pkg/filter/ast"
	ferrors "github.com/sambeau/harq/pkg/filter/errors"
	"github.com/sambeau/harq/pkg/filter/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	PREFIX      // !X
	CALL        // field.method(X)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.OR:     LOGIC_OR,
	lexer.AND:    LOGIC_AND,
	lexer.EQ:     EQUALS,
	lexer.NOT_EQ: EQUALS,
	lexer.LT:     LESSGREATER,
	lexer.GT:     LESSGREATER,
	lexer.LTE:    LESSGREATER,
	lexer.GTE:    LESSGREATER,
	lexer.DOT:    CALL,
	lexer.LPAREN: CALL,
}

// methodNames are the postfix string methods the grammar recognizes.
var methodNames = map[string]bool{
	"contains":   true,
	"startsWith": true,
	"endsWith":   true,
	"matches":    true,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	errors []*ferrors.FilterError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseFieldAccess)
	p.registerPrefix(lexer.INT, p.parseNumberLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.REGEX, p.parseMisplacedRegex)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LTE, p.parseInfixExpression)
	p.registerInfix(lexer.GTE, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseInfixExpression)
	p.registerInfix(lexer.OR, p.parseInfixExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)
	p.registerInfix(lexer.LPAREN, p.parseAccessorCall)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse consumes the whole token stream and returns the expression tree.
// Trailing tokens after a complete expression are a parse error.
func Parse(input string) (ast.Expression, error) {
	p := New(lexer.New(input))
	expr := p.parseExpression(LOWEST)
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if !p.peekTokenIs(lexer.EOF) {
		return nil, ferrors.NewParseError(p.peekToken.Column, "end of expression", describeToken(p.peekToken))
	}
	if expr == nil {
		return nil, ferrors.Parsef(p.curToken.Column, "empty expression")
	}
	return expr, nil
}

// Errors returns the accumulated parse errors.
func (p *Parser) Errors() []*ferrors.FilterError { return p.errors }

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == lexer.ILLEGAL {
		p.addErrorf(p.peekToken.Column, "%s", p.peekToken.Literal)
		p.peekToken = lexer.Token{Type: lexer.EOF, Column: p.peekToken.Column}
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errors = append(p.errors,
		ferrors.NewParseError(p.peekToken.Column, t.String(), describeToken(p.peekToken)))
}

func (p *Parser) addErrorf(column int, format string, args ...any) {
	p.errors = append(p.errors, ferrors.Parsef(column, format, args...))
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func describeToken(t lexer.Token) string {
	if t.Type == lexer.EOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.Literal)
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errors = append(p.errors,
			ferrors.NewParseError(p.curToken.Column, "expression", describeToken(p.curToken)))
		return nil
	}
	left := prefix()

	for left != nil && !p.peekTokenIs(lexer.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) parseFieldAccess() ast.Expression {
	return &ast.FieldAccess{Token: p.curToken, Path: []string{p.curToken.Literal}}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addErrorf(p.curToken.Column, "could not parse %q as a number", p.curToken.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

// parseMisplacedRegex reports regex literals outside .matches(...), which
// is the only place the grammar allows them.
func (p *Parser) parseMisplacedRegex() ast.Expression {
	p.addErrorf(p.curToken.Column, "regex literal is only allowed as the argument of .matches(...)")
	return nil
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	// Comparisons are non-associative: 'a == b == c' is a parse error,
	// not a boolean-against-value comparison.
	if isComparisonOp(expr.Operator) {
		if ie, ok := left.(*ast.InfixExpression); ok && isComparisonOp(ie.Operator) {
			p.addErrorf(p.curToken.Column, "comparison operators cannot be chained")
			return nil
		}
	}

	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}

	if isComparisonOp(expr.Operator) {
		if ie, ok := expr.Right.(*ast.InfixExpression); ok && isComparisonOp(ie.Operator) {
			p.addErrorf(expr.Token.Column, "comparison operators cannot be chained")
			return nil
		}
	}

	return expr
}

// parseDotExpression extends a field path, or builds a method call when
// the segment is one of the postfix string methods.
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	dotCol := p.curToken.Column
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	if methodNames[name] && p.peekTokenIs(lexer.LPAREN) {
		return p.parseMethodCall(left, name)
	}

	fa, ok := left.(*ast.FieldAccess)
	if !ok || fa.Args != nil {
		p.addErrorf(dotCol, "'.%s' must follow a field name", name)
		return nil
	}

	if p.peekTokenIs(lexer.LPAREN) {
		// Accessor call such as request.header("Authorization"): the
		// arguments belong to the field access itself.
		fa.Path = append(fa.Path, name)
		p.nextToken()
		return p.parseAccessorCall(fa)
	}

	fa.Path = append(fa.Path, name)
	return fa
}

// parseMethodCall parses receiver.method(argument). matches takes exactly
// one regex literal; the other methods take exactly one string literal.
func (p *Parser) parseMethodCall(receiver ast.Expression, method string) ast.Expression {
	switch receiver.(type) {
	case *ast.FieldAccess, *ast.MethodCall:
	default:
		p.addErrorf(p.curToken.Column, ".%s() may only follow a field access", method)
		return nil
	}

	mc := &ast.MethodCall{Token: p.curToken, Receiver: receiver, Method: method}
	p.nextToken() // the '('

	p.nextToken()
	switch {
	case method == "matches" && p.curTokenIs(lexer.REGEX):
		re, err := compileRegex(p.curToken)
		if err != nil {
			p.errors = append(p.errors, err)
			return nil
		}
		mc.Argument = &ast.RegexLiteral{
			Token:   p.curToken,
			Pattern: p.curToken.Literal,
			Flags:   p.curToken.Flags,
			Regex:   re,
		}
	case method == "matches":
		p.addErrorf(p.curToken.Column, ".matches() requires a regex literal argument, e.g. /pattern/")
		return nil
	case p.curTokenIs(lexer.STRING):
		mc.Argument = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	default:
		p.errors = append(p.errors,
			ferrors.NewParseError(p.curToken.Column, "string literal", describeToken(p.curToken)))
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return mc
}

// parseAccessorCall attaches call arguments to a field access, for
// accessor-style paths like request.header("X"). Unknown accessor names
// parse fine and fail at evaluation time, per the field resolver contract.
func (p *Parser) parseAccessorCall(left ast.Expression) ast.Expression {
	fa, ok := left.(*ast.FieldAccess)
	if !ok || fa.Args != nil {
		p.addErrorf(p.curToken.Column, "arguments may only follow a field name")
		return nil
	}

	fa.Args = []string{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return fa
	}

	for {
		if !p.expectPeek(lexer.STRING) {
			return nil
		}
		fa.Args = append(fa.Args, p.curToken.Literal)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return fa
}

// compileRegex compiles a regex literal once, at parse time. The only
// supported flag is 'i' (case-insensitive).
func compileRegex(tok lexer.Token) (*regexp.Regexp, *ferrors.FilterError) {
	pattern := tok.Literal
	for _, f := range tok.Flags {
		switch f {
		case 'i':
			pattern = "(?i)" + pattern
		default:
			return nil, ferrors.Parsef(tok.Column, "unsupported regex flag %q", string(f))
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, ferrors.Parsef(tok.Column, "invalid regex: %s", err)
	}
	return re, nil
}
