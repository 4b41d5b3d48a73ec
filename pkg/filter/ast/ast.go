// Package ast defines the expression nodes produced by the filter parser.
// The tree is immutable after construction and safe to share across
// goroutines: compile once, evaluate against many records.
package ast

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/sambeau/harq/pkg/filter/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Boolean represents the literals 'true' and 'false'
type Boolean struct {
	Token lexer.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string       { return b.Token.Literal }

// NumberLiteral represents integer and decimal literals, held as float64
// to match HAR's numeric fields.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral represents a double-quoted string literal
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return `"` + sl.Value + `"` }

// RegexLiteral represents a /pattern/flags literal. The pattern is
// compiled once at parse time; Regex is reused for every record.
type RegexLiteral struct {
	Token   lexer.Token
	Pattern string
	Flags   string
	Regex   *regexp.Regexp
}

func (rl *RegexLiteral) expressionNode()      {}
func (rl *RegexLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RegexLiteral) String() string {
	return "/" + strings.ReplaceAll(rl.Pattern, "/", `\/`) + "/" + rl.Flags
}

// FieldAccess represents a dotted field path like 'status' or
// 'request.httpVersion'. Args holds call arguments for accessor-style
// paths like request.header("Authorization").
type FieldAccess struct {
	Token lexer.Token // the first path segment
	Path  []string
	Args  []string
}

func (fa *FieldAccess) expressionNode()      {}
func (fa *FieldAccess) TokenLiteral() string { return fa.Token.Literal }
func (fa *FieldAccess) String() string {
	var out bytes.Buffer
	out.WriteString(strings.Join(fa.Path, "."))
	if fa.Args != nil {
		out.WriteString("(")
		for i, a := range fa.Args {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(`"` + a + `"`)
		}
		out.WriteString(")")
	}
	return out.String()
}

// Name returns the dotted path without arguments, e.g. "request.header".
func (fa *FieldAccess) Name() string { return strings.Join(fa.Path, ".") }

// PrefixExpression represents '!expr'
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents comparisons and the logical operators
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// MethodCall represents a postfix string method: receiver.method(argument).
// Method is one of contains, startsWith, endsWith, matches. The argument
// is a StringLiteral, or a RegexLiteral for matches.
type MethodCall struct {
	Token    lexer.Token // the method name token
	Receiver Expression
	Method   string
	Argument Expression
}

func (mc *MethodCall) expressionNode()      {}
func (mc *MethodCall) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCall) String() string {
	return mc.Receiver.String() + "." + mc.Method + "(" + mc.Argument.String() + ")"
}
