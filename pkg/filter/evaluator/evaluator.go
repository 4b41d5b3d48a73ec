package evaluator

import (
	"strings"

	"github.com/sambeau/harq/pkg/filter/ast"
	ferrors "github.com/sambeau/harq/pkg/filter/errors"
	"github.com/sambeau/harq/pkg/graphql"
	"github.com/sambeau/harq/pkg/har"
)

// evaluation holds the per-record state of one evaluation pass: the entry
// under test and the lazily computed GraphQL detection result.
type evaluation struct {
	entry *har.Entry
	gql   *graphql.Info
}

// Eval evaluates the expression against one entry and returns the typed
// result. The tree is never mutated, so the same expression may be
// evaluated concurrently against many entries.
func Eval(node ast.Expression, entry *har.Entry) (Value, error) {
	ev := &evaluation{entry: entry}
	return ev.eval(node)
}

// EvalPredicate evaluates the expression and requires a boolean result,
// the contract of the filter use case.
func EvalPredicate(node ast.Expression, entry *har.Entry) (bool, error) {
	v, err := Eval(node, entry)
	if err != nil {
		return false, err
	}
	if v.Kind() != KindBool {
		return false, ferrors.NotAPredicate(v.Type())
	}
	return v.Truth(), nil
}

func (ev *evaluation) eval(node ast.Expression) (Value, error) {
	switch node := node.(type) {
	case *ast.Boolean:
		return Bool(node.Value), nil
	case *ast.NumberLiteral:
		return Number(node.Value), nil
	case *ast.StringLiteral:
		return String(node.Value), nil
	case *ast.FieldAccess:
		return ev.resolveField(node.Name(), node.Args)
	case *ast.PrefixExpression:
		return ev.evalPrefix(node)
	case *ast.InfixExpression:
		return ev.evalInfix(node)
	case *ast.MethodCall:
		return ev.evalMethodCall(node)
	case *ast.RegexLiteral:
		// Unreachable through the parser; regexes only appear as
		// .matches() arguments.
		return Missing, ferrors.Typef("regex literal cannot be evaluated as a value")
	default:
		return Missing, ferrors.Typef("unsupported expression: %s", node.String())
	}
}

func (ev *evaluation) evalPrefix(node *ast.PrefixExpression) (Value, error) {
	right, err := ev.eval(node.Right)
	if err != nil {
		return Missing, err
	}
	if right.Kind() != KindBool {
		return Missing, ferrors.Typef("operator ! requires a boolean operand, got %s", right.Type())
	}
	return Bool(!right.Truth()), nil
}

func (ev *evaluation) evalInfix(node *ast.InfixExpression) (Value, error) {
	if node.Operator == "&&" || node.Operator == "||" {
		return ev.evalLogical(node)
	}

	left, err := ev.eval(node.Left)
	if err != nil {
		return Missing, err
	}
	right, err := ev.eval(node.Right)
	if err != nil {
		return Missing, err
	}

	switch node.Operator {
	case "==", "!=":
		return evalEquality(node.Operator, left, right), nil
	case "<", "<=", ">", ">=":
		return evalOrdering(node.Operator, left, right)
	default:
		return Missing, ferrors.Typef("unsupported operator: %s", node.Operator)
	}
}

// evalLogical implements && and || with short-circuiting: the right
// operand is not resolved when the left already determines the result.
func (ev *evaluation) evalLogical(node *ast.InfixExpression) (Value, error) {
	left, err := ev.eval(node.Left)
	if err != nil {
		return Missing, err
	}
	if left.Kind() != KindBool {
		return Missing, ferrors.Typef("operator %s requires boolean operands, got %s", node.Operator, left.Type())
	}

	if node.Operator == "&&" && !left.Truth() {
		return Bool(false), nil
	}
	if node.Operator == "||" && left.Truth() {
		return Bool(true), nil
	}

	right, err := ev.eval(node.Right)
	if err != nil {
		return Missing, err
	}
	if right.Kind() != KindBool {
		return Missing, ferrors.Typef("operator %s requires boolean operands, got %s", node.Operator, right.Type())
	}
	return Bool(right.Truth()), nil
}

// evalEquality compares two values. Missing compared with anything is
// false for both == and != (absent headers resolve to "" instead, so
// existence probes still work).
func evalEquality(op string, left, right Value) Value {
	if left.IsMissing() || right.IsMissing() {
		return Bool(false)
	}
	eq := valuesEqual(left, right)
	if op == "!=" {
		eq = !eq
	}
	return Bool(eq)
}

// valuesEqual applies the coercion rule: when one side is numeric and the
// other is a string, the numeric side wins: the string is parsed as a
// number, and if it does not parse the comparison falls back to the
// number's textual representation.
func valuesEqual(left, right Value) bool {
	if left.Kind() == right.Kind() {
		switch left.Kind() {
		case KindString:
			return left.Str() == right.Str()
		case KindNumber:
			return left.Num() == right.Num()
		case KindBool:
			return left.Truth() == right.Truth()
		}
		return false
	}

	if isNumberStringPair(left, right) {
		num, str := numberAndString(left, right)
		if n, ok := str.asNumber(); ok {
			return num.Num() == n
		}
		return num.Text() == str.Str()
	}

	return false
}

// evalOrdering implements < <= > >=. Both sides must coerce to numbers.
func evalOrdering(op string, left, right Value) (Value, error) {
	l, ok := left.asNumber()
	if !ok {
		return Missing, ferrors.Typef("operator %s requires numeric operands, got %s", op, left.Type())
	}
	r, ok := right.asNumber()
	if !ok {
		return Missing, ferrors.Typef("operator %s requires numeric operands, got %s", op, right.Type())
	}

	switch op {
	case "<":
		return Bool(l < r), nil
	case "<=":
		return Bool(l <= r), nil
	case ">":
		return Bool(l > r), nil
	default:
		return Bool(l >= r), nil
	}
}

// evalMethodCall implements the postfix string methods. A Missing
// receiver (an absent optional field) never matches, mirroring the
// equality rule for Missing.
func (ev *evaluation) evalMethodCall(node *ast.MethodCall) (Value, error) {
	recv, err := ev.eval(node.Receiver)
	if err != nil {
		return Missing, err
	}
	if recv.IsMissing() {
		return Bool(false), nil
	}
	if recv.Kind() != KindString {
		return Missing, ferrors.Typef(".%s() requires a string receiver, got %s", node.Method, recv.Type())
	}

	if node.Method == "matches" {
		re := node.Argument.(*ast.RegexLiteral).Regex
		return Bool(re.MatchString(recv.Str())), nil
	}

	arg := node.Argument.(*ast.StringLiteral).Value
	switch node.Method {
	case "contains":
		return Bool(strings.Contains(recv.Str(), arg)), nil
	case "startsWith":
		return Bool(strings.HasPrefix(recv.Str(), arg)), nil
	case "endsWith":
		return Bool(strings.HasSuffix(recv.Str(), arg)), nil
	default:
		return Missing, ferrors.Typef("unknown method: %s", node.Method)
	}
}

func isNumberStringPair(a, b Value) bool {
	return (a.Kind() == KindNumber && b.Kind() == KindString) ||
		(a.Kind() == KindString && b.Kind() == KindNumber)
}

func numberAndString(a, b Value) (num, str Value) {
	if a.Kind() == KindNumber {
		return a, b
	}
	return b, a
}
