// Package evaluator walks a filter expression tree against one HAR entry,
// resolving field paths to typed values and applying operator semantics.
package evaluator

import "strconv"

// Kind discriminates the value union.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is the typed result of a literal or a resolved field. Missing
// models fields the record does not carry (absent timing phases, absent
// serverIPAddress, GraphQL fields on non-GraphQL entries).
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Missing is the absent value.
var Missing = Value{kind: KindMissing}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the string payload (zero value for other kinds).
func (v Value) Str() string { return v.str }

// Num returns the numeric payload (zero value for other kinds).
func (v Value) Num() float64 { return v.num }

// Truth returns the boolean payload (zero value for other kinds).
func (v Value) Truth() bool { return v.b }

// Type returns the kind name used in error messages.
func (v Value) Type() string {
	switch v.kind {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "missing"
	}
}

// Text returns the value's textual representation, used for display and
// for the string side of mixed-type equality.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// asNumber coerces the value to a number. Strings parse as floats;
// booleans and missing values do not coerce.
func (v Value) asNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		n, err := strconv.ParseFloat(v.str, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
