// Package engine provides a minimal expert-system host environment: typed
// values with an interned lexeme table, and a user-defined function (UDF)
// dispatch table with declared signatures. It is the host seam that the
// bridge registers into; rule matching and inference live outside this
// module.
package engine

import (
	"fmt"
	"strconv"
)

// Kind is a bitmask of value kinds. UDF signatures declare the kinds each
// argument position accepts, and argument extraction filters on a mask.
type Kind uint8

const (
	// KindSymbol is an unquoted lexeme.
	KindSymbol Kind = 1 << iota

	// KindString is a quoted lexeme.
	KindString

	// KindInteger is a 64-bit integer.
	KindInteger

	// KindFloat is a 64-bit float.
	KindFloat

	// KindBoolean is a truth value.
	KindBoolean
)

// KindLexeme matches either lexeme kind (symbol or string).
const KindLexeme = KindSymbol | KindString

// String returns a signature-style name for a kind mask.
func (k Kind) String() string {
	switch k {
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindLexeme:
		return "lexeme"
	default:
		return fmt.Sprintf("kind(%#b)", uint8(k))
	}
}

// Value is the host engine's value representation. Lexeme values hold
// host-owned (interned) string storage; see Environment.CreateString.
type Value struct {
	lexeme  string
	integer int64
	float   float64
	boolean bool
	kind    Kind
}

// Symbol creates a symbol value.
func Symbol(s string) Value {
	return Value{kind: KindSymbol, lexeme: s}
}

// String creates a quoted string value.
func String(s string) Value {
	return Value{kind: KindString, lexeme: s}
}

// Integer creates an integer value.
func Integer(n int64) Value {
	return Value{kind: KindInteger, integer: n}
}

// Float creates a float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, float: f}
}

// Boolean creates a truth value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Kind returns the value's kind bit.
func (v Value) Kind() Kind {
	return v.kind
}

// Is reports whether the value's kind is within the given mask.
func (v Value) Is(mask Kind) bool {
	return v.kind&mask != 0
}

// Lexeme returns the string contents of a lexeme value, or "" for
// non-lexeme values.
func (v Value) Lexeme() string {
	if !v.Is(KindLexeme) {
		return ""
	}
	return v.lexeme
}

// Int returns the integer contents, or 0 for non-integer values.
func (v Value) Int() int64 {
	if v.kind != KindInteger {
		return 0
	}
	return v.integer
}

// Float64 returns the float contents, or 0 for non-float values.
func (v Value) Float64() float64 {
	if v.kind != KindFloat {
		return 0
	}
	return v.float
}

// Bool returns the boolean contents, or false for non-boolean values.
func (v Value) Bool() bool {
	if v.kind != KindBoolean {
		return false
	}
	return v.boolean
}

// Display renders the value the way the host shell prints it.
func (v Value) Display() string {
	switch v.kind {
	case KindSymbol:
		return v.lexeme
	case KindString:
		return strconv.Quote(v.lexeme)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindFloat:
		return strconv.FormatFloat(v.float, 'g', -1, 64)
	case KindBoolean:
		if v.boolean {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}
