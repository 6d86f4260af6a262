package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Kind tells which variant a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is one cell of a Record: a string, a number, a boolean, or missing
// (the record has no such key).
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String wraps a raw string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a boolean cell, such as a spreadsheet TRUE/FALSE.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// Missing is the value of a key a record does not carry.
func Missing() Value { return Value{} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v stands for an absent key.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Raw returns the underlying string for string values.
func (v Value) Raw() (string, bool) { return v.str, v.kind == KindString }

// Float coerces the value to a finite number the way a browser's Number()
// does for well-formed input. Blank strings, missing values and anything that
// would coerce to NaN or ±Infinity report false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindString:
		return coerceNumber(v.str)
	case KindBool:
		return v.num, true
	default:
		return 0, false
	}
}

// String renders the value the way String(v) does in a browser: numbers in
// shortest round-trip form, missing as "undefined".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.num == 1)
	default:
		return "undefined"
	}
}

// MarshalJSON keeps strings as strings and numbers as numbers; missing and
// non-finite numbers encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.num == 1)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON for yaml.v3.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindNumber:
		return v.num, nil
	case KindBool:
		return v.num == 1, nil
	default:
		return nil, nil
	}
}

// FormatNumber formats f like Number.prototype.toString: fixed notation for
// 1e-6 <= |f| < 1e21, exponent notation ("1e+21", "1.5e-7") otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

func isJSSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// coerceNumber accepts decimal literals (optional sign, fraction, exponent)
// and unsigned 0x/0o/0b integer literals. Go-only syntaxes such as digit
// underscores, hex floats and "inf"/"nan" spellings are rejected.
func coerceNumber(s string) (float64, bool) {
	s = strings.TrimFunc(s, isJSSpace)
	if s == "" {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadix(s[2:], base)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E' {
			continue
		}
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseRadix(digits string, base int) (float64, bool) {
	var out float64
	for i := 0; i < len(digits); i++ {
		d := digitVal(digits[i])
		if d < 0 || d >= base {
			return 0, false
		}
		out = out*float64(base) + float64(d)
	}
	if math.IsInf(out, 0) {
		return 0, false
	}
	return out, true
}

func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
