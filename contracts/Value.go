package contracts

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variants of Value.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBoolean
	KindError
)

// ErrorKind enumerates the classic spreadsheet error values. Errors are
// data: once produced they flow through enclosing operations unchanged.
type ErrorKind int

const (
	ErrDivideByZero ErrorKind = iota + 1
	ErrInvalidValue
	ErrUnknownName
	ErrNotAvailable
	ErrInvalidReference
	ErrNumericOverflow
	ErrNull
)

var errorCodes = map[ErrorKind]string{
	ErrDivideByZero:     "#DIV/0!",
	ErrInvalidValue:     "#VALUE!",
	ErrUnknownName:      "#NAME?",
	ErrNotAvailable:     "#N/A",
	ErrInvalidReference: "#REF!",
	ErrNumericOverflow:  "#NUM!",
	ErrNull:             "#NULL!",
}

func (k ErrorKind) String() string {
	if code, ok := errorCodes[k]; ok {
		return code
	}
	return "#VALUE!"
}

// ParseErrorCode maps a display code like "#DIV/0!" back to its kind.
func ParseErrorCode(code string) (ErrorKind, bool) {
	for kind, text := range errorCodes {
		if text == code {
			return kind, true
		}
	}
	return 0, false
}

// Value is the tagged union flowing through the evaluator. The zero Value
// is Empty.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
	Err  ErrorKind
}

func EmptyValue() Value               { return Value{} }
func NumberValue(n float64) Value     { return Value{Kind: KindNumber, Num: n} }
func TextValue(s string) Value        { return Value{Kind: KindText, Str: s} }
func BooleanValue(b bool) Value       { return Value{Kind: KindBoolean, Bool: b} }
func ErrorValue(kind ErrorKind) Value { return Value{Kind: KindError, Err: kind} }

func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }
func (v Value) IsError() bool { return v.Kind == KindError }

// AsNumber coerces the value to a float in arithmetic context. Text that
// looks like a number coerces; other text does not.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindEmpty:
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Display renders the value the way the grid shows it.
func (v Value) Display() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	case KindBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.Err.String()
	}
	return ""
}

// ParseLiteral classifies raw (non-formula) cell content.
func ParseLiteral(raw string) Value {
	if raw == "" {
		return EmptyValue()
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return NumberValue(n)
	}
	if kind, ok := ParseErrorCode(raw); ok {
		return ErrorValue(kind)
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return BooleanValue(true)
	case "FALSE":
		return BooleanValue(false)
	}
	return TextValue(raw)
}
