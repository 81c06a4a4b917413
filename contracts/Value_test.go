package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueConstructors(t *testing.T) {
	assert.True(t, EmptyValue().IsEmpty())
	assert.True(t, Value{}.IsEmpty())
	assert.True(t, ErrorValue(ErrDivideByZero).IsError())
	assert.False(t, NumberValue(0).IsEmpty())
	assert.False(t, TextValue("").IsError())
}

func TestValueAsNumber(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		n, ok := NumberValue(2.5).AsNumber()
		assert.True(t, ok)
		assert.Equal(t, 2.5, n)
	})

	t.Run("boolean", func(t *testing.T) {
		n, ok := BooleanValue(true).AsNumber()
		assert.True(t, ok)
		assert.Equal(t, 1.0, n)

		n, ok = BooleanValue(false).AsNumber()
		assert.True(t, ok)
		assert.Equal(t, 0.0, n)
	})

	t.Run("empty-is-zero", func(t *testing.T) {
		n, ok := EmptyValue().AsNumber()
		assert.True(t, ok)
		assert.Equal(t, 0.0, n)
	})

	t.Run("numeric-text", func(t *testing.T) {
		n, ok := TextValue(" 42 ").AsNumber()
		assert.True(t, ok)
		assert.Equal(t, 42.0, n)

		n, ok = TextValue("-1.5e2").AsNumber()
		assert.True(t, ok)
		assert.Equal(t, -150.0, n)
	})

	t.Run("non-numeric-text", func(t *testing.T) {
		_, ok := TextValue("hello").AsNumber()
		assert.False(t, ok)
	})

	t.Run("error", func(t *testing.T) {
		_, ok := ErrorValue(ErrInvalidValue).AsNumber()
		assert.False(t, ok)
	})
}

func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "", EmptyValue().Display())
	assert.Equal(t, "5", NumberValue(5).Display())
	assert.Equal(t, "2.5", NumberValue(2.5).Display())
	assert.Equal(t, "-0.25", NumberValue(-0.25).Display())
	assert.Equal(t, "hello", TextValue("hello").Display())
	assert.Equal(t, "TRUE", BooleanValue(true).Display())
	assert.Equal(t, "FALSE", BooleanValue(false).Display())
	assert.Equal(t, "#DIV/0!", ErrorValue(ErrDivideByZero).Display())
	assert.Equal(t, "#NAME?", ErrorValue(ErrUnknownName).Display())
	assert.Equal(t, "#N/A", ErrorValue(ErrNotAvailable).Display())
}

func TestParseLiteral(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, EmptyValue(), ParseLiteral(""))
	})

	t.Run("numbers", func(t *testing.T) {
		assert.Equal(t, NumberValue(5), ParseLiteral("5"))
		assert.Equal(t, NumberValue(-2.5), ParseLiteral("-2.5"))
		assert.Equal(t, NumberValue(100), ParseLiteral(" 1e2 "))
	})

	t.Run("booleans", func(t *testing.T) {
		assert.Equal(t, BooleanValue(true), ParseLiteral("TRUE"))
		assert.Equal(t, BooleanValue(false), ParseLiteral("false"))
	})

	t.Run("error-codes", func(t *testing.T) {
		assert.Equal(t, ErrorValue(ErrNotAvailable), ParseLiteral("#N/A"))
		assert.Equal(t, ErrorValue(ErrInvalidReference), ParseLiteral("#REF!"))
	})

	t.Run("text", func(t *testing.T) {
		assert.Equal(t, TextValue("hello"), ParseLiteral("hello"))
		assert.Equal(t, TextValue("#OOPS"), ParseLiteral("#OOPS"))
	})
}

func TestErrorCodeRoundTrip(t *testing.T) {
	for kind := ErrDivideByZero; kind <= ErrNull; kind++ {
		parsed, ok := ParseErrorCode(kind.String())
		assert.True(t, ok)
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseErrorCode("#NOPE!")
	assert.False(t, ok)
}
