package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lotusCalc/contracts"
)

// gridResolver is an in-memory ValueResolver backing evaluator and
// function tests.
type gridResolver struct {
	cells    map[contracts.Coordinate]contracts.Value
	names    map[string]contracts.NameTarget
	formulas map[contracts.Coordinate]bool
}

func (g *gridResolver) ResolveCell(coord contracts.Coordinate) contracts.Value {
	return g.cells[coord]
}

func (g *gridResolver) ResolveName(name string) (contracts.NameTarget, bool) {
	target, ok := g.names[strings.ToUpper(name)]
	return target, ok
}

func (g *gridResolver) IsFormulaCell(coord contracts.Coordinate) bool {
	return g.formulas[coord]
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fixedRandom struct {
	float float64
}

func (r fixedRandom) Float64() float64 { return r.float }

func (r fixedRandom) Intn(n int) int { return int(r.float * float64(n)) }

func _coord(t *testing.T, ref string) contracts.Coordinate {
	parsed, err := contracts.ParseReference(ref)
	assert.NoError(t, err)
	return parsed.Coordinate
}

// _evalContext builds a context over literal cell contents keyed by
// reference text, with a pinned clock and random source.
func _evalContext(t *testing.T, cells map[string]string) *EvalContext {
	resolver := &gridResolver{
		cells:    map[contracts.Coordinate]contracts.Value{},
		names:    map[string]contracts.NameTarget{},
		formulas: map[contracts.Coordinate]bool{},
	}
	for ref, raw := range cells {
		resolver.cells[_coord(t, ref)] = contracts.ParseLiteral(raw)
	}
	return &EvalContext{
		Resolver:  resolver,
		Current:   contracts.Coordinate{Col: 0, Row: 0},
		Clock:     fixedClock{now: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		Random:    fixedRandom{float: 0.5},
		Functions: NewFunctionRegistry(),
	}
}

func _eval(t *testing.T, ctx *EvalContext, body string) contracts.Value {
	expr, err := ParseFormula(body)
	assert.NoError(t, err, body)
	return Evaluate(expr, ctx)
}

func _assertNumber(t *testing.T, expected float64, ctx *EvalContext, body string) {
	result := _eval(t, ctx, body)
	assert.Equal(t, contracts.KindNumber, result.Kind, "%s -> %s", body, result.Display())
	assert.InDelta(t, expected, result.Num, 1e-9, body)
}

func _assertError(t *testing.T, expected contracts.ErrorKind, ctx *EvalContext, body string) {
	result := _eval(t, ctx, body)
	assert.Equal(t, contracts.ErrorValue(expected), result, body)
}

func TestEvaluateArithmetic(t *testing.T) {
	ctx := _evalContext(t, nil)

	t.Run("operators", func(t *testing.T) {
		_assertNumber(t, 7, ctx, "1+2*3")
		_assertNumber(t, -1, ctx, "1-2")
		_assertNumber(t, 2.5, ctx, "5/2")
		_assertNumber(t, 512, ctx, "2^3^2")
		// leading minus is part of the base
		_assertNumber(t, 4, ctx, "-2^2")
		_assertNumber(t, 0.125, ctx, "2^-3")
		_assertNumber(t, 9, ctx, "(1+2)*3")
		_assertNumber(t, -4, ctx, "-4")
		_assertNumber(t, 4, ctx, "--4")
		_assertNumber(t, 4, ctx, "+4")
	})

	t.Run("division-by-zero", func(t *testing.T) {
		_assertError(t, contracts.ErrDivideByZero, ctx, "1/0")
	})

	t.Run("overflow", func(t *testing.T) {
		_assertError(t, contracts.ErrNumericOverflow, ctx, "1e308*10")
	})

	t.Run("text-coercion", func(t *testing.T) {
		_assertNumber(t, 7, ctx, `"3"+4`)
		_assertError(t, contracts.ErrInvalidValue, ctx, `"abc"+1`)
	})

	t.Run("boolean-coercion", func(t *testing.T) {
		_assertNumber(t, 3, ctx, "TRUE()+2")
	})
}

func TestEvaluateConcat(t *testing.T) {
	ctx := _evalContext(t, map[string]string{"A1": "5"})

	result := _eval(t, ctx, `"total: "&A1`)
	assert.Equal(t, contracts.TextValue("total: 5"), result)

	result = _eval(t, ctx, `1&2`)
	assert.Equal(t, contracts.TextValue("12"), result)

	// empty cells concatenate as ""
	result = _eval(t, ctx, `"x"&Z99`)
	assert.Equal(t, contracts.TextValue("x"), result)
}

func TestEvaluateComparison(t *testing.T) {
	ctx := _evalContext(t, nil)

	truths := []string{
		"1<2", "2>1", "1=1", "1<>2", "1<=1", "2>=2",
		`"apple"<"banana"`, `"ABC"="abc"`, `"2"=2`, `1<"text"`,
	}
	for _, body := range truths {
		assert.Equal(t, contracts.BooleanValue(true), _eval(t, ctx, body), body)
	}

	falsehoods := []string{"2<1", "1=2", "1<>1", `"b"<"a"`, `"text"<5`}
	for _, body := range falsehoods {
		assert.Equal(t, contracts.BooleanValue(false), _eval(t, ctx, body), body)
	}
}

func TestEvaluateCellReferences(t *testing.T) {
	ctx := _evalContext(t, map[string]string{"A1": "10", "B2": "text", "C1": "TRUE"})

	t.Run("lookup", func(t *testing.T) {
		_assertNumber(t, 10, ctx, "A1")
		assert.Equal(t, contracts.TextValue("text"), _eval(t, ctx, "B2"))
		assert.Equal(t, contracts.BooleanValue(true), _eval(t, ctx, "C1"))
	})

	t.Run("empty-cell-is-zero-in-arithmetic", func(t *testing.T) {
		_assertNumber(t, 5, ctx, "D4+5")
	})

	t.Run("bare-range-has-no-scalar-value", func(t *testing.T) {
		_assertError(t, contracts.ErrInvalidValue, ctx, "A1:B2")
	})
}

func TestEvaluateNames(t *testing.T) {
	ctx := _evalContext(t, map[string]string{"A1": "10", "A2": "20"})
	resolver := ctx.Resolver.(*gridResolver)
	resolver.names["RATE"] = contracts.NameTarget{
		Ref: contracts.Reference{Coordinate: _coord(t, "A1")},
	}
	rng, _ := contracts.ParseRange("A1:A2")
	resolver.names["DATA"] = contracts.NameTarget{Range: rng, IsRange: true}

	t.Run("scalar-name", func(t *testing.T) {
		_assertNumber(t, 20, ctx, "Rate*2")
	})

	t.Run("range-name-in-function", func(t *testing.T) {
		_assertNumber(t, 30, ctx, "SUM(Data)")
	})

	t.Run("range-name-in-scalar-context", func(t *testing.T) {
		_assertError(t, contracts.ErrInvalidValue, ctx, "Data+1")
	})

	t.Run("unknown-name", func(t *testing.T) {
		_assertError(t, contracts.ErrUnknownName, ctx, "NoSuchName+1")
	})
}

func TestEvaluateErrorPropagation(t *testing.T) {
	ctx := _evalContext(t, map[string]string{"A1": "#DIV/0!", "A2": "#N/A"})

	// left operand error wins
	_assertError(t, contracts.ErrDivideByZero, ctx, "A1+A2")
	_assertError(t, contracts.ErrNotAvailable, ctx, "A2+A1")
	_assertError(t, contracts.ErrDivideByZero, ctx, "-A1")
	_assertError(t, contracts.ErrDivideByZero, ctx, `"x"&A1`)
	_assertError(t, contracts.ErrDivideByZero, ctx, "A1>1")
}

func TestEvaluateCalls(t *testing.T) {
	ctx := _evalContext(t, nil)

	t.Run("unknown-function", func(t *testing.T) {
		_assertError(t, contracts.ErrUnknownName, ctx, "NOPE(1)")
	})

	t.Run("too-few-arguments", func(t *testing.T) {
		_assertError(t, contracts.ErrInvalidValue, ctx, "MOD(5)")
	})

	t.Run("too-many-arguments", func(t *testing.T) {
		_assertError(t, contracts.ErrInvalidValue, ctx, "ABS(1,2)")
	})

	t.Run("case-insensitive-lookup", func(t *testing.T) {
		_assertNumber(t, 3, ctx, "sum(1,2)")
	})
}

func TestOperand(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		op := ScalarOperand(contracts.NumberValue(5))
		assert.Equal(t, contracts.NumberValue(5), op.First())

		seen := 0
		op.Each(func(contracts.Value) bool {
			seen++
			return true
		})
		assert.Equal(t, 1, seen)
	})

	t.Run("range-row-major", func(t *testing.T) {
		ctx := _evalContext(t, map[string]string{"A1": "1", "B1": "2", "A2": "3", "B2": "4"})
		expr, err := ParseFormula("A1:B2")
		assert.NoError(t, err)

		op := EvalOperand(expr, ctx)
		assert.True(t, op.IsRange)
		assert.Equal(t, contracts.NumberValue(1), op.First())

		var nums []float64
		op.Each(func(v contracts.Value) bool {
			nums = append(nums, v.Num)
			return true
		})
		assert.Equal(t, []float64{1, 2, 3, 4}, nums)
	})

	t.Run("cell-operand-keeps-reference", func(t *testing.T) {
		ctx := _evalContext(t, map[string]string{"B3": "7"})
		expr, err := ParseFormula("B3")
		assert.NoError(t, err)

		op := EvalOperand(expr, ctx)
		assert.True(t, op.FromRef)
		assert.Equal(t, "B3", op.Ref.String())
	})
}
