package main

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"lotusCalc/contracts"
)

// ValueResolver supplies computed cell values during evaluation.
// The recalculation engine guarantees precedents are evaluated first,
// so a resolver lookup never triggers nested evaluation.
type ValueResolver interface {
	ResolveCell(coord contracts.Coordinate) contracts.Value
	ResolveName(name string) (contracts.NameTarget, bool)
}

type Clock interface {
	Now() time.Time
}

type RandomGenerator interface {
	Float64() float64
	Intn(n int) int
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewClock() Clock { return realClock{} }

type seededRandom struct {
	rng *rand.Rand
}

func (r *seededRandom) Float64() float64 { return r.rng.Float64() }
func (r *seededRandom) Intn(n int) int   { return r.rng.Intn(n) }

func NewRandomGenerator() RandomGenerator {
	return &seededRandom{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type EvalContext struct {
	Resolver  ValueResolver
	Current   contracts.Coordinate
	Clock     Clock
	Random    RandomGenerator
	Functions *FunctionRegistry
}

// Operand is a function argument: either a scalar value or the
// materialized grid of a range, row-major.
type Operand struct {
	Grid    [][]contracts.Value
	Range   *contracts.RangeReference
	Scalar  contracts.Value
	Ref     *contracts.Reference
	IsRange bool
	FromRef bool
}

func ScalarOperand(v contracts.Value) Operand {
	return Operand{Scalar: v}
}

// Each calls visit for every value in the operand, in row-major
// order for ranges. Returns false if visit stopped the walk.
func (o Operand) Each(visit func(contracts.Value) bool) bool {
	if !o.IsRange {
		return visit(o.Scalar)
	}
	for _, row := range o.Grid {
		for _, v := range row {
			if !visit(v) {
				return false
			}
		}
	}
	return true
}

// First returns the scalar value, or the top-left value of a range.
func (o Operand) First() contracts.Value {
	if !o.IsRange {
		return o.Scalar
	}
	if len(o.Grid) == 0 || len(o.Grid[0]) == 0 {
		return contracts.EmptyValue()
	}
	return o.Grid[0][0]
}

// Evaluate computes the scalar value of an expression tree. Errors
// surface as error values, never as Go errors; a formula result is
// always a Value.
func Evaluate(expr Expr, ctx *EvalContext) contracts.Value {
	switch node := expr.(type) {
	case *LiteralExpr:
		return node.Value

	case *CellRefExpr:
		if !node.Ref.Coordinate.InBounds() {
			return contracts.ErrorValue(contracts.ErrInvalidReference)
		}
		return ctx.Resolver.ResolveCell(node.Ref.Coordinate)

	case *RangeRefExpr:
		// a bare range has no scalar meaning outside a function call
		return contracts.ErrorValue(contracts.ErrInvalidValue)

	case *NameRefExpr:
		target, ok := ctx.Resolver.ResolveName(node.Name)
		if !ok {
			return contracts.ErrorValue(contracts.ErrUnknownName)
		}
		if target.IsRange {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
		return ctx.Resolver.ResolveCell(target.Ref.Coordinate)

	case *UnaryExpr:
		operand := Evaluate(node.Operand, ctx)
		if operand.IsError() {
			return operand
		}
		num, errVal := coerceNumber(operand)
		if errVal != nil {
			return *errVal
		}
		if node.Op == "-" {
			num = -num
		}
		return finishNumber(num)

	case *BinaryExpr:
		return evalBinary(node, ctx)

	case *CallExpr:
		return evalCall(node, ctx)
	}

	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

// EvalOperand evaluates an expression in argument position, keeping
// ranges intact for range-consuming functions.
func EvalOperand(expr Expr, ctx *EvalContext) Operand {
	switch node := expr.(type) {
	case *RangeRefExpr:
		return materializeRange(node.Range, ctx)

	case *CellRefExpr:
		return Operand{Scalar: Evaluate(expr, ctx), Ref: &node.Ref, FromRef: true}

	case *NameRefExpr:
		target, ok := ctx.Resolver.ResolveName(node.Name)
		if !ok {
			return ScalarOperand(contracts.ErrorValue(contracts.ErrUnknownName))
		}
		if target.IsRange {
			return materializeRange(target.Range, ctx)
		}
		return Operand{Scalar: ctx.Resolver.ResolveCell(target.Ref.Coordinate), Ref: &target.Ref, FromRef: true}
	}
	return ScalarOperand(Evaluate(expr, ctx))
}

func materializeRange(rng contracts.RangeReference, ctx *EvalContext) Operand {
	rows := rng.Rows()
	cols := rng.Cols()
	grid := make([][]contracts.Value, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]contracts.Value, cols)
		for c := 0; c < cols; c++ {
			coord := contracts.Coordinate{
				Col: rng.Start.Col + c,
				Row: rng.Start.Row + r,
			}
			grid[r][c] = ctx.Resolver.ResolveCell(coord)
		}
	}
	return Operand{IsRange: true, Grid: grid, Range: &rng}
}

func evalBinary(node *BinaryExpr, ctx *EvalContext) contracts.Value {
	left := Evaluate(node.Left, ctx)
	if left.IsError() {
		return left
	}
	right := Evaluate(node.Right, ctx)
	if right.IsError() {
		return right
	}

	switch node.Op {
	case "+", "-", "*", "/", "^":
		return evalArithmetic(node.Op, left, right)
	case "&":
		return contracts.TextValue(textOf(left) + textOf(right))
	case "=", "<>", "<", ">", "<=", ">=":
		return evalComparison(node.Op, left, right)
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

func evalArithmetic(op string, left, right contracts.Value) contracts.Value {
	a, errVal := coerceNumber(left)
	if errVal != nil {
		return *errVal
	}
	b, errVal := coerceNumber(right)
	if errVal != nil {
		return *errVal
	}

	var result float64
	switch op {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		if b == 0 {
			return contracts.ErrorValue(contracts.ErrDivideByZero)
		}
		result = a / b
	case "^":
		result = math.Pow(a, b)
	}
	return finishNumber(result)
}

func evalComparison(op string, left, right contracts.Value) contracts.Value {
	cmp := compareValues(left, right)

	var result bool
	switch op {
	case "=":
		result = cmp == 0
	case "<>":
		result = cmp != 0
	case "<":
		result = cmp < 0
	case ">":
		result = cmp > 0
	case "<=":
		result = cmp <= 0
	case ">=":
		result = cmp >= 0
	}
	return contracts.BooleanValue(result)
}

// compareValues orders two values: numerically when both can act as
// numbers, case-insensitively when both are text, and with every
// number sorting before every text otherwise.
func compareValues(left, right contracts.Value) int {
	a, aOK := left.AsNumber()
	b, bOK := right.AsNumber()
	if aOK && bOK {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	if left.Kind == contracts.KindText && right.Kind == contracts.KindText {
		return strings.Compare(strings.ToUpper(left.Str), strings.ToUpper(right.Str))
	}
	if aOK {
		return -1
	}
	if bOK {
		return 1
	}
	return 0
}

func evalCall(node *CallExpr, ctx *EvalContext) contracts.Value {
	spec, ok := ctx.Functions.Lookup(node.Name)
	if !ok {
		return contracts.ErrorValue(contracts.ErrUnknownName)
	}
	if len(node.Args) < spec.MinArgs {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	if spec.MaxArgs >= 0 && len(node.Args) > spec.MaxArgs {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}

	args := make([]Operand, len(node.Args))
	for i, argExpr := range node.Args {
		args[i] = EvalOperand(argExpr, ctx)
	}
	return spec.Fn(ctx, args)
}

// coerceNumber converts a value for arithmetic. Empty counts as 0,
// booleans as 1 and 0, text must parse as a number.
func coerceNumber(v contracts.Value) (float64, *contracts.Value) {
	num, ok := v.AsNumber()
	if !ok {
		errVal := contracts.ErrorValue(contracts.ErrInvalidValue)
		if v.IsError() {
			errVal = v
		}
		return 0, &errVal
	}
	return num, nil
}

// finishNumber rejects NaN and infinite results.
func finishNumber(num float64) contracts.Value {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(num)
}

func textOf(v contracts.Value) string {
	if v.Kind == contracts.KindEmpty {
		return ""
	}
	return v.Display()
}
