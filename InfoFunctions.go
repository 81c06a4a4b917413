package main

import (
	"runtime"
	"strings"

	"lotusCalc/contracts"
)

const EngineVersion = "1.0.0"

// FormulaAwareResolver is implemented by resolvers that can tell a
// formula cell apart from a literal one.
type FormulaAwareResolver interface {
	IsFormulaCell(coord contracts.Coordinate) bool
}

func registerInfoFunctions(r *FunctionRegistry) {
	r.Register("TYPE", 1, 1, calculateType)
	r.Register("CELL", 2, 2, calculateCell)
	r.Register("CELLPOINTER", 1, 1, calculateCellPointer)
	r.Register("INFO", 1, 1, calculateInfo)
	r.Register("VERSION", 0, 0, calculateVersion)
	r.Register("ERROR.TYPE", 1, 1, calculateErrorType)
	r.Register("SHEET", 0, 1, constantNumber(1))
	r.Register("SHEETS", 0, 1, constantNumber(1))
	r.Register("AREAS", 1, 1, calculateAreas)
	r.Register("ISFORMULA", 1, 1, calculateIsFormula)
	r.Register("N", 1, 1, calculateN)
}

func constantNumber(n float64) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		return contracts.NumberValue(n)
	}
}

func calculateType(ctx *EvalContext, args []Operand) contracts.Value {
	if args[0].IsRange {
		return contracts.NumberValue(64)
	}
	switch args[0].Scalar.Kind {
	case contracts.KindText:
		return contracts.NumberValue(2)
	case contracts.KindBoolean:
		return contracts.NumberValue(4)
	case contracts.KindError:
		return contracts.NumberValue(16)
	}
	return contracts.NumberValue(1)
}

// CELL inspects an attribute of a referenced cell: "row", "col",
// "address", "contents" or "type". Type answers "b" for blank, "l"
// for a label and "v" for anything else.
func calculateCell(ctx *EvalContext, args []Operand) contracts.Value {
	attribute, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	var coord contracts.Coordinate
	switch {
	case args[1].Ref != nil:
		coord = args[1].Ref.Coordinate
	case args[1].IsRange && args[1].Range != nil:
		coord = args[1].Range.Start.Coordinate
	default:
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return cellAttribute(ctx, attribute, coord)
}

func calculateCellPointer(ctx *EvalContext, args []Operand) contracts.Value {
	attribute, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	return cellAttribute(ctx, attribute, ctx.Current)
}

func cellAttribute(ctx *EvalContext, attribute string, coord contracts.Coordinate) contracts.Value {
	value := ctx.Resolver.ResolveCell(coord)
	switch strings.ToLower(attribute) {
	case "row":
		return contracts.NumberValue(float64(coord.Row + 1))
	case "col":
		return contracts.NumberValue(float64(coord.Col + 1))
	case "address":
		ref := contracts.Reference{Coordinate: coord, ColAbsolute: true, RowAbsolute: true}
		return contracts.TextValue(ref.String())
	case "contents":
		return value
	case "type":
		switch value.Kind {
		case contracts.KindEmpty:
			return contracts.TextValue("b")
		case contracts.KindText:
			return contracts.TextValue("l")
		}
		return contracts.TextValue("v")
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

func calculateInfo(ctx *EvalContext, args []Operand) contracts.Value {
	key, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	switch strings.ToLower(key) {
	case "release":
		return contracts.TextValue(EngineVersion)
	case "system":
		return contracts.TextValue(runtime.GOOS)
	case "numfile":
		return contracts.NumberValue(1)
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

func calculateVersion(ctx *EvalContext, args []Operand) contracts.Value {
	return contracts.TextValue(EngineVersion)
}

// ERROR.TYPE numbers the error kinds; anything that is not an error
// is not available.
func calculateErrorType(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if !v.IsError() {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	return contracts.NumberValue(float64(v.Err))
}

func calculateAreas(ctx *EvalContext, args []Operand) contracts.Value {
	if args[0].FromRef || args[0].IsRange {
		return contracts.NumberValue(1)
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

func calculateIsFormula(ctx *EvalContext, args []Operand) contracts.Value {
	if args[0].Ref == nil {
		return contracts.BooleanValue(false)
	}
	aware, ok := ctx.Resolver.(FormulaAwareResolver)
	if !ok {
		return contracts.BooleanValue(false)
	}
	return contracts.BooleanValue(aware.IsFormulaCell(args[0].Ref.Coordinate))
}

// N reduces a value to a number: numbers pass through, booleans count
// as 1 or 0, everything else is 0. Errors still propagate.
func calculateN(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if v.IsError() {
		return v
	}
	if num, ok := v.AsNumber(); ok && v.Kind != contracts.KindText {
		return contracts.NumberValue(num)
	}
	return contracts.NumberValue(0)
}
