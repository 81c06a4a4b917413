package main

import (
	"math"

	"lotusCalc/contracts"
)

func registerLogicalFunctions(r *FunctionRegistry) {
	r.Register("IF", 2, 3, calculateIf)
	r.Register("TRUE", 0, 0, constantBool(true))
	r.Register("FALSE", 0, 0, constantBool(false))
	r.Register("AND", 1, -1, combineBool(func(acc, v bool) bool { return acc && v }, true))
	r.Register("OR", 1, -1, combineBool(func(acc, v bool) bool { return acc || v }, false))
	r.Register("XOR", 1, -1, combineBool(func(acc, v bool) bool { return acc != v }, false))
	r.Register("NOT", 1, 1, calculateNot)
	r.Register("ISERR", 1, 1, calculateIsErr)
	r.Register("ISERROR", 1, 1, calculateIsError)
	r.Register("ISNA", 1, 1, calculateIsNA)
	r.Register("NA", 0, 0, constantError(contracts.ErrNotAvailable))
	r.Register("ERR", 0, 0, constantError(contracts.ErrInvalidValue))
	r.Register("ISNUMBER", 1, 1, isKind(contracts.KindNumber))
	r.Register("ISSTRING", 1, 1, isKind(contracts.KindText))
	r.Alias("ISTEXT", "ISSTRING")
	r.Register("ISBLANK", 1, 1, isKind(contracts.KindEmpty))
	r.Register("ISLOGICAL", 1, 1, isKind(contracts.KindBoolean))
	r.Register("ISEVEN", 1, 1, calculateIsEven)
	r.Register("ISODD", 1, 1, calculateIsOdd)
	r.Register("ISREF", 1, 1, calculateIsRef)
	r.Register("IFERROR", 2, 2, calculateIfError)
	r.Register("IFNA", 2, 2, calculateIfNA)
	r.Register("SWITCH", 3, -1, calculateSwitch)
	r.Register("CHOOSE", 2, -1, calculateChoose)
}

func constantBool(value bool) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		return contracts.BooleanValue(value)
	}
}

func constantError(kind contracts.ErrorKind) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		return contracts.ErrorValue(kind)
	}
}

func calculateIf(ctx *EvalContext, args []Operand) contracts.Value {
	condition, errVal := scalarBool(args[0])
	if errVal != nil {
		return *errVal
	}
	if condition {
		return args[1].First()
	}
	if len(args) > 2 {
		return args[2].First()
	}
	return contracts.BooleanValue(false)
}

// combineBool folds truthy inputs. Range cells that are text or empty
// are skipped; an input set with nothing usable is an error.
func combineBool(fold func(acc, v bool) bool, seed bool) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		acc := seed
		seen := false
		for _, arg := range args {
			var errVal *contracts.Value
			arg.Each(func(v contracts.Value) bool {
				if v.IsError() {
					errVal = &v
					return false
				}
				if v.IsEmpty() || v.Kind == contracts.KindText {
					return true
				}
				num, _ := v.AsNumber()
				acc = fold(acc, num != 0)
				seen = true
				return true
			})
			if errVal != nil {
				return *errVal
			}
		}
		if !seen {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
		return contracts.BooleanValue(acc)
	}
}

func calculateNot(ctx *EvalContext, args []Operand) contracts.Value {
	condition, errVal := scalarBool(args[0])
	if errVal != nil {
		return *errVal
	}
	return contracts.BooleanValue(!condition)
}

// The IS* family inspects rather than propagates: an error input is an
// answer, not a failure.
func calculateIsErr(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	return contracts.BooleanValue(v.IsError() && v.Err != contracts.ErrNotAvailable)
}

func calculateIsError(ctx *EvalContext, args []Operand) contracts.Value {
	return contracts.BooleanValue(args[0].First().IsError())
}

func calculateIsNA(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	return contracts.BooleanValue(v.IsError() && v.Err == contracts.ErrNotAvailable)
}

func isKind(kind contracts.ValueKind) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		return contracts.BooleanValue(args[0].First().Kind == kind)
	}
}

func calculateIsEven(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	return contracts.BooleanValue(math.Mod(math.Trunc(num), 2) == 0)
}

func calculateIsOdd(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	return contracts.BooleanValue(math.Mod(math.Trunc(num), 2) != 0)
}

func calculateIsRef(ctx *EvalContext, args []Operand) contracts.Value {
	return contracts.BooleanValue(args[0].FromRef || args[0].IsRange)
}

func calculateIfError(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if v.IsError() {
		return args[1].First()
	}
	return v
}

func calculateIfNA(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if v.IsError() && v.Err == contracts.ErrNotAvailable {
		return args[1].First()
	}
	return v
}

func calculateSwitch(ctx *EvalContext, args []Operand) contracts.Value {
	selector := args[0].First()
	if selector.IsError() {
		return selector
	}
	rest := args[1:]
	for len(rest) >= 2 {
		candidate := rest[0].First()
		if candidate.IsError() {
			return candidate
		}
		if candidate.Kind == selector.Kind && compareValues(selector, candidate) == 0 {
			return rest[1].First()
		}
		rest = rest[2:]
	}
	// odd trailing argument is the default branch
	if len(rest) == 1 {
		return rest[0].First()
	}
	return contracts.ErrorValue(contracts.ErrNotAvailable)
}

// CHOOSE selects by zero-based index.
func calculateChoose(ctx *EvalContext, args []Operand) contracts.Value {
	index, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	choices := args[1:]
	if index < 0 || index >= len(choices) {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return choices[index].First()
}
