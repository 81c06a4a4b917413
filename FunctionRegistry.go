package main

import (
	"sort"
	"strings"

	"lotusCalc/contracts"
)

type FunctionImpl func(ctx *EvalContext, args []Operand) contracts.Value

// FunctionSpec describes one registered function. MaxArgs of -1 means
// the function is variadic.
type FunctionSpec struct {
	MinArgs int
	MaxArgs int
	Fn      FunctionImpl
}

type FunctionRegistry struct {
	specs map[string]FunctionSpec
}

func NewFunctionRegistry() *FunctionRegistry {
	registry := &FunctionRegistry{specs: map[string]FunctionSpec{}}
	registerMathFunctions(registry)
	registerStatisticalFunctions(registry)
	registerStringFunctions(registry)
	registerLogicalFunctions(registry)
	registerLookupFunctions(registry)
	registerDateTimeFunctions(registry)
	registerFinancialFunctions(registry)
	registerDatabaseFunctions(registry)
	registerInfoFunctions(registry)
	return registry
}

func (r *FunctionRegistry) Register(name string, minArgs, maxArgs int, fn FunctionImpl) {
	r.specs[strings.ToUpper(name)] = FunctionSpec{MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}
}

// Alias registers a second name for an already registered function.
func (r *FunctionRegistry) Alias(alias, name string) {
	if spec, ok := r.specs[strings.ToUpper(name)]; ok {
		r.specs[strings.ToUpper(alias)] = spec
	}
}

func (r *FunctionRegistry) Lookup(name string) (FunctionSpec, bool) {
	spec, ok := r.specs[strings.ToUpper(name)]
	return spec, ok
}

func (r *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Argument helpers shared by the function implementations. They return
// the coerced value plus a non-nil error value when coercion fails, so
// implementations can bail out with the right spreadsheet error.

func scalarNumber(o Operand) (float64, *contracts.Value) {
	v := o.First()
	if v.IsError() {
		return 0, &v
	}
	return coerceNumber(v)
}

func scalarInt(o Operand) (int, *contracts.Value) {
	num, errVal := scalarNumber(o)
	if errVal != nil {
		return 0, errVal
	}
	return int(num), nil
}

func scalarText(o Operand) (string, *contracts.Value) {
	v := o.First()
	if v.IsError() {
		return "", &v
	}
	return textOf(v), nil
}

// scalarBool interprets a condition: booleans directly, anything
// number-like as nonzero, plain text fails.
func scalarBool(o Operand) (bool, *contracts.Value) {
	v := o.First()
	if v.IsError() {
		return false, &v
	}
	if v.Kind == contracts.KindBoolean {
		return v.Bool, nil
	}
	num, ok := v.AsNumber()
	if !ok {
		errVal := contracts.ErrorValue(contracts.ErrInvalidValue)
		return false, &errVal
	}
	return num != 0, nil
}

// collectNumbers gathers the numeric inputs of an aggregate. Range
// cells contribute numbers and booleans; empty cells and text cells
// are skipped rather than counted as zero. Scalar arguments coerce
// when number-like and are skipped otherwise, so SUM(1,"text",3) is 4.
// The first error value encountered wins.
func collectNumbers(args []Operand) ([]float64, *contracts.Value) {
	var numbers []float64
	var errVal *contracts.Value

	for _, arg := range args {
		if arg.IsRange {
			arg.Each(func(v contracts.Value) bool {
				if v.IsError() {
					errVal = &v
					return false
				}
				if v.Kind == contracts.KindNumber || v.Kind == contracts.KindBoolean {
					num, _ := v.AsNumber()
					numbers = append(numbers, num)
				}
				return true
			})
			if errVal != nil {
				return nil, errVal
			}
			continue
		}

		v := arg.Scalar
		if v.IsError() {
			return nil, &v
		}
		if v.IsEmpty() {
			continue
		}
		num, ok := v.AsNumber()
		if !ok {
			continue
		}
		numbers = append(numbers, num)
	}
	return numbers, nil
}

// firstOperandError scans args for an error value without coercing.
func firstOperandError(args []Operand) *contracts.Value {
	for _, arg := range args {
		var errVal *contracts.Value
		arg.Each(func(v contracts.Value) bool {
			if v.IsError() {
				errVal = &v
				return false
			}
			return true
		})
		if errVal != nil {
			return errVal
		}
	}
	return nil
}
