package main

import (
	"math"

	"lotusCalc/contracts"
)

func registerMathFunctions(r *FunctionRegistry) {
	r.Register("SUM", 1, -1, calculateSum)
	r.Register("ABS", 1, 1, oneNumber(math.Abs))
	r.Register("INT", 1, 1, oneNumber(math.Trunc))
	r.Register("ROUND", 1, 2, calculateRound)
	r.Register("MOD", 2, 2, calculateMod)
	r.Register("SQRT", 1, 1, calculateSqrt)
	r.Register("POWER", 2, 2, calculatePower)
	r.Register("SIGN", 1, 1, calculateSign)
	r.Register("TRUNC", 1, 2, calculateTrunc)
	r.Register("CEILING", 1, 2, calculateCeiling)
	r.Register("FLOOR", 1, 2, calculateFloor)
	r.Register("FACT", 1, 1, calculateFact)
	r.Register("GCD", 1, -1, calculateGcd)
	r.Register("LCM", 1, -1, calculateLcm)
	r.Register("EXP", 1, 1, oneNumber(math.Exp))
	r.Register("LN", 1, 1, calculateLn)
	r.Register("LOG", 1, 2, calculateLog)
	r.Register("SIN", 1, 1, oneNumber(math.Sin))
	r.Register("COS", 1, 1, oneNumber(math.Cos))
	r.Register("TAN", 1, 1, oneNumber(math.Tan))
	r.Register("ASIN", 1, 1, oneNumber(math.Asin))
	r.Register("ACOS", 1, 1, oneNumber(math.Acos))
	r.Register("ATAN", 1, 1, oneNumber(math.Atan))
	r.Register("ATAN2", 2, 2, calculateAtan2)
	r.Register("DEGREES", 1, 1, oneNumber(func(n float64) float64 { return n * 180 / math.Pi }))
	r.Register("RADIANS", 1, 1, oneNumber(func(n float64) float64 { return n * math.Pi / 180 }))
	r.Register("PI", 0, 0, calculatePi)
	r.Register("RAND", 0, 0, calculateRand)
}

// oneNumber adapts a float function of one argument. Domain errors
// surface as NaN and become numeric-overflow errors downstream.
func oneNumber(fn func(float64) float64) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		num, errVal := scalarNumber(args[0])
		if errVal != nil {
			return *errVal
		}
		return finishNumber(fn(num))
	}
}

func calculateSum(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	sum := 0.0
	for _, n := range numbers {
		sum += n
	}
	return finishNumber(sum)
}

func calculateRound(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	digits := 0
	if len(args) > 1 {
		if digits, errVal = scalarInt(args[1]); errVal != nil {
			return *errVal
		}
	}
	return finishNumber(roundTo(num, digits))
}

// roundTo rounds half away from zero at the given decimal position.
func roundTo(num float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(num*scale) / scale
}

func calculateMod(ctx *EvalContext, args []Operand) contracts.Value {
	a, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	b, errVal := scalarNumber(args[1])
	if errVal != nil {
		return *errVal
	}
	if b == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	return finishNumber(math.Mod(a, b))
}

func calculateSqrt(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	if num < 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(math.Sqrt(num))
}

func calculatePower(ctx *EvalContext, args []Operand) contracts.Value {
	base, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	exponent, errVal := scalarNumber(args[1])
	if errVal != nil {
		return *errVal
	}
	return finishNumber(math.Pow(base, exponent))
}

func calculateSign(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	switch {
	case num > 0:
		return contracts.NumberValue(1)
	case num < 0:
		return contracts.NumberValue(-1)
	}
	return contracts.NumberValue(0)
}

func calculateTrunc(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	digits := 0
	if len(args) > 1 {
		if digits, errVal = scalarInt(args[1]); errVal != nil {
			return *errVal
		}
	}
	scale := math.Pow(10, float64(digits))
	return finishNumber(math.Trunc(num*scale) / scale)
}

func calculateCeiling(ctx *EvalContext, args []Operand) contracts.Value {
	return roundToMultiple(args, math.Ceil)
}

func calculateFloor(ctx *EvalContext, args []Operand) contracts.Value {
	return roundToMultiple(args, math.Floor)
}

func roundToMultiple(args []Operand, direction func(float64) float64) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	significance := 1.0
	if len(args) > 1 {
		if significance, errVal = scalarNumber(args[1]); errVal != nil {
			return *errVal
		}
	}
	if significance == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	if num > 0 && significance < 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(direction(num/significance) * significance)
}

func calculateFact(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	n := int(math.Trunc(num))
	if n < 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return finishNumber(result)
}

func calculateGcd(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	result := int64(0)
	for _, n := range numbers {
		if n < 0 {
			return contracts.ErrorValue(contracts.ErrNumericOverflow)
		}
		result = gcd(result, int64(math.Trunc(n)))
	}
	return contracts.NumberValue(float64(result))
}

func calculateLcm(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	result := int64(1)
	for _, n := range numbers {
		if n < 0 {
			return contracts.ErrorValue(contracts.ErrNumericOverflow)
		}
		v := int64(math.Trunc(n))
		if v == 0 {
			return contracts.NumberValue(0)
		}
		result = result / gcd(result, v) * v
	}
	return finishNumber(float64(result))
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func calculateLn(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	if num <= 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(math.Log(num))
}

func calculateLog(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	base := 10.0
	if len(args) > 1 {
		if base, errVal = scalarNumber(args[1]); errVal != nil {
			return *errVal
		}
	}
	if num <= 0 || base <= 0 || base == 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(math.Log(num) / math.Log(base))
}

func calculateAtan2(ctx *EvalContext, args []Operand) contracts.Value {
	x, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	y, errVal := scalarNumber(args[1])
	if errVal != nil {
		return *errVal
	}
	if x == 0 && y == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	return finishNumber(math.Atan2(y, x))
}

func calculatePi(ctx *EvalContext, args []Operand) contracts.Value {
	return contracts.NumberValue(math.Pi)
}

func calculateRand(ctx *EvalContext, args []Operand) contracts.Value {
	return contracts.NumberValue(ctx.Random.Float64())
}
