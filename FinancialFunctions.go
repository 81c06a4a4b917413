package main

import (
	"math"

	"lotusCalc/contracts"
)

func registerFinancialFunctions(r *FunctionRegistry) {
	r.Register("PMT", 3, 3, calculatePmt)
	r.Register("PV", 3, 3, calculatePv)
	r.Register("FV", 3, 3, calculateFv)
	r.Register("NPV", 2, -1, calculateNpv)
	r.Register("IRR", 2, -1, calculateIrr)
	r.Register("RATE", 3, 3, calculateRate)
	r.Register("NPER", 3, 3, calculateNper)
	r.Register("CTERM", 3, 3, calculateCterm)
	r.Register("TERM", 3, 3, calculateTerm)
	r.Register("SLN", 3, 3, calculateSln)
	r.Register("SYD", 4, 4, calculateSyd)
	r.Register("DDB", 4, 4, calculateDdb)
	r.Register("IPMT", 4, 4, calculateIpmt)
	r.Register("PPMT", 4, 4, calculatePpmt)
}

func threeNumbers(args []Operand) (float64, float64, float64, *contracts.Value) {
	a, errVal := scalarNumber(args[0])
	if errVal != nil {
		return 0, 0, 0, errVal
	}
	b, errVal := scalarNumber(args[1])
	if errVal != nil {
		return 0, 0, 0, errVal
	}
	c, errVal := scalarNumber(args[2])
	if errVal != nil {
		return 0, 0, 0, errVal
	}
	return a, b, c, nil
}

// PMT computes the periodic payment that amortizes a principal over a
// term at a per-period interest rate, payments at period end.
func calculatePmt(ctx *EvalContext, args []Operand) contracts.Value {
	principal, rate, term, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if term == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	if rate == 0 {
		return finishNumber(principal / term)
	}
	discount := 1 - math.Pow(1+rate, -term)
	if discount == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	return finishNumber(principal * rate / discount)
}

func calculatePv(ctx *EvalContext, args []Operand) contracts.Value {
	payment, rate, term, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if rate == 0 {
		return finishNumber(payment * term)
	}
	return finishNumber(payment * (1 - math.Pow(1+rate, -term)) / rate)
}

func calculateFv(ctx *EvalContext, args []Operand) contracts.Value {
	payment, rate, term, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if rate == 0 {
		return finishNumber(payment * term)
	}
	return finishNumber(payment * (math.Pow(1+rate, term) - 1) / rate)
}

// NPV discounts a flow of amounts at the given rate, the first amount
// one period out.
func calculateNpv(ctx *EvalContext, args []Operand) contracts.Value {
	rate, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	if rate <= -1 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	flows, errVal := collectNumbers(args[1:])
	if errVal != nil {
		return *errVal
	}
	total := 0.0
	for i, flow := range flows {
		total += flow / math.Pow(1+rate, float64(i+1))
	}
	return finishNumber(total)
}

// IRR finds the rate giving the flow a zero net present value by
// Newton iteration from the caller's guess.
func calculateIrr(ctx *EvalContext, args []Operand) contracts.Value {
	guess, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	flows, errVal := collectNumbers(args[1:])
	if errVal != nil {
		return *errVal
	}
	if len(flows) < 2 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}

	rate := guess
	for iteration := 0; iteration < 100; iteration++ {
		if rate <= -1 {
			return contracts.ErrorValue(contracts.ErrNumericOverflow)
		}
		value := 0.0
		derivative := 0.0
		for i, flow := range flows {
			power := float64(i)
			value += flow / math.Pow(1+rate, power)
			derivative -= power * flow / math.Pow(1+rate, power+1)
		}
		if math.Abs(value) < 1e-9 {
			return finishNumber(rate)
		}
		if derivative == 0 {
			break
		}
		rate -= value / derivative
	}
	return contracts.ErrorValue(contracts.ErrNumericOverflow)
}

// RATE solves the compound growth rate turning a present value into a
// future value over a term.
func calculateRate(ctx *EvalContext, args []Operand) contracts.Value {
	future, present, term, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if present == 0 || term == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	ratio := future / present
	if ratio <= 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(math.Pow(ratio, 1/term) - 1)
}

// NPER counts the periods needed to amortize a principal with a fixed
// payment at a per-period rate.
func calculateNper(ctx *EvalContext, args []Operand) contracts.Value {
	rate, payment, principal, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if payment == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	if rate == 0 {
		return finishNumber(principal / payment)
	}
	inner := 1 - principal*rate/payment
	if inner <= 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(-math.Log(inner) / math.Log(1+rate))
}

// CTERM counts compounding periods for a present value to reach a
// future value at a fixed rate.
func calculateCterm(ctx *EvalContext, args []Operand) contracts.Value {
	rate, future, present, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if present == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	ratio := future / present
	if ratio <= 0 || rate <= -1 || rate == 0 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(math.Log(ratio) / math.Log(1+rate))
}

// TERM counts payment periods for an annuity to reach a future value.
func calculateTerm(ctx *EvalContext, args []Operand) contracts.Value {
	payment, rate, future, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if payment == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	if rate == 0 {
		return finishNumber(future / payment)
	}
	inner := 1 + future*rate/payment
	if inner <= 0 || rate <= -1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber(math.Log(inner) / math.Log(1+rate))
}

func calculateSln(ctx *EvalContext, args []Operand) contracts.Value {
	cost, salvage, life, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if life == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	return finishNumber((cost - salvage) / life)
}

func calculateSyd(ctx *EvalContext, args []Operand) contracts.Value {
	cost, salvage, life, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	period, errVal := scalarNumber(args[3])
	if errVal != nil {
		return *errVal
	}
	if life <= 0 || period < 1 || period > life {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return finishNumber((cost - salvage) * (life - period + 1) * 2 / (life * (life + 1)))
}

// DDB depreciates at double the straight-line rate, never dropping
// book value below salvage.
func calculateDdb(ctx *EvalContext, args []Operand) contracts.Value {
	cost, salvage, life, errVal := threeNumbers(args)
	if errVal != nil {
		return *errVal
	}
	period, errVal := scalarInt(args[3])
	if errVal != nil {
		return *errVal
	}
	if life <= 0 || period < 1 || float64(period) > life {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	book := cost
	depreciation := 0.0
	for i := 1; i <= period; i++ {
		depreciation = book * 2 / life
		if book-depreciation < salvage {
			depreciation = book - salvage
		}
		book -= depreciation
	}
	return finishNumber(depreciation)
}

func calculateIpmt(ctx *EvalContext, args []Operand) contracts.Value {
	interest, _, errVal := amortizationSplit(args)
	if errVal != nil {
		return *errVal
	}
	return finishNumber(interest)
}

func calculatePpmt(ctx *EvalContext, args []Operand) contracts.Value {
	_, principalPart, errVal := amortizationSplit(args)
	if errVal != nil {
		return *errVal
	}
	return finishNumber(principalPart)
}

// amortizationSplit divides the level payment of a given period into
// its interest and principal portions.
func amortizationSplit(args []Operand) (float64, float64, *contracts.Value) {
	rate, errVal := scalarNumber(args[0])
	if errVal != nil {
		return 0, 0, errVal
	}
	period, errVal := scalarInt(args[1])
	if errVal != nil {
		return 0, 0, errVal
	}
	term, errVal := scalarNumber(args[2])
	if errVal != nil {
		return 0, 0, errVal
	}
	principal, errVal := scalarNumber(args[3])
	if errVal != nil {
		return 0, 0, errVal
	}
	if period < 1 || float64(period) > term {
		bad := contracts.ErrorValue(contracts.ErrNumericOverflow)
		return 0, 0, &bad
	}
	if rate == 0 {
		if term == 0 {
			bad := contracts.ErrorValue(contracts.ErrDivideByZero)
			return 0, 0, &bad
		}
		return 0, principal / term, nil
	}
	discount := 1 - math.Pow(1+rate, -term)
	if discount == 0 {
		bad := contracts.ErrorValue(contracts.ErrDivideByZero)
		return 0, 0, &bad
	}
	payment := principal * rate / discount
	elapsed := float64(period - 1)
	balance := principal*math.Pow(1+rate, elapsed) - payment*(math.Pow(1+rate, elapsed)-1)/rate
	interest := balance * rate
	return interest, payment - interest, nil
}
