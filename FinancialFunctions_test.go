package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lotusCalc/contracts"
)

func TestFinancialFunctions(t *testing.T) {
	ctx := _evalContext(t, nil)

	_assertNear := func(t *testing.T, expected float64, body string, tolerance float64) {
		result := _eval(t, ctx, body)
		assert.Equal(t, contracts.KindNumber, result.Kind, body)
		assert.InDelta(t, expected, result.Num, tolerance, body)
	}

	t.Run("PMT", func(t *testing.T) {
		// 100000 at 1% monthly over 360 payments
		_assertNear(t, 1028.61, "PMT(100000,0.01,360)", 0.01)
		_assertNumber(t, 100, ctx, "PMT(1200,0,12)")
		_assertError(t, contracts.ErrDivideByZero, ctx, "PMT(1000,0.01,0)")
	})

	t.Run("PV-FV", func(t *testing.T) {
		_assertNear(t, 6970.05, "PV(100,0.01,120)", 0.01)
		_assertNumber(t, 1200, ctx, "PV(100,0,12)")
		_assertNear(t, 23003.87, "FV(100,0.01,120)", 0.01)
		_assertNumber(t, 1200, ctx, "FV(100,0,12)")
	})

	t.Run("NPV", func(t *testing.T) {
		_assertNear(t, 248.68, "NPV(0.1,100,100,100)", 0.01)
		_assertNumber(t, 300, ctx, "NPV(0,100,100,100)")
		_assertError(t, contracts.ErrDivideByZero, ctx, "NPV(-1,100)")
	})

	t.Run("IRR", func(t *testing.T) {
		// -100 now, +110 in one period
		_assertNear(t, 0.1, "IRR(0.1,-100,110)", 1e-6)
		_assertNear(t, 0.0970, "IRR(0.1,-1000,400,400,400)", 1e-3)
		_assertError(t, contracts.ErrNumericOverflow, ctx, "IRR(0.1,100)")
	})

	t.Run("RATE", func(t *testing.T) {
		_assertNear(t, 0.0718, "RATE(2000,1000,10)", 1e-4)
		_assertError(t, contracts.ErrDivideByZero, ctx, "RATE(2000,0,10)")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "RATE(-2000,1000,10)")
	})

	t.Run("NPER-CTERM-TERM", func(t *testing.T) {
		_assertNumber(t, 12, ctx, "NPER(0,100,1200)")
		_assertNear(t, 51.34, "NPER(0.01,25,1000)", 0.01)
		_assertNear(t, 7.27, "CTERM(0.1,2000,1000)", 0.01)
		_assertNumber(t, 12, ctx, "TERM(100,0,1200)")
		_assertNear(t, 11.39, "TERM(100,0.01,1200)", 0.01)
		_assertError(t, contracts.ErrDivideByZero, ctx, "NPER(0.1,0,1000)")
	})

	t.Run("depreciation", func(t *testing.T) {
		_assertNumber(t, 900, ctx, "SLN(10000,1000,10)")
		// SYD over 5 years on 9000 depreciable value
		_assertNumber(t, 3000, ctx, "SYD(10000,1000,5,1)")
		_assertNumber(t, 600, ctx, "SYD(10000,1000,5,5)")
		_assertNumber(t, 4000, ctx, "DDB(10000,1000,5,1)")
		_assertNumber(t, 2400, ctx, "DDB(10000,1000,5,2)")
		// late periods are clamped so book value never drops below salvage
		_assertNear(t, 296, "DDB(10000,1000,5,5)", 0.01)
		_assertError(t, contracts.ErrNumericOverflow, ctx, "SYD(10000,1000,5,6)")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "DDB(10000,1000,5,0)")
	})

	t.Run("IPMT-PPMT", func(t *testing.T) {
		// the sum of both portions is the level payment
		_assertNear(t, 10.0, "IPMT(0.01,1,360,1000)", 1e-9)
		_assertNear(t, 10.2861, "IPMT(0.01,1,360,1000)+PPMT(0.01,1,360,1000)", 1e-3)
		_assertNumber(t, 100, ctx, "PPMT(0,3,12,1200)")
		_assertNumber(t, 0, ctx, "IPMT(0,3,12,1200)")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "IPMT(0.01,0,12,1000)")
	})
}
