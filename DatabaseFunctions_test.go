package main

import (
	"testing"

	"lotusCalc/contracts"
)

func TestDatabaseFunctions(t *testing.T) {
	// A1:C5 is the database, E1:F3 the criteria block
	ctx := _evalContext(t, map[string]string{
		"A1": "Name", "B1": "Dept", "C1": "Salary",
		"A2": "alice", "B2": "eng", "C2": "100",
		"A3": "bob", "B3": "eng", "C3": "80",
		"A4": "carol", "B4": "ops", "C4": "90",
		"A5": "dave", "B5": "ops", "C5": "70",

		"E1": "Dept", "F1": "Salary",
		"E2": "eng",
	})

	t.Run("DSUM", func(t *testing.T) {
		_assertNumber(t, 180, ctx, `DSUM(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 340, ctx, "DSUM(A1:C5,2,E1:F1)")
	})

	t.Run("DAVG-DCOUNT", func(t *testing.T) {
		_assertNumber(t, 90, ctx, `DAVG(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 90, ctx, `DAVERAGE(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 2, ctx, `DCOUNT(A1:C5,"Salary",E1:F2)`)
		// the name column holds no numbers
		_assertNumber(t, 0, ctx, `DCOUNT(A1:C5,"Name",E1:F2)`)
		_assertNumber(t, 2, ctx, `DCOUNTA(A1:C5,"Name",E1:F2)`)
	})

	t.Run("DMIN-DMAX", func(t *testing.T) {
		_assertNumber(t, 80, ctx, `DMIN(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 100, ctx, `DMAX(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 100, ctx, `DMAX(A1:C5,"Salary",E1:F1)`)
	})

	t.Run("comparison-criteria", func(t *testing.T) {
		crit := _evalContext(t, map[string]string{
			"A1": "Name", "B1": "Dept", "C1": "Salary",
			"A2": "alice", "B2": "eng", "C2": "100",
			"A3": "bob", "B3": "eng", "C3": "80",
			"A4": "carol", "B4": "ops", "C4": "90",

			"E1": "Salary", "E2": ">=90",
		})
		_assertNumber(t, 190, crit, `DSUM(A1:C4,"Salary",E1:E2)`)
		_assertNumber(t, 2, crit, `DCOUNT(A1:C4,"Salary",E1:E2)`)
	})

	t.Run("criteria-rows-are-alternatives", func(t *testing.T) {
		alt := _evalContext(t, map[string]string{
			"A1": "Dept", "B1": "Salary",
			"A2": "eng", "B2": "100",
			"A3": "ops", "B3": "90",
			"A4": "hr", "B4": "50",

			"D1": "Dept",
			"D2": "eng",
			"D3": "hr",
		})
		_assertNumber(t, 150, alt, `DSUM(A1:B4,"Salary",D1:D3)`)
	})

	t.Run("deviation", func(t *testing.T) {
		// eng salaries 100 and 80: population std 10, sample variance 200
		_assertNumber(t, 10, ctx, `DSTD(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 10, ctx, `DSTDP(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 100, ctx, `DVAR(A1:C5,"Salary",E1:F2)`)
		_assertNumber(t, 200, ctx, `DSTDEV(A1:C5,"Salary",E1:F2)^2`)
	})

	t.Run("DGET", func(t *testing.T) {
		single := _evalContext(t, map[string]string{
			"A1": "Name", "B1": "Salary",
			"A2": "alice", "B2": "100",
			"A3": "bob", "B3": "80",

			"D1": "Name", "D2": "alice",
			"E1": "Name",
		})
		_assertNumber(t, 100, single, `DGET(A1:B3,"Salary",D1:D2)`)
		// zero matches and multiple matches are both refusals
		_assertError(t, contracts.ErrNumericOverflow, single, `DGET(A1:B3,"Salary",E1:E1)`)

		missing := _evalContext(t, map[string]string{
			"A1": "Name", "B1": "Salary",
			"A2": "alice", "B2": "100",
			"D1": "Name", "D2": "zed",
		})
		_assertError(t, contracts.ErrInvalidValue, missing, `DGET(A1:B2,"Salary",D1:D2)`)
	})

	t.Run("bad-field", func(t *testing.T) {
		_assertError(t, contracts.ErrInvalidValue, ctx, `DSUM(A1:C5,"Bonus",E1:F2)`)
		_assertError(t, contracts.ErrInvalidValue, ctx, "DSUM(A1:C5,9,E1:F2)")
		_assertError(t, contracts.ErrInvalidValue, ctx, `DSUM(5,"Salary",E1:F2)`)
	})
}
