package main

import (
	"testing"

	"lotusCalc/contracts"
)

func TestDateTimeFunctions(t *testing.T) {
	// the test clock is pinned at 2024-03-15 10:30:00 UTC
	ctx := _evalContext(t, nil)

	t.Run("DATE", func(t *testing.T) {
		_assertNumber(t, 1, ctx, "DATE(1900,1,1)")
		_assertNumber(t, 59, ctx, "DATE(1900,2,28)")
		// serial 60 is reserved for the phantom 1900-02-29
		_assertNumber(t, 61, ctx, "DATE(1900,3,1)")
		_assertNumber(t, 45366, ctx, "DATE(2024,3,15)")
		// two-digit years count from 1900
		_assertNumber(t, 45366, ctx, "DATE(124,3,15)")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "DATE(1899,1,1)")
	})

	t.Run("DATEVALUE", func(t *testing.T) {
		_assertNumber(t, 45366, ctx, `DATEVALUE("2024-03-15")`)
		_assertNumber(t, 45366, ctx, `DATEVALUE("03/15/2024")`)
		_assertNumber(t, 45366, ctx, `DATEVALUE("15-Mar-2024")`)
		_assertError(t, contracts.ErrInvalidValue, ctx, `DATEVALUE("not a date")`)
	})

	t.Run("date-parts", func(t *testing.T) {
		_assertNumber(t, 15, ctx, "DAY(DATE(2024,3,15))")
		_assertNumber(t, 3, ctx, "MONTH(DATE(2024,3,15))")
		_assertNumber(t, 2024, ctx, "YEAR(DATE(2024,3,15))")
		_assertNumber(t, 1, ctx, "DAY(DATE(1900,3,1))")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "DAY(0)")
	})

	t.Run("WEEKDAY", func(t *testing.T) {
		// 1900-01-01 was a Monday; Sunday is day 1
		_assertNumber(t, 2, ctx, "WEEKDAY(1)")
		_assertNumber(t, 6, ctx, "WEEKDAY(DATE(2024,3,15))")
	})

	t.Run("TODAY-NOW", func(t *testing.T) {
		_assertNumber(t, 45366, ctx, "TODAY()")
		_assertNumber(t, 45366.4375, ctx, "NOW()")
	})

	t.Run("TIME", func(t *testing.T) {
		_assertNumber(t, 0.4375, ctx, "TIME(10,30,0)")
		_assertNumber(t, 0, ctx, "TIME(0,0,0)")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "TIME(24,0,0)")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "TIME(10,60,0)")
	})

	t.Run("TIMEVALUE", func(t *testing.T) {
		_assertNumber(t, 0.4375, ctx, `TIMEVALUE("10:30")`)
		_assertNumber(t, 0.4375, ctx, `TIMEVALUE("10:30:00")`)
		_assertNumber(t, 0.9375, ctx, `TIMEVALUE("10:30 PM")`)
		_assertError(t, contracts.ErrInvalidValue, ctx, `TIMEVALUE("sometime")`)
	})

	t.Run("time-parts", func(t *testing.T) {
		_assertNumber(t, 10, ctx, "HOUR(NOW())")
		_assertNumber(t, 30, ctx, "MINUTE(NOW())")
		_assertNumber(t, 0, ctx, "SECOND(NOW())")
		_assertNumber(t, 45, ctx, "SECOND(TIME(1,2,45))")
	})

	t.Run("DAYS", func(t *testing.T) {
		_assertNumber(t, 7, ctx, "DAYS(10,3)")
		_assertNumber(t, -7, ctx, "DAYS(3,10)")
		_assertNumber(t, 366, ctx, "DAYS(DATE(2025,1,1),DATE(2024,1,1))")
	})

	t.Run("EDATE", func(t *testing.T) {
		// 2024-01-31 plus one month lands on leap day
		_assertNumber(t, 29, ctx, "DAY(EDATE(DATE(2024,1,31),1))")
		_assertNumber(t, 2, ctx, "MONTH(EDATE(DATE(2024,1,31),1))")
		_assertNumber(t, 15, ctx, "DAY(EDATE(DATE(2024,3,15),-1))")
		_assertNumber(t, 2023, ctx, "YEAR(EDATE(DATE(2024,3,15),-12))")
	})

	t.Run("EOMONTH", func(t *testing.T) {
		_assertNumber(t, 29, ctx, "DAY(EOMONTH(DATE(2024,2,10),0))")
		_assertNumber(t, 31, ctx, "DAY(EOMONTH(DATE(2024,2,10),1))")
		_assertNumber(t, 31, ctx, "DAY(EOMONTH(DATE(2024,3,15),-5))")
	})

	t.Run("YEARFRAC", func(t *testing.T) {
		_assertNumber(t, 1, ctx, "YEARFRAC(DATE(2024,1,1),DATE(2025,1,1))")
		_assertNumber(t, 0.25, ctx, "YEARFRAC(DATE(2024,1,1),DATE(2024,4,1),0)")
		_assertNumber(t, 366.0/360, ctx, "YEARFRAC(DATE(2024,1,1),DATE(2025,1,1),2)")
		_assertNumber(t, 366.0/365, ctx, "YEARFRAC(DATE(2024,1,1),DATE(2025,1,1),3)")
		// the order of the two dates does not matter
		_assertNumber(t, 1, ctx, "YEARFRAC(DATE(2025,1,1),DATE(2024,1,1))")
		_assertError(t, contracts.ErrNumericOverflow, ctx, "YEARFRAC(1,2,9)")
	})
}
