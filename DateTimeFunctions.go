package main

import (
	"math"
	"strings"
	"time"

	"lotusCalc/contracts"
)

func registerDateTimeFunctions(r *FunctionRegistry) {
	r.Register("DATE", 3, 3, calculateDate)
	r.Register("DATEVALUE", 1, 1, calculateDateValue)
	r.Register("DAY", 1, 1, datePart(func(t time.Time) int { return t.Day() }))
	r.Register("MONTH", 1, 1, datePart(func(t time.Time) int { return int(t.Month()) }))
	r.Register("YEAR", 1, 1, datePart(func(t time.Time) int { return t.Year() }))
	r.Register("WEEKDAY", 1, 1, calculateWeekday)
	r.Register("TODAY", 0, 0, calculateToday)
	r.Register("NOW", 0, 0, calculateNow)
	r.Register("TIME", 3, 3, calculateTime)
	r.Register("TIMEVALUE", 1, 1, calculateTimeValue)
	r.Register("HOUR", 1, 1, timePart(3600))
	r.Register("MINUTE", 1, 1, timePart(60))
	r.Register("SECOND", 1, 1, timePart(1))
	r.Register("DAYS", 2, 2, calculateDays)
	r.Register("EDATE", 2, 2, calculateEDate)
	r.Register("EOMONTH", 2, 2, calculateEOMonth)
	r.Register("YEARFRAC", 2, 3, calculateYearFrac)
}

// Date serial numbers count days from an epoch of 1899-12-31, so
// serial 1 is 1900-01-01. The numbering deliberately reproduces the
// classic off-by-one around February 1900: serial 60 stands for the
// nonexistent 1900-02-29, and every later date is shifted up by one.
var serialEpoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

func serialFromTime(t time.Time) float64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	serial := math.Round(day.Sub(serialEpoch).Hours() / 24)
	if serial >= 60 {
		serial++
	}
	return serial
}

func timeFromSerial(serial float64) time.Time {
	days := int(math.Floor(serial))
	if days >= 60 {
		days--
	}
	return serialEpoch.AddDate(0, 0, days)
}

func dayFraction(t time.Time) float64 {
	return (float64(t.Hour())*3600 + float64(t.Minute())*60 + float64(t.Second())) / 86400
}

func calculateDate(ctx *EvalContext, args []Operand) contracts.Value {
	year, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	month, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	day, errVal := scalarInt(args[2])
	if errVal != nil {
		return *errVal
	}
	// two-digit years are relative to 1900
	if year >= 0 && year < 200 {
		year += 1900
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	serial := serialFromTime(t)
	if serial < 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(serial)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2-Jan-2006",
	"2-Jan-06",
	"January 2, 2006",
}

func calculateDateValue(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return contracts.NumberValue(serialFromTime(t))
		}
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

func datePart(part func(time.Time) int) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		serial, errVal := scalarNumber(args[0])
		if errVal != nil {
			return *errVal
		}
		if serial < 1 {
			return contracts.ErrorValue(contracts.ErrNumericOverflow)
		}
		return contracts.NumberValue(float64(part(timeFromSerial(serial))))
	}
}

// WEEKDAY numbers days 1 through 7 starting at Sunday.
func calculateWeekday(ctx *EvalContext, args []Operand) contracts.Value {
	serial, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	if serial < 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(float64(timeFromSerial(serial).Weekday()) + 1)
}

func calculateToday(ctx *EvalContext, args []Operand) contracts.Value {
	return contracts.NumberValue(serialFromTime(ctx.Clock.Now()))
}

func calculateNow(ctx *EvalContext, args []Operand) contracts.Value {
	now := ctx.Clock.Now()
	return contracts.NumberValue(serialFromTime(now) + dayFraction(now))
}

func calculateTime(ctx *EvalContext, args []Operand) contracts.Value {
	hour, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	minute, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	second, errVal := scalarInt(args[2])
	if errVal != nil {
		return *errVal
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(float64(hour*3600+minute*60+second) / 86400)
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

func calculateTimeValue(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	text = strings.TrimSpace(text)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return contracts.NumberValue(dayFraction(t))
		}
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

// timePart extracts hour, minute or second from the fractional part
// of a serial.
func timePart(unitSeconds int) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		serial, errVal := scalarNumber(args[0])
		if errVal != nil {
			return *errVal
		}
		fraction := serial - math.Floor(serial)
		seconds := int(math.Round(fraction * 86400))
		switch unitSeconds {
		case 3600:
			return contracts.NumberValue(float64(seconds / 3600))
		case 60:
			return contracts.NumberValue(float64(seconds / 60 % 60))
		}
		return contracts.NumberValue(float64(seconds % 60))
	}
}

func calculateDays(ctx *EvalContext, args []Operand) contracts.Value {
	end, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	start, errVal := scalarNumber(args[1])
	if errVal != nil {
		return *errVal
	}
	return finishNumber(math.Floor(end) - math.Floor(start))
}

// EDATE shifts a date by whole months, clamping the day of month to
// what the target month has.
func calculateEDate(ctx *EvalContext, args []Operand) contracts.Value {
	serial, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	months, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if serial < 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	t := timeFromSerial(serial)
	shifted := shiftMonths(t, months, false)
	result := serialFromTime(shifted)
	if result < 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(result)
}

func calculateEOMonth(ctx *EvalContext, args []Operand) contracts.Value {
	serial, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	months, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if serial < 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	t := timeFromSerial(serial)
	shifted := shiftMonths(t, months, true)
	result := serialFromTime(shifted)
	if result < 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(result)
}

func shiftMonths(t time.Time, months int, endOfMonth bool) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := firstOfMonth.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if endOfMonth || day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

// YEARFRAC measures the fraction of a year between two dates. Basis 0
// and 4 use 30/360 day counts, 2 uses actual/360, 3 actual/365, and
// basis 1 approximates actual/actual with a 365.25 day year.
func calculateYearFrac(ctx *EvalContext, args []Operand) contracts.Value {
	startSerial, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	endSerial, errVal := scalarNumber(args[1])
	if errVal != nil {
		return *errVal
	}
	basis := 0
	if len(args) > 2 {
		if basis, errVal = scalarInt(args[2]); errVal != nil {
			return *errVal
		}
	}
	if startSerial > endSerial {
		startSerial, endSerial = endSerial, startSerial
	}

	switch basis {
	case 0, 4:
		start := timeFromSerial(startSerial)
		end := timeFromSerial(endSerial)
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 {
			if basis == 4 || d1 == 30 {
				d2 = 30
			}
		}
		days := (end.Year()-start.Year())*360 + (int(end.Month())-int(start.Month()))*30 + d2 - d1
		return finishNumber(float64(days) / 360)
	case 1:
		return finishNumber((endSerial - startSerial) / 365.25)
	case 2:
		return finishNumber((endSerial - startSerial) / 360)
	case 3:
		return finishNumber((endSerial - startSerial) / 365)
	}
	return contracts.ErrorValue(contracts.ErrNumericOverflow)
}
