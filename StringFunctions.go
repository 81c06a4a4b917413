package main

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"lotusCalc/contracts"
)

func registerStringFunctions(r *FunctionRegistry) {
	r.Register("LEFT", 1, 2, calculateLeft)
	r.Register("RIGHT", 1, 2, calculateRight)
	r.Register("MID", 3, 3, calculateMid)
	r.Register("LENGTH", 1, 1, calculateLength)
	r.Alias("LEN", "LENGTH")
	r.Register("FIND", 2, 3, calculateFind)
	r.Register("SEARCH", 2, 3, calculateSearch)
	r.Register("REPLACE", 4, 4, calculateReplace)
	r.Register("SUBSTITUTE", 3, 4, calculateSubstitute)
	r.Register("UPPER", 1, 1, oneText(strings.ToUpper))
	r.Register("LOWER", 1, 1, oneText(strings.ToLower))
	r.Register("PROPER", 1, 1, oneText(properCase))
	r.Register("TRIM", 1, 1, oneText(trimSpaces))
	r.Register("CLEAN", 1, 1, oneText(cleanControl))
	r.Register("VALUE", 1, 1, calculateValue)
	r.Register("STRING", 2, 2, calculateString)
	r.Register("TEXT", 2, 2, calculateTextFn)
	r.Register("CHAR", 1, 1, calculateChar)
	r.Register("CODE", 1, 1, calculateCode)
	r.Register("S", 1, 1, calculateS)
	r.Register("T", 1, 1, calculateS)
	r.Register("REPEAT", 2, 2, calculateRepeat)
	r.Alias("REPT", "REPEAT")
	r.Register("EXACT", 2, 2, calculateExact)
	r.Register("CONCATENATE", 1, -1, calculateConcatenate)
	r.Alias("CONCAT", "CONCATENATE")
	r.Register("FIXED", 1, 3, calculateFixed)
	r.Register("DOLLAR", 1, 2, calculateDollar)
}

func oneText(fn func(string) string) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		text, errVal := scalarText(args[0])
		if errVal != nil {
			return *errVal
		}
		return contracts.TextValue(fn(text))
	}
}

func calculateLeft(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	count := 1
	if len(args) > 1 {
		if count, errVal = scalarInt(args[1]); errVal != nil {
			return *errVal
		}
	}
	if count < 0 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	runes := []rune(text)
	if count > len(runes) {
		count = len(runes)
	}
	return contracts.TextValue(string(runes[:count]))
}

func calculateRight(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	count := 1
	if len(args) > 1 {
		if count, errVal = scalarInt(args[1]); errVal != nil {
			return *errVal
		}
	}
	if count < 0 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	runes := []rune(text)
	if count > len(runes) {
		count = len(runes)
	}
	return contracts.TextValue(string(runes[len(runes)-count:]))
}

// MID uses a zero-based start offset.
func calculateMid(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	start, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	count, errVal := scalarInt(args[2])
	if errVal != nil {
		return *errVal
	}
	if start < 0 || count < 0 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	runes := []rune(text)
	if start >= len(runes) {
		return contracts.TextValue("")
	}
	end := start + count
	if end > len(runes) {
		end = len(runes)
	}
	return contracts.TextValue(string(runes[start:end]))
}

func calculateLength(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	return contracts.NumberValue(float64(len([]rune(text))))
}

// FIND is case sensitive and returns a zero-based offset; a match
// that does not exist is an error, not a sentinel number.
func calculateFind(ctx *EvalContext, args []Operand) contracts.Value {
	return findIn(args, false)
}

func calculateSearch(ctx *EvalContext, args []Operand) contracts.Value {
	return findIn(args, true)
}

func findIn(args []Operand, foldCase bool) contracts.Value {
	needle, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	haystack, errVal := scalarText(args[1])
	if errVal != nil {
		return *errVal
	}
	start := 0
	if len(args) > 2 {
		if start, errVal = scalarInt(args[2]); errVal != nil {
			return *errVal
		}
	}
	if foldCase {
		needle = strings.ToUpper(needle)
		haystack = strings.ToUpper(haystack)
	}
	runes := []rune(haystack)
	if start < 0 || start > len(runes) {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	offset := strings.Index(string(runes[start:]), needle)
	if offset < 0 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return contracts.NumberValue(float64(start + len([]rune(string(runes[start:])[:offset]))))
}

// REPLACE uses a zero-based start offset.
func calculateReplace(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	start, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	count, errVal := scalarInt(args[2])
	if errVal != nil {
		return *errVal
	}
	replacement, errVal := scalarText(args[3])
	if errVal != nil {
		return *errVal
	}
	runes := []rune(text)
	if start < 0 || count < 0 || start > len(runes) {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	end := start + count
	if end > len(runes) {
		end = len(runes)
	}
	return contracts.TextValue(string(runes[:start]) + replacement + string(runes[end:]))
}

func calculateSubstitute(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	old, errVal := scalarText(args[1])
	if errVal != nil {
		return *errVal
	}
	replacement, errVal := scalarText(args[2])
	if errVal != nil {
		return *errVal
	}
	if old == "" {
		return contracts.TextValue(text)
	}
	if len(args) < 4 {
		return contracts.TextValue(strings.ReplaceAll(text, old, replacement))
	}
	instance, errVal := scalarInt(args[3])
	if errVal != nil {
		return *errVal
	}
	if instance < 1 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	offset := 0
	for n := 1; ; n++ {
		idx := strings.Index(text[offset:], old)
		if idx < 0 {
			return contracts.TextValue(text)
		}
		idx += offset
		if n == instance {
			return contracts.TextValue(text[:idx] + replacement + text[idx+len(old):])
		}
		offset = idx + len(old)
	}
}

func properCase(text string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range text {
		if unicode.IsLetter(r) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			b.WriteRune(r)
			startOfWord = true
		}
	}
	return b.String()
}

// trimSpaces drops leading and trailing blanks and collapses interior
// runs to a single space.
func trimSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func cleanControl(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func calculateValue(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if v.IsError() {
		return v
	}
	if v.Kind == contracts.KindNumber {
		return v
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(textOf(v)), 64)
	if err != nil {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return finishNumber(num)
}

func calculateString(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	decimals, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if decimals < 0 || decimals > 15 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return contracts.TextValue(strconv.FormatFloat(num, 'f', decimals, 64))
}

// TEXT honours the decimal places of a "0.00" style pattern and falls
// back to the plain display rendering for anything else.
func calculateTextFn(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if v.IsError() {
		return v
	}
	format, errVal := scalarText(args[1])
	if errVal != nil {
		return *errVal
	}
	num, ok := v.AsNumber()
	if !ok {
		return contracts.TextValue(textOf(v))
	}
	if dot := strings.IndexByte(format, '.'); dot >= 0 {
		decimals := strings.Count(format[dot+1:], "0")
		return contracts.TextValue(strconv.FormatFloat(num, 'f', decimals, 64))
	}
	if strings.ContainsAny(format, "0#") {
		return contracts.TextValue(strconv.FormatFloat(math.Round(num), 'f', 0, 64))
	}
	return contracts.TextValue(v.Display())
}

func calculateChar(ctx *EvalContext, args []Operand) contracts.Value {
	code, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	if code < 1 || code > unicode.MaxRune {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return contracts.TextValue(string(rune(code)))
}

func calculateCode(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	if text == "" {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return contracts.NumberValue(float64([]rune(text)[0]))
}

// S yields the text content of its argument and the empty string for
// anything that is not text.
func calculateS(ctx *EvalContext, args []Operand) contracts.Value {
	v := args[0].First()
	if v.IsError() {
		return v
	}
	if v.Kind == contracts.KindText {
		return v
	}
	return contracts.TextValue("")
}

func calculateRepeat(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	count, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if count < 0 || count*len(text) > 1<<20 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return contracts.TextValue(strings.Repeat(text, count))
}

func calculateExact(ctx *EvalContext, args []Operand) contracts.Value {
	left, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	right, errVal := scalarText(args[1])
	if errVal != nil {
		return *errVal
	}
	return contracts.BooleanValue(left == right)
}

func calculateConcatenate(ctx *EvalContext, args []Operand) contracts.Value {
	var b strings.Builder
	for _, arg := range args {
		var errVal *contracts.Value
		arg.Each(func(v contracts.Value) bool {
			if v.IsError() {
				errVal = &v
				return false
			}
			b.WriteString(textOf(v))
			return true
		})
		if errVal != nil {
			return *errVal
		}
	}
	return contracts.TextValue(b.String())
}

func calculateFixed(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	decimals := 2
	if len(args) > 1 {
		if decimals, errVal = scalarInt(args[1]); errVal != nil {
			return *errVal
		}
	}
	noCommas := false
	if len(args) > 2 {
		if noCommas, errVal = scalarBool(args[2]); errVal != nil {
			return *errVal
		}
	}
	if decimals < 0 {
		num = roundTo(num, decimals)
		decimals = 0
	}
	text := strconv.FormatFloat(num, 'f', decimals, 64)
	if !noCommas {
		text = groupThousands(text)
	}
	return contracts.TextValue(text)
}

func calculateDollar(ctx *EvalContext, args []Operand) contracts.Value {
	num, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	decimals := 2
	if len(args) > 1 {
		if decimals, errVal = scalarInt(args[1]); errVal != nil {
			return *errVal
		}
	}
	if decimals < 0 {
		num = roundTo(num, decimals)
		decimals = 0
	}
	text := groupThousands(strconv.FormatFloat(math.Abs(num), 'f', decimals, 64))
	if num < 0 {
		return contracts.TextValue("($" + text + ")")
	}
	return contracts.TextValue("$" + text)
}

func groupThousands(text string) string {
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign = "-"
		text = text[1:]
	}
	intPart := text
	fracPart := ""
	if dot := strings.IndexByte(text, '.'); dot >= 0 {
		intPart, fracPart = text[:dot], text[dot:]
	}
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + fracPart
}
