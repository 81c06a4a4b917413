package main

import (
	"math"
	"sort"

	"lotusCalc/contracts"
)

func registerStatisticalFunctions(r *FunctionRegistry) {
	r.Register("AVG", 1, -1, calculateAvg)
	r.Alias("AVERAGE", "AVG")
	r.Register("COUNT", 1, -1, calculateCount)
	r.Register("COUNTA", 1, -1, calculateCountA)
	r.Register("COUNTBLANK", 1, -1, calculateCountBlank)
	r.Register("MIN", 1, -1, calculateMin)
	r.Register("MAX", 1, -1, calculateMax)
	r.Register("PRODUCT", 1, -1, calculateProduct)
	r.Register("STD", 1, -1, deviation(true, false))
	r.Alias("STDP", "STD")
	r.Register("STDS", 1, -1, deviation(false, false))
	r.Alias("STDEV", "STDS")
	r.Register("VAR", 1, -1, deviation(true, true))
	r.Alias("VARP", "VAR")
	r.Register("VARS", 1, -1, deviation(false, true))
	r.Register("SUMSQ", 1, -1, calculateSumSq)
	r.Register("MEDIAN", 1, -1, calculateMedian)
	r.Register("MODE", 1, -1, calculateMode)
	r.Register("LARGE", 2, 2, calculateLarge)
	r.Register("SMALL", 2, 2, calculateSmall)
	r.Register("RANK", 2, 3, calculateRank)
	r.Register("PERCENTILE", 2, 2, calculatePercentile)
	r.Register("QUARTILE", 2, 2, calculateQuartile)
	r.Register("RANDBETWEEN", 2, 2, calculateRandBetween)
	r.Register("SUMPRODUCT", 1, -1, calculateSumProduct)
	r.Register("PERMUT", 2, 2, calculatePermut)
	r.Register("COMBIN", 2, 2, calculateCombin)
	r.Register("GEOMEAN", 1, -1, calculateGeoMean)
	r.Register("HARMEAN", 1, -1, calculateHarMean)
}

func calculateAvg(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if len(numbers) == 0 {
		return contracts.ErrorValue(contracts.ErrDivideByZero)
	}
	sum := 0.0
	for _, n := range numbers {
		sum += n
	}
	return finishNumber(sum / float64(len(numbers)))
}

func calculateCount(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	return contracts.NumberValue(float64(len(numbers)))
}

// COUNTA counts anything non-empty, error values included. Errors do
// not propagate out of it.
func calculateCountA(ctx *EvalContext, args []Operand) contracts.Value {
	count := 0
	for _, arg := range args {
		arg.Each(func(v contracts.Value) bool {
			if !v.IsEmpty() {
				count++
			}
			return true
		})
	}
	return contracts.NumberValue(float64(count))
}

func calculateCountBlank(ctx *EvalContext, args []Operand) contracts.Value {
	count := 0
	for _, arg := range args {
		arg.Each(func(v contracts.Value) bool {
			if v.IsEmpty() {
				count++
			}
			return true
		})
	}
	return contracts.NumberValue(float64(count))
}

func calculateMin(ctx *EvalContext, args []Operand) contracts.Value {
	return extremum(args, func(candidate, best float64) bool { return candidate < best })
}

func calculateMax(ctx *EvalContext, args []Operand) contracts.Value {
	return extremum(args, func(candidate, best float64) bool { return candidate > best })
}

func extremum(args []Operand, better func(candidate, best float64) bool) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if len(numbers) == 0 {
		return contracts.NumberValue(0)
	}
	best := numbers[0]
	for _, n := range numbers[1:] {
		if better(n, best) {
			best = n
		}
	}
	return contracts.NumberValue(best)
}

func calculateProduct(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	product := 1.0
	for _, n := range numbers {
		product *= n
	}
	return finishNumber(product)
}

// deviation builds the four spread measures: population or sample,
// variance or standard deviation.
func deviation(population, variance bool) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		numbers, errVal := collectNumbers(args)
		if errVal != nil {
			return *errVal
		}
		n := float64(len(numbers))
		divisor := n
		if !population {
			divisor = n - 1
		}
		if divisor <= 0 {
			return contracts.ErrorValue(contracts.ErrDivideByZero)
		}
		mean := 0.0
		for _, x := range numbers {
			mean += x
		}
		mean /= n
		sumSq := 0.0
		for _, x := range numbers {
			sumSq += (x - mean) * (x - mean)
		}
		result := sumSq / divisor
		if !variance {
			result = math.Sqrt(result)
		}
		return finishNumber(result)
	}
}

func calculateSumSq(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	sum := 0.0
	for _, n := range numbers {
		sum += n * n
	}
	return finishNumber(sum)
}

func calculateMedian(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if len(numbers) == 0 {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	sort.Float64s(numbers)
	mid := len(numbers) / 2
	if len(numbers)%2 == 1 {
		return contracts.NumberValue(numbers[mid])
	}
	return contracts.NumberValue((numbers[mid-1] + numbers[mid]) / 2)
}

func calculateMode(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	counts := map[float64]int{}
	for _, n := range numbers {
		counts[n]++
	}
	bestCount := 1
	best := math.NaN()
	sort.Float64s(numbers)
	for _, n := range numbers {
		if counts[n] > bestCount {
			bestCount = counts[n]
			best = n
		}
	}
	if math.IsNaN(best) {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	return contracts.NumberValue(best)
}

func calculateLarge(ctx *EvalContext, args []Operand) contracts.Value {
	return nthSorted(args, true)
}

func calculateSmall(ctx *EvalContext, args []Operand) contracts.Value {
	return nthSorted(args, false)
}

func nthSorted(args []Operand, descending bool) contracts.Value {
	numbers, errVal := collectNumbers(args[:1])
	if errVal != nil {
		return *errVal
	}
	k, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if k < 1 || k > len(numbers) {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	sort.Float64s(numbers)
	if descending {
		return contracts.NumberValue(numbers[len(numbers)-k])
	}
	return contracts.NumberValue(numbers[k-1])
}

func calculateRank(ctx *EvalContext, args []Operand) contracts.Value {
	target, errVal := scalarNumber(args[0])
	if errVal != nil {
		return *errVal
	}
	numbers, errVal := collectNumbers(args[1:2])
	if errVal != nil {
		return *errVal
	}
	ascending := false
	if len(args) > 2 {
		order, errVal := scalarInt(args[2])
		if errVal != nil {
			return *errVal
		}
		ascending = order != 0
	}
	found := false
	rank := 1
	for _, n := range numbers {
		if n == target {
			found = true
		}
		if (ascending && n < target) || (!ascending && n > target) {
			rank++
		}
	}
	if !found {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	return contracts.NumberValue(float64(rank))
}

func calculatePercentile(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args[:1])
	if errVal != nil {
		return *errVal
	}
	fraction, errVal := scalarNumber(args[1])
	if errVal != nil {
		return *errVal
	}
	return percentileOf(numbers, fraction)
}

// percentileOf interpolates linearly between closest ranks.
func percentileOf(numbers []float64, fraction float64) contracts.Value {
	if len(numbers) == 0 {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	if fraction < 0 || fraction > 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	sort.Float64s(numbers)
	position := fraction * float64(len(numbers)-1)
	lower := int(math.Floor(position))
	upper := int(math.Ceil(position))
	if lower == upper {
		return contracts.NumberValue(numbers[lower])
	}
	weight := position - float64(lower)
	return finishNumber(numbers[lower]*(1-weight) + numbers[upper]*weight)
}

func calculateQuartile(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args[:1])
	if errVal != nil {
		return *errVal
	}
	quart, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if quart < 0 || quart > 4 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return percentileOf(numbers, float64(quart)/4)
}

func calculateRandBetween(ctx *EvalContext, args []Operand) contracts.Value {
	low, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	high, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if low > high {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return contracts.NumberValue(float64(low + ctx.Random.Intn(high-low+1)))
}

func calculateSumProduct(ctx *EvalContext, args []Operand) contracts.Value {
	if errVal := firstOperandError(args); errVal != nil {
		return *errVal
	}
	var grids [][][]contracts.Value
	for _, arg := range args {
		if !arg.IsRange {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
		grids = append(grids, arg.Grid)
	}
	rows := len(grids[0])
	cols := 0
	if rows > 0 {
		cols = len(grids[0][0])
	}
	for _, grid := range grids[1:] {
		if len(grid) != rows || (rows > 0 && len(grid[0]) != cols) {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
	}
	sum := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			product := 1.0
			for _, grid := range grids {
				num, ok := grid[r][c].AsNumber()
				if !ok {
					num = 0
				}
				product *= num
			}
			sum += product
		}
	}
	return finishNumber(sum)
}

func calculatePermut(ctx *EvalContext, args []Operand) contracts.Value {
	return arrangements(args, false)
}

func calculateCombin(ctx *EvalContext, args []Operand) contracts.Value {
	return arrangements(args, true)
}

func arrangements(args []Operand, divideByChosen bool) contracts.Value {
	n, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	k, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	if n < 0 || k < 0 || k > n {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result *= float64(n - i)
		if divideByChosen {
			result /= float64(i + 1)
		}
	}
	return finishNumber(math.Round(result))
}

func calculateGeoMean(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if len(numbers) == 0 {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	logSum := 0.0
	for _, n := range numbers {
		if n <= 0 {
			return contracts.ErrorValue(contracts.ErrNumericOverflow)
		}
		logSum += math.Log(n)
	}
	return finishNumber(math.Exp(logSum / float64(len(numbers))))
}

func calculateHarMean(ctx *EvalContext, args []Operand) contracts.Value {
	numbers, errVal := collectNumbers(args)
	if errVal != nil {
		return *errVal
	}
	if len(numbers) == 0 {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	reciprocalSum := 0.0
	for _, n := range numbers {
		if n <= 0 {
			return contracts.ErrorValue(contracts.ErrNumericOverflow)
		}
		reciprocalSum += 1 / n
	}
	return finishNumber(float64(len(numbers)) / reciprocalSum)
}
