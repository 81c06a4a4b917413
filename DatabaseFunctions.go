package main

import (
	"math"
	"strings"

	"lotusCalc/contracts"
)

func registerDatabaseFunctions(r *FunctionRegistry) {
	r.Register("DSUM", 3, 3, databaseAggregate(aggSum))
	r.Register("DAVG", 3, 3, databaseAggregate(aggAvg))
	r.Alias("DAVERAGE", "DAVG")
	r.Register("DCOUNT", 3, 3, databaseAggregate(aggCount))
	r.Register("DCOUNTA", 3, 3, calculateDCountA)
	r.Register("DMIN", 3, 3, databaseAggregate(aggMin))
	r.Register("DMAX", 3, 3, databaseAggregate(aggMax))
	r.Register("DSTD", 3, 3, databaseAggregate(aggSpread(true, false)))
	r.Alias("DSTDP", "DSTD")
	r.Register("DSTDEV", 3, 3, databaseAggregate(aggSpread(false, false)))
	r.Register("DVAR", 3, 3, databaseAggregate(aggSpread(true, true)))
	r.Alias("DVARP", "DVAR")
	r.Register("DGET", 3, 3, calculateDGet)
}

// A database is a range whose first row holds field labels and whose
// remaining rows hold records. The criteria range has the same shape;
// its rows are alternatives, the cells within a row must all hold.
type dbTable struct {
	headers []string
	rows    [][]contracts.Value
}

func parseDbTable(arg Operand) (*dbTable, *contracts.Value) {
	if !arg.IsRange || len(arg.Grid) < 1 {
		bad := contracts.ErrorValue(contracts.ErrInvalidValue)
		return nil, &bad
	}
	headers := make([]string, len(arg.Grid[0]))
	for i, v := range arg.Grid[0] {
		headers[i] = strings.ToUpper(textOf(v))
	}
	return &dbTable{headers: headers, rows: arg.Grid[1:]}, nil
}

// fieldOffset accepts either a zero-based column offset or a field
// label.
func (t *dbTable) fieldOffset(field Operand) (int, *contracts.Value) {
	v := field.First()
	if v.IsError() {
		return 0, &v
	}
	if n, ok := v.AsNumber(); ok && v.Kind != contracts.KindText {
		offset := int(n)
		if offset < 0 || offset >= len(t.headers) {
			bad := contracts.ErrorValue(contracts.ErrInvalidValue)
			return 0, &bad
		}
		return offset, nil
	}
	label := strings.ToUpper(textOf(v))
	for i, header := range t.headers {
		if header == label {
			return i, nil
		}
	}
	bad := contracts.ErrorValue(contracts.ErrInvalidValue)
	return 0, &bad
}

// matchCriterion applies a single criteria cell. Text beginning with a
// comparison operator compares against the rest; anything else tests
// equality.
func matchCriterion(value, criterion contracts.Value) bool {
	if criterion.IsEmpty() {
		return true
	}
	if criterion.Kind == contracts.KindText {
		text := criterion.Str
		for _, op := range []string{">=", "<=", "<>", ">", "<", "="} {
			if strings.HasPrefix(text, op) {
				operand := contracts.ParseLiteral(strings.TrimSpace(text[len(op):]))
				cmp := compareValues(value, operand)
				switch op {
				case ">=":
					return cmp >= 0
				case "<=":
					return cmp <= 0
				case "<>":
					return cmp != 0
				case ">":
					return cmp > 0
				case "<":
					return cmp < 0
				}
				return cmp == 0
			}
		}
	}
	return value.Kind != contracts.KindEmpty && compareValues(value, criterion) == 0
}

// selectField returns the field values of every record matching the
// criteria.
func selectField(table, criteria *dbTable, offset int) []contracts.Value {
	var out []contracts.Value
	for _, record := range table.rows {
		if matchesCriteria(table, criteria, record) {
			out = append(out, record[offset])
		}
	}
	return out
}

func matchesCriteria(table, criteria *dbTable, record []contracts.Value) bool {
	for _, criteriaRow := range criteria.rows {
		rowHolds := true
		for i, criterion := range criteriaRow {
			if criterion.IsEmpty() {
				continue
			}
			col := -1
			for j, header := range table.headers {
				if header == criteria.headers[i] {
					col = j
					break
				}
			}
			if col < 0 || !matchCriterion(record[col], criterion) {
				rowHolds = false
				break
			}
		}
		if rowHolds {
			return true
		}
	}
	return len(criteria.rows) == 0
}

func databaseAggregate(agg func(values []contracts.Value) contracts.Value) FunctionImpl {
	return func(ctx *EvalContext, args []Operand) contracts.Value {
		table, errVal := parseDbTable(args[0])
		if errVal != nil {
			return *errVal
		}
		offset, errVal := table.fieldOffset(args[1])
		if errVal != nil {
			return *errVal
		}
		criteria, errVal := parseDbTable(args[2])
		if errVal != nil {
			return *errVal
		}
		return agg(selectField(table, criteria, offset))
	}
}

func numbersOnly(values []contracts.Value) ([]float64, *contracts.Value) {
	var out []float64
	for _, v := range values {
		if v.IsError() {
			return nil, &v
		}
		if v.Kind == contracts.KindNumber || v.Kind == contracts.KindBoolean {
			n, _ := v.AsNumber()
			out = append(out, n)
		}
	}
	return out, nil
}

func aggSum(values []contracts.Value) contracts.Value {
	numbers, errVal := numbersOnly(values)
	if errVal != nil {
		return *errVal
	}
	sum := 0.0
	for _, n := range numbers {
		sum += n
	}
	return finishNumber(sum)
}

func aggAvg(values []contracts.Value) contracts.Value {
	numbers, errVal := numbersOnly(values)
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

func aggCount(values []contracts.Value) contracts.Value {
	numbers, errVal := numbersOnly(values)
	if errVal != nil {
		return *errVal
	}
	return contracts.NumberValue(float64(len(numbers)))
}

func aggMin(values []contracts.Value) contracts.Value {
	return aggExtremum(values, func(candidate, best float64) bool { return candidate < best })
}

func aggMax(values []contracts.Value) contracts.Value {
	return aggExtremum(values, func(candidate, best float64) bool { return candidate > best })
}

func aggExtremum(values []contracts.Value, better func(candidate, best float64) bool) contracts.Value {
	numbers, errVal := numbersOnly(values)
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

func aggSpread(population, variance bool) func(values []contracts.Value) contracts.Value {
	return func(values []contracts.Value) contracts.Value {
		numbers, errVal := numbersOnly(values)
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

func calculateDCountA(ctx *EvalContext, args []Operand) contracts.Value {
	table, errVal := parseDbTable(args[0])
	if errVal != nil {
		return *errVal
	}
	offset, errVal := table.fieldOffset(args[1])
	if errVal != nil {
		return *errVal
	}
	criteria, errVal := parseDbTable(args[2])
	if errVal != nil {
		return *errVal
	}
	count := 0
	for _, v := range selectField(table, criteria, offset) {
		if !v.IsEmpty() {
			count++
		}
	}
	return contracts.NumberValue(float64(count))
}

// DGET demands exactly one matching record.
func calculateDGet(ctx *EvalContext, args []Operand) contracts.Value {
	table, errVal := parseDbTable(args[0])
	if errVal != nil {
		return *errVal
	}
	offset, errVal := table.fieldOffset(args[1])
	if errVal != nil {
		return *errVal
	}
	criteria, errVal := parseDbTable(args[2])
	if errVal != nil {
		return *errVal
	}
	matches := selectField(table, criteria, offset)
	if len(matches) == 0 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	if len(matches) > 1 {
		return contracts.ErrorValue(contracts.ErrNumericOverflow)
	}
	return matches[0]
}
