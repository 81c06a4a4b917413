package main

import (
	"lotusCalc/contracts"
)

func registerLookupFunctions(r *FunctionRegistry) {
	r.Register("VLOOKUP", 3, 4, calculateVLookup)
	r.Register("HLOOKUP", 3, 4, calculateHLookup)
	r.Register("LOOKUP", 2, 3, calculateLookup)
	r.Register("MATCH", 2, 3, calculateMatch)
	r.Register("INDEX", 2, 3, calculateIndex)
	r.Register("OFFSET", 3, 3, calculateOffset)
	r.Register("INDIRECT", 1, 1, calculateIndirect)
	r.Register("ROW", 0, 1, calculateRow)
	r.Register("COLUMN", 0, 1, calculateColumn)
	r.Register("ADDRESS", 2, 3, calculateAddress)
	r.Register("ROWS", 1, 1, calculateRows)
	r.Register("COLS", 1, 1, calculateCols)
	r.Alias("COLUMNS", "COLS")
	r.Register("TRANSPOSE", 1, 1, calculateTranspose)
}

// VLOOKUP scans the first column of the table for the key and answers
// from the column at the given zero-based offset. Approximate mode
// requires the first column sorted ascending and picks the last entry
// not greater than the key; an unsorted column is not available data.
func calculateVLookup(ctx *EvalContext, args []Operand) contracts.Value {
	return tableLookup(ctx, args, false)
}

func calculateHLookup(ctx *EvalContext, args []Operand) contracts.Value {
	return tableLookup(ctx, args, true)
}

func tableLookup(ctx *EvalContext, args []Operand, horizontal bool) contracts.Value {
	key := args[0].First()
	if key.IsError() {
		return key
	}
	if !args[1].IsRange {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	grid := args[1].Grid
	if horizontal {
		grid = transposeGrid(grid)
	}
	offset, errVal := scalarInt(args[2])
	if errVal != nil {
		return *errVal
	}
	approximate := true
	if len(args) > 3 {
		if approximate, errVal = scalarBool(args[3]); errVal != nil {
			return *errVal
		}
	}
	if len(grid) == 0 || offset < 0 || offset >= len(grid[0]) {
		return contracts.ErrorValue(contracts.ErrInvalidReference)
	}

	keyColumn := make([]contracts.Value, len(grid))
	for i, row := range grid {
		keyColumn[i] = row[0]
	}
	match, errVal := lookupIndex(key, keyColumn, approximate)
	if errVal != nil {
		return *errVal
	}
	return grid[match][offset]
}

// lookupIndex finds the key in a vector. Exact mode takes the first
// equal entry; approximate mode takes the last entry <= key and
// insists the vector is sorted ascending.
func lookupIndex(key contracts.Value, vector []contracts.Value, approximate bool) (int, *contracts.Value) {
	if !approximate {
		for i, v := range vector {
			if v.Kind == key.Kind && compareValues(key, v) == 0 {
				return i, nil
			}
		}
		notFound := contracts.ErrorValue(contracts.ErrNotAvailable)
		return 0, &notFound
	}

	match := -1
	for i, v := range vector {
		if i > 0 && compareValues(vector[i-1], v) > 0 {
			unsorted := contracts.ErrorValue(contracts.ErrNotAvailable)
			return 0, &unsorted
		}
		if compareValues(v, key) <= 0 {
			match = i
		}
	}
	if match < 0 {
		notFound := contracts.ErrorValue(contracts.ErrNotAvailable)
		return 0, &notFound
	}
	return match, nil
}

// LOOKUP searches a vector and answers from a result vector, or from
// the last column of a two-column table when no result vector given.
func calculateLookup(ctx *EvalContext, args []Operand) contracts.Value {
	key := args[0].First()
	if key.IsError() {
		return key
	}
	if !args[1].IsRange {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	lookupVector := flattenGrid(args[1].Grid)

	var resultVector []contracts.Value
	if len(args) > 2 {
		if !args[2].IsRange {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
		resultVector = flattenGrid(args[2].Grid)
	} else {
		resultVector = lookupVector
	}
	if len(resultVector) != len(lookupVector) {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}

	match, errVal := lookupIndex(key, lookupVector, true)
	if errVal != nil {
		return *errVal
	}
	return resultVector[match]
}

// MATCH returns the zero-based offset of the key in a vector. Match
// type 0 is exact, 1 (the default) is last <= key on ascending data,
// -1 is last >= key on descending data.
func calculateMatch(ctx *EvalContext, args []Operand) contracts.Value {
	key := args[0].First()
	if key.IsError() {
		return key
	}
	if !args[1].IsRange {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	vector := flattenGrid(args[1].Grid)

	matchType := 1
	if len(args) > 2 {
		var errVal *contracts.Value
		if matchType, errVal = scalarInt(args[2]); errVal != nil {
			return *errVal
		}
	}

	switch {
	case matchType == 0:
		match, errVal := lookupIndex(key, vector, false)
		if errVal != nil {
			return *errVal
		}
		return contracts.NumberValue(float64(match))

	case matchType > 0:
		match, errVal := lookupIndex(key, vector, true)
		if errVal != nil {
			return *errVal
		}
		return contracts.NumberValue(float64(match))
	}

	// descending data, last entry >= key
	match := -1
	for i, v := range vector {
		if i > 0 && compareValues(vector[i-1], v) < 0 {
			return contracts.ErrorValue(contracts.ErrNotAvailable)
		}
		if compareValues(v, key) >= 0 {
			match = i
		}
	}
	if match < 0 {
		return contracts.ErrorValue(contracts.ErrNotAvailable)
	}
	return contracts.NumberValue(float64(match))
}

// INDEX answers the cell at a zero-based row and column offset into
// the range.
func calculateIndex(ctx *EvalContext, args []Operand) contracts.Value {
	if !args[0].IsRange {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	grid := args[0].Grid
	row, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	col := 0
	if len(args) > 2 {
		if col, errVal = scalarInt(args[2]); errVal != nil {
			return *errVal
		}
	}
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[0]) {
		return contracts.ErrorValue(contracts.ErrInvalidReference)
	}
	return grid[row][col]
}

// OFFSET shifts a cell reference and answers the shifted cell's value.
func calculateOffset(ctx *EvalContext, args []Operand) contracts.Value {
	base := args[0].Ref
	if base == nil {
		if args[0].IsRange && args[0].Range != nil {
			base = &args[0].Range.Start
		} else {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
	}
	dRow, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	dCol, errVal := scalarInt(args[2])
	if errVal != nil {
		return *errVal
	}
	target := contracts.Coordinate{Col: base.Col + dCol, Row: base.Row + dRow}
	if !target.InBounds() {
		return contracts.ErrorValue(contracts.ErrInvalidReference)
	}
	return ctx.Resolver.ResolveCell(target)
}

// INDIRECT resolves a reference held as text. Cells reached this way
// are invisible to dependency tracking; a recalculation must be
// requested to refresh them.
func calculateIndirect(ctx *EvalContext, args []Operand) contracts.Value {
	text, errVal := scalarText(args[0])
	if errVal != nil {
		return *errVal
	}
	ref, err := contracts.ParseReference(text)
	if err != nil {
		return contracts.ErrorValue(contracts.ErrInvalidReference)
	}
	return ctx.Resolver.ResolveCell(ref.Coordinate)
}

// ROW answers the one-based row number of the argument, or of the
// cell being evaluated when called without one.
func calculateRow(ctx *EvalContext, args []Operand) contracts.Value {
	coord := ctx.Current
	if len(args) > 0 {
		if args[0].Ref != nil {
			coord = args[0].Ref.Coordinate
		} else if args[0].IsRange && args[0].Range != nil {
			coord = args[0].Range.Start.Coordinate
		} else {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
	}
	return contracts.NumberValue(float64(coord.Row + 1))
}

func calculateColumn(ctx *EvalContext, args []Operand) contracts.Value {
	coord := ctx.Current
	if len(args) > 0 {
		if args[0].Ref != nil {
			coord = args[0].Ref.Coordinate
		} else if args[0].IsRange && args[0].Range != nil {
			coord = args[0].Range.Start.Coordinate
		} else {
			return contracts.ErrorValue(contracts.ErrInvalidValue)
		}
	}
	return contracts.NumberValue(float64(coord.Col + 1))
}

// ADDRESS renders a one-based row and column as reference text. The
// style selector follows the usual convention: 1 fully absolute,
// 2 row absolute, 3 column absolute, 4 fully relative.
func calculateAddress(ctx *EvalContext, args []Operand) contracts.Value {
	row, errVal := scalarInt(args[0])
	if errVal != nil {
		return *errVal
	}
	col, errVal := scalarInt(args[1])
	if errVal != nil {
		return *errVal
	}
	style := 1
	if len(args) > 2 {
		if style, errVal = scalarInt(args[2]); errVal != nil {
			return *errVal
		}
	}
	coord := contracts.Coordinate{Col: col - 1, Row: row - 1}
	if !coord.InBounds() || style < 1 || style > 4 {
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	ref := contracts.Reference{
		Coordinate:  coord,
		ColAbsolute: style == 1 || style == 3,
		RowAbsolute: style == 1 || style == 2,
	}
	return contracts.TextValue(ref.String())
}

func calculateRows(ctx *EvalContext, args []Operand) contracts.Value {
	if !args[0].IsRange {
		if args[0].FromRef {
			return contracts.NumberValue(1)
		}
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	return contracts.NumberValue(float64(len(args[0].Grid)))
}

func calculateCols(ctx *EvalContext, args []Operand) contracts.Value {
	if !args[0].IsRange {
		if args[0].FromRef {
			return contracts.NumberValue(1)
		}
		return contracts.ErrorValue(contracts.ErrInvalidValue)
	}
	if len(args[0].Grid) == 0 {
		return contracts.NumberValue(0)
	}
	return contracts.NumberValue(float64(len(args[0].Grid[0])))
}

// TRANSPOSE folds to a plain value only for single-cell inputs; the
// scalar result model has no way to spill a flipped grid.
func calculateTranspose(ctx *EvalContext, args []Operand) contracts.Value {
	if !args[0].IsRange {
		return args[0].First()
	}
	grid := args[0].Grid
	if len(grid) == 1 && len(grid[0]) == 1 {
		return grid[0][0]
	}
	return contracts.ErrorValue(contracts.ErrInvalidValue)
}

func transposeGrid(grid [][]contracts.Value) [][]contracts.Value {
	if len(grid) == 0 {
		return grid
	}
	out := make([][]contracts.Value, len(grid[0]))
	for c := range out {
		out[c] = make([]contracts.Value, len(grid))
		for r := range grid {
			out[c][r] = grid[r][c]
		}
	}
	return out
}

func flattenGrid(grid [][]contracts.Value) []contracts.Value {
	var out []contracts.Value
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}
