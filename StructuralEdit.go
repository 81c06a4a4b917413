package main

import (
	"lotusCalc/contracts"
)

// Reference shifting for row/column inserts and deletes. A reference
// whose target row or column is deleted collapses to a #REF! literal;
// a range shrinks as long as any of it survives.

func shiftCoordinate(coord contracts.Coordinate, kind contracts.StructuralEditKind, index int) (contracts.Coordinate, bool) {
	switch kind {
	case contracts.InsertRow:
		if coord.Row >= index {
			coord.Row++
		}
	case contracts.DeleteRow:
		if coord.Row == index {
			return coord, false
		}
		if coord.Row > index {
			coord.Row--
		}
	case contracts.InsertColumn:
		if coord.Col >= index {
			coord.Col++
		}
	case contracts.DeleteColumn:
		if coord.Col == index {
			return coord, false
		}
		if coord.Col > index {
			coord.Col--
		}
	}
	return coord, coord.InBounds()
}

func shiftRef(ref contracts.Reference, kind contracts.StructuralEditKind, index int) (contracts.Reference, bool) {
	coord, kept := shiftCoordinate(ref.Coordinate, kind, index)
	ref.Coordinate = coord
	return ref, kept
}

// shiftRange moves both endpoints. On a delete that hits an endpoint,
// the range shrinks toward the surviving side; it dies only when the
// delete consumed it entirely.
func shiftRange(rng contracts.RangeReference, kind contracts.StructuralEditKind, index int) (contracts.RangeReference, bool) {
	start, startKept := shiftRef(rng.Start, kind, index)
	end, endKept := shiftRef(rng.End, kind, index)

	switch kind {
	case contracts.DeleteRow:
		if !startKept {
			// next row slides into the deleted start position
			start.Row = index
			startKept = start.Coordinate.InBounds()
		}
		if !endKept {
			end.Row = index - 1
			endKept = end.Coordinate.InBounds()
		}
	case contracts.DeleteColumn:
		if !startKept {
			start.Col = index
			startKept = start.Coordinate.InBounds()
		}
		if !endKept {
			end.Col = index - 1
			endKept = end.Coordinate.InBounds()
		}
	case contracts.InsertRow, contracts.InsertColumn:
		if !endKept {
			// bottom/right edge pushed off the grid clamps to it
			if kind == contracts.InsertRow {
				end.Row = contracts.MaxRow
			} else {
				end.Col = contracts.MaxColumn
			}
			endKept = true
		}
	}

	if !startKept || !endKept || start.Row > end.Row || start.Col > end.Col {
		return rng, false
	}
	rng.Start, rng.End = start, end
	return rng, true
}

// shiftExpr rebuilds an expression tree with every reference adjusted
// for the structural edit.
func shiftExpr(expr Expr, kind contracts.StructuralEditKind, index int) Expr {
	switch node := expr.(type) {
	case *CellRefExpr:
		ref, kept := shiftRef(node.Ref, kind, index)
		if !kept {
			return &LiteralExpr{Value: contracts.ErrorValue(contracts.ErrInvalidReference)}
		}
		return &CellRefExpr{Ref: ref}

	case *RangeRefExpr:
		rng, kept := shiftRange(node.Range, kind, index)
		if !kept {
			return &LiteralExpr{Value: contracts.ErrorValue(contracts.ErrInvalidReference)}
		}
		return &RangeRefExpr{Range: rng}

	case *UnaryExpr:
		return &UnaryExpr{Op: node.Op, Operand: shiftExpr(node.Operand, kind, index)}

	case *BinaryExpr:
		return &BinaryExpr{
			Op:    node.Op,
			Left:  shiftExpr(node.Left, kind, index),
			Right: shiftExpr(node.Right, kind, index),
		}

	case *CallExpr:
		args := make([]Expr, len(node.Args))
		for i, arg := range node.Args {
			args[i] = shiftExpr(arg, kind, index)
		}
		return &CallExpr{Name: node.Name, Args: args}
	}
	return expr
}
