package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"lotusCalc/contracts"
)

// Recalculator is the dependency-tracking recalculation engine for one
// sheet. It owns the parsed form of every formula and the dependency
// tree; computed values live in the cell store. All entry points take
// the engine lock, so a sheet recalculates single-file even when the
// API serves concurrent edits.
type Recalculator struct {
	mu        sync.Mutex
	store     contracts.CellStore
	tree      *CellDependencyTree
	functions *FunctionRegistry
	clock     Clock
	random    RandomGenerator

	mode  contracts.RecalcMode
	order contracts.RecalcOrder

	exprs    map[contracts.Coordinate]Expr
	circular coordSet
	dirty    coordSet
}

var _ contracts.RecalcEngine = (*Recalculator)(nil)

func NewRecalculator(store contracts.CellStore, functions *FunctionRegistry, clock Clock, random RandomGenerator) *Recalculator {
	return &Recalculator{
		store:     store,
		tree:      NewCellDependencyTree(),
		functions: functions,
		clock:     clock,
		random:    random,
		exprs:     map[contracts.Coordinate]Expr{},
		circular:  coordSet{},
		dirty:     coordSet{},
	}
}

// storeResolver reads evaluated values straight out of the store; the
// engine evaluates in dependency order, so reads never recurse.
type storeResolver struct {
	store contracts.CellStore
}

func (r storeResolver) ResolveCell(coord contracts.Coordinate) contracts.Value {
	return r.store.GetValue(coord)
}

func (r storeResolver) ResolveName(identifier string) (contracts.NameTarget, bool) {
	return r.store.ResolveName(identifier)
}

func (r storeResolver) IsFormulaCell(coord contracts.Coordinate) bool {
	raw, ok := r.store.GetRawContent(coord)
	return ok && IsFormula(raw)
}

func (r *Recalculator) SetMode(mode contracts.RecalcMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
}

func (r *Recalculator) SetOrder(order contracts.RecalcOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = order
}

// Load rebuilds the graph from stored cell content and evaluates every
// formula. Called once per sheet when it is first opened.
func (r *Recalculator) Load() contracts.RecalcStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tree = NewCellDependencyTree()
	r.exprs = map[contracts.Coordinate]Expr{}
	r.circular = coordSet{}
	r.dirty = coordSet{}

	r.store.EachCell(func(coord contracts.Coordinate, raw string) bool {
		r.rebuildCell(coord, raw)
		return true
	})
	return r.recalculate(r.formulaCells())
}

func (r *Recalculator) OnCellEdited(coord contracts.Coordinate, raw string) contracts.RecalcStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if raw == "" {
		r.store.DeleteCell(coord)
	} else {
		r.store.SetRawContent(coord, raw)
	}
	r.rebuildCell(coord, raw)

	affected := r.tree.AffectedBy(coord)
	if r.mode == contracts.RecalcManual {
		for c := range affected {
			if _, isFormula := r.exprs[c]; isFormula {
				r.dirty.add(c)
			}
		}
		return contracts.RecalcStats{}
	}
	return r.recalculate(affected)
}

func (r *Recalculator) OnNameDefined(identifier string) contracts.RecalcStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	affected := coordSet{}
	for coord, expr := range r.exprs {
		if mentionsName(expr, identifier) {
			r.tree.SetDependsOn(coord, collectPrecedents(expr, r.store))
			for c := range r.tree.AffectedBy(coord) {
				affected.add(c)
			}
		}
	}
	if len(affected) == 0 {
		return contracts.RecalcStats{}
	}
	if r.mode == contracts.RecalcManual {
		for c := range affected {
			if _, isFormula := r.exprs[c]; isFormula {
				r.dirty.add(c)
			}
		}
		return contracts.RecalcStats{}
	}
	return r.recalculate(affected)
}

func (r *Recalculator) RequestManualRecalculation() contracts.RecalcStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.dirty
	r.dirty = coordSet{}
	if len(pending) == 0 {
		// a manual request on a clean sheet refreshes everything, so
		// volatile functions pick up fresh inputs
		pending = r.formulaCells()
	}

	// widen to downstream formulas so a dirty precedent never feeds a
	// stale dependent
	affected := coordSet{}
	for c := range pending {
		for d := range r.tree.AffectedBy(c) {
			affected.add(d)
		}
	}
	return r.recalculate(affected)
}

func (r *Recalculator) OnStructuralEdit(kind contracts.StructuralEditKind, index int) contracts.RecalcStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	type cellContent struct {
		coord contracts.Coordinate
		raw   string
	}
	var cells []cellContent
	r.store.EachCell(func(coord contracts.Coordinate, raw string) bool {
		cells = append(cells, cellContent{coord: coord, raw: raw})
		return true
	})

	for _, cell := range cells {
		r.store.DeleteCell(cell.coord)
	}

	r.tree = NewCellDependencyTree()
	r.exprs = map[contracts.Coordinate]Expr{}
	r.circular = coordSet{}
	r.dirty = coordSet{}

	for _, cell := range cells {
		target, kept := shiftCoordinate(cell.coord, kind, index)
		if !kept {
			continue
		}
		raw := cell.raw
		if IsFormula(raw) {
			if expr, err := ParseFormula(FormulaBody(raw)); err == nil {
				raw = FormatFormula(shiftExpr(expr, kind, index))
			}
		}
		r.store.SetRawContent(target, raw)
		r.rebuildCell(target, raw)
	}

	formulas := r.formulaCells()
	if r.mode == contracts.RecalcManual {
		r.dirty = formulas
		return contracts.RecalcStats{}
	}
	return r.recalculate(formulas)
}

func (r *Recalculator) GetDependents(coord contracts.Coordinate) []contracts.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()

	affected := r.tree.AffectedBy(coord)
	delete(affected, coord)
	return sortedCoordinates(affected)
}

func (r *Recalculator) GetCircularReferences() []contracts.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedCoordinates(r.circular)
}

// rebuildCell re-registers one cell after its raw content changed:
// literal values are stored immediately, formulas are parsed and their
// dependency edges replaced.
func (r *Recalculator) rebuildCell(coord contracts.Coordinate, raw string) {
	delete(r.exprs, coord)

	if !IsFormula(raw) {
		r.tree.Remove(coord)
		if raw == "" {
			r.store.SetValue(coord, contracts.EmptyValue())
		} else {
			r.store.SetValue(coord, contracts.ParseLiteral(raw))
		}
		return
	}

	expr, err := ParseFormula(FormulaBody(raw))
	if err != nil {
		r.tree.Remove(coord)
		r.store.SetFormulaError(coord, contracts.ErrInvalidValue)
		return
	}
	r.exprs[coord] = expr
	r.tree.SetDependsOn(coord, collectPrecedents(expr, r.store))
}

// recalculate evaluates the affected set: cycle members get an error
// value, the remainder evaluates in dependency order.
func (r *Recalculator) recalculate(affected coordSet) contracts.RecalcStats {
	started := time.Now()
	stats := contracts.RecalcStats{}

	cycles := r.tree.FindCycles(affected)
	for c := range affected {
		delete(r.circular, c)
	}
	for c := range cycles {
		r.circular.add(c)
		r.store.SetValue(c, contracts.ErrorValue(contracts.ErrInvalidValue))
		stats.CircularRefsFound++
		stats.ErrorsFound++
	}

	evalSet := coordSet{}
	for c := range affected {
		if _, isFormula := r.exprs[c]; isFormula && !cycles.has(c) {
			evalSet.add(c)
		}
	}

	resolver := storeResolver{store: r.store}
	for _, coord := range r.evaluationOrder(evalSet) {
		ctx := &EvalContext{
			Resolver:  resolver,
			Current:   coord,
			Clock:     r.clock,
			Random:    r.random,
			Functions: r.functions,
		}
		value := Evaluate(r.exprs[coord], ctx)
		r.store.SetValue(coord, value)
		stats.CellsEvaluated++
		if value.IsError() {
			stats.ErrorsFound++
		}
	}

	stats.ElapsedMs = float64(time.Since(started).Microseconds()) / 1000
	return stats
}

// evaluationOrder honours the configured sweep order only when no cell
// in the set reads another; any dependency edge forces natural order.
func (r *Recalculator) evaluationOrder(cells coordSet) []contracts.Coordinate {
	if r.order != contracts.OrderNatural && !r.tree.HasEdgesWithin(cells) {
		ordered := sortedCoordinates(cells)
		if r.order == contracts.OrderColumnWise {
			sortColumnMajor(ordered)
		}
		return ordered
	}
	return r.tree.TopologicalOrder(cells)
}

func (r *Recalculator) formulaCells() coordSet {
	out := coordSet{}
	for c := range r.exprs {
		out.add(c)
	}
	return out
}

// collectPrecedents lists every cell a formula reads: direct refs,
// the member cells of ranges, and the targets of resolvable names.
// A name that does not resolve contributes no edge; evaluation will
// surface the unknown-name error.
func collectPrecedents(expr Expr, store contracts.CellStore) coordSet {
	reads := coordSet{}
	WalkExpr(expr, func(node Expr) {
		switch n := node.(type) {
		case *CellRefExpr:
			if n.Ref.Coordinate.InBounds() {
				reads.add(n.Ref.Coordinate)
			}
		case *RangeRefExpr:
			n.Range.EachCell(func(c contracts.Coordinate) bool {
				reads.add(c)
				return true
			})
		case *NameRefExpr:
			target, ok := store.ResolveName(n.Name)
			if !ok {
				return
			}
			if target.IsRange {
				target.Range.EachCell(func(c contracts.Coordinate) bool {
					reads.add(c)
					return true
				})
			} else {
				reads.add(target.Ref.Coordinate)
			}
		}
	})
	return reads
}

func mentionsName(expr Expr, identifier string) bool {
	found := false
	WalkExpr(expr, func(node Expr) {
		if n, ok := node.(*NameRefExpr); ok && strings.EqualFold(n.Name, identifier) {
			found = true
		}
	})
	return found
}

func sortColumnMajor(coords []contracts.Coordinate) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Col != coords[j].Col {
			return coords[i].Col < coords[j].Col
		}
		return coords[i].Row < coords[j].Row
	})
}
