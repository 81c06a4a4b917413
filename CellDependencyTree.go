package main

import (
	"sort"

	"lotusCalc/contracts"
)

type coordSet map[contracts.Coordinate]struct{}

func (s coordSet) add(c contracts.Coordinate)      { s[c] = struct{}{} }
func (s coordSet) has(c contracts.Coordinate) bool { _, ok := s[c]; return ok }

// CellDependencyTree tracks which cells a formula reads (precedents)
// and the reverse edges (dependents). Ranges are expanded to their
// member cells when edges are registered, so a graph query never needs
// to know about ranges. The tree is rebuilt from stored formulas on
// load; it is not persisted itself.
type CellDependencyTree struct {
	precedents map[contracts.Coordinate]coordSet
	dependents map[contracts.Coordinate]coordSet
}

func NewCellDependencyTree() *CellDependencyTree {
	return &CellDependencyTree{
		precedents: map[contracts.Coordinate]coordSet{},
		dependents: map[contracts.Coordinate]coordSet{},
	}
}

// SetDependsOn replaces the precedent set of a cell, keeping the
// reverse edges in sync.
func (t *CellDependencyTree) SetDependsOn(cell contracts.Coordinate, reads coordSet) {
	for old := range t.precedents[cell] {
		delete(t.dependents[old], cell)
		if len(t.dependents[old]) == 0 {
			delete(t.dependents, old)
		}
	}
	if len(reads) == 0 {
		delete(t.precedents, cell)
		return
	}
	t.precedents[cell] = reads
	for p := range reads {
		if t.dependents[p] == nil {
			t.dependents[p] = coordSet{}
		}
		t.dependents[p].add(cell)
	}
}

func (t *CellDependencyTree) Remove(cell contracts.Coordinate) {
	t.SetDependsOn(cell, nil)
}

func (t *CellDependencyTree) PrecedentsOf(cell contracts.Coordinate) coordSet {
	return t.precedents[cell]
}

func (t *CellDependencyTree) DependentsOf(cell contracts.Coordinate) []contracts.Coordinate {
	out := make([]contracts.Coordinate, 0, len(t.dependents[cell]))
	for d := range t.dependents[cell] {
		out = append(out, d)
	}
	sortCoordinates(out)
	return out
}

// AffectedBy computes the transitive dependents of a cell, the cell
// itself included.
func (t *CellDependencyTree) AffectedBy(seed contracts.Coordinate) coordSet {
	affected := coordSet{}
	queue := []contracts.Coordinate{seed}
	affected.add(seed)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for d := range t.dependents[c] {
			if !affected.has(d) {
				affected.add(d)
				queue = append(queue, d)
			}
		}
	}
	return affected
}

// FindCycles returns the cells of the given set that sit on a
// dependency cycle whose edges stay within the set. Depth-first walk
// with the usual three colors; every cell on the stack between a back
// edge's target and the top is a cycle member.
func (t *CellDependencyTree) FindCycles(within coordSet) coordSet {
	const (
		white = iota
		gray
		black
	)
	color := map[contracts.Coordinate]int{}
	stackIndex := map[contracts.Coordinate]int{}
	var stack []contracts.Coordinate
	circular := coordSet{}

	var visit func(c contracts.Coordinate)
	visit = func(c contracts.Coordinate) {
		color[c] = gray
		stackIndex[c] = len(stack)
		stack = append(stack, c)

		for p := range t.precedents[c] {
			if !within.has(p) {
				continue
			}
			switch color[p] {
			case white:
				visit(p)
			case gray:
				for i := stackIndex[p]; i < len(stack); i++ {
					circular.add(stack[i])
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackIndex, c)
		color[c] = black
	}

	for _, c := range sortedCoordinates(within) {
		if color[c] == white {
			visit(c)
		}
	}
	return circular
}

// TopologicalOrder sorts the given cells so every cell comes after its
// in-set precedents, Kahn's algorithm with a deterministic tie break.
// Cells on cycles must be excluded by the caller.
func (t *CellDependencyTree) TopologicalOrder(cells coordSet) []contracts.Coordinate {
	inDegree := map[contracts.Coordinate]int{}
	for c := range cells {
		degree := 0
		for p := range t.precedents[c] {
			if cells.has(p) {
				degree++
			}
		}
		inDegree[c] = degree
	}

	var ready []contracts.Coordinate
	for c, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, c)
		}
	}
	sortCoordinates(ready)

	order := make([]contracts.Coordinate, 0, len(cells))
	for len(ready) > 0 {
		c := ready[0]
		ready = ready[1:]
		order = append(order, c)

		var unlocked []contracts.Coordinate
		for d := range t.dependents[c] {
			if !cells.has(d) {
				continue
			}
			inDegree[d]--
			if inDegree[d] == 0 {
				unlocked = append(unlocked, d)
			}
		}
		sortCoordinates(unlocked)
		ready = append(ready, unlocked...)
	}
	return order
}

// HasEdgesWithin reports whether any dependency edge connects two
// cells of the set.
func (t *CellDependencyTree) HasEdgesWithin(cells coordSet) bool {
	for c := range cells {
		for p := range t.precedents[c] {
			if cells.has(p) {
				return true
			}
		}
	}
	return false
}

func sortCoordinates(coords []contracts.Coordinate) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Row != coords[j].Row {
			return coords[i].Row < coords[j].Row
		}
		return coords[i].Col < coords[j].Col
	})
}

func sortedCoordinates(set coordSet) []contracts.Coordinate {
	out := make([]contracts.Coordinate, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortCoordinates(out)
	return out
}
