package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lotusCalc/contracts"
)

func _coords(t *testing.T, refs ...string) []contracts.Coordinate {
	out := make([]contracts.Coordinate, 0, len(refs))
	for _, ref := range refs {
		out = append(out, _coord(t, ref))
	}
	return out
}

func _set(t *testing.T, refs ...string) coordSet {
	set := coordSet{}
	for _, ref := range refs {
		set.add(_coord(t, ref))
	}
	return set
}

func TestCellDependencyTree_Dependents(t *testing.T) {
	t.Run("single-level", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "A1", "B1"))

		assert.Equal(t, _coords(t, "C1"), tree.DependentsOf(_coord(t, "A1")))
		assert.Equal(t, _coords(t, "C1"), tree.DependentsOf(_coord(t, "B1")))
		assert.Empty(t, tree.DependentsOf(_coord(t, "C1")))
	})

	t.Run("replacing-edges-drops-old-ones", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "A1", "B1"))
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "B1", "D1"))

		assert.Empty(t, tree.DependentsOf(_coord(t, "A1")))
		assert.Equal(t, _coords(t, "C1"), tree.DependentsOf(_coord(t, "D1")))
	})

	t.Run("remove", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "A1"))
		tree.Remove(_coord(t, "C1"))

		assert.Empty(t, tree.DependentsOf(_coord(t, "A1")))
		assert.Empty(t, tree.PrecedentsOf(_coord(t, "C1")))
	})

	t.Run("transitive-closure", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "B1"))
		tree.SetDependsOn(_coord(t, "D1"), _set(t, "C1"))
		tree.SetDependsOn(_coord(t, "E5"), _set(t, "Z9"))

		affected := tree.AffectedBy(_coord(t, "A1"))
		assert.Equal(t, _set(t, "A1", "B1", "C1", "D1"), affected)
		assert.False(t, affected.has(_coord(t, "E5")))
	})
}

func TestCellDependencyTree_FindCycles(t *testing.T) {
	t.Run("self-reference", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "A1"), _set(t, "A1"))

		cycles := tree.FindCycles(_set(t, "A1"))
		assert.Equal(t, _set(t, "A1"), cycles)
	})

	t.Run("two-cell-loop", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "A1"), _set(t, "B1"))
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "B1"))

		cycles := tree.FindCycles(_set(t, "A1", "B1", "C1"))
		assert.Equal(t, _set(t, "A1", "B1"), cycles)
		// C1 reads the loop but is not part of it
		assert.False(t, cycles.has(_coord(t, "C1")))
	})

	t.Run("acyclic-chain", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "B1"))

		assert.Empty(t, tree.FindCycles(_set(t, "A1", "B1", "C1")))
	})

	t.Run("edges-leaving-the-set-do-not-count", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "A1"), _set(t, "B1"))
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))

		// only one loop member in the set, so no in-set cycle
		assert.Empty(t, tree.FindCycles(_set(t, "A1")))
	})

	t.Run("diamond-is-not-a-cycle", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "A1"))
		tree.SetDependsOn(_coord(t, "D1"), _set(t, "B1", "C1"))

		assert.Empty(t, tree.FindCycles(_set(t, "A1", "B1", "C1", "D1")))
	})
}

func TestCellDependencyTree_TopologicalOrder(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))
		tree.SetDependsOn(_coord(t, "C1"), _set(t, "B1"))

		order := tree.TopologicalOrder(_set(t, "A1", "B1", "C1"))
		assert.Equal(t, _coords(t, "A1", "B1", "C1"), order)
	})

	t.Run("precedents-first", func(t *testing.T) {
		tree := NewCellDependencyTree()
		// A1 reads C3, so C3 must be evaluated first despite sorting later
		tree.SetDependsOn(_coord(t, "A1"), _set(t, "C3"))

		order := tree.TopologicalOrder(_set(t, "A1", "C3"))
		assert.Equal(t, _coords(t, "C3", "A1"), order)
	})

	t.Run("independent-cells-row-major", func(t *testing.T) {
		tree := NewCellDependencyTree()
		order := tree.TopologicalOrder(_set(t, "B2", "A1", "C1", "A2"))
		assert.Equal(t, _coords(t, "A1", "C1", "A2", "B2"), order)
	})

	t.Run("out-of-set-precedents-ignored", func(t *testing.T) {
		tree := NewCellDependencyTree()
		tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))

		order := tree.TopologicalOrder(_set(t, "B1"))
		assert.Equal(t, _coords(t, "B1"), order)
	})
}

func TestCellDependencyTree_HasEdgesWithin(t *testing.T) {
	tree := NewCellDependencyTree()
	tree.SetDependsOn(_coord(t, "B1"), _set(t, "A1"))

	assert.True(t, tree.HasEdgesWithin(_set(t, "A1", "B1")))
	assert.False(t, tree.HasEdgesWithin(_set(t, "B1", "C1")))
	assert.False(t, tree.HasEdgesWithin(_set(t, "A1")))
}
