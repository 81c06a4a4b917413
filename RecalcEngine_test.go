package main

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lotusCalc/contracts"
)

// memoryCellStore is an in-memory contracts.CellStore for engine tests.
// It records the order of formula result writes so sweep-order tests can
// observe evaluation sequence.
type memoryCellStore struct {
	raw      map[contracts.Coordinate]string
	values   map[contracts.Coordinate]contracts.Value
	names    map[string]contracts.NameTarget
	writeLog []contracts.Coordinate
}

func newMemoryCellStore() *memoryCellStore {
	return &memoryCellStore{
		raw:    map[contracts.Coordinate]string{},
		values: map[contracts.Coordinate]contracts.Value{},
		names:  map[string]contracts.NameTarget{},
	}
}

func (s *memoryCellStore) GetRawContent(coord contracts.Coordinate) (string, bool) {
	raw, ok := s.raw[coord]
	return raw, ok
}

func (s *memoryCellStore) SetRawContent(coord contracts.Coordinate, raw string) {
	s.raw[coord] = raw
}

func (s *memoryCellStore) DeleteCell(coord contracts.Coordinate) {
	delete(s.raw, coord)
	delete(s.values, coord)
}

func (s *memoryCellStore) GetValue(coord contracts.Coordinate) contracts.Value {
	return s.values[coord]
}

func (s *memoryCellStore) SetValue(coord contracts.Coordinate, value contracts.Value) {
	s.values[coord] = value
	s.writeLog = append(s.writeLog, coord)
}

func (s *memoryCellStore) SetFormulaError(coord contracts.Coordinate, kind contracts.ErrorKind) {
	s.values[coord] = contracts.ErrorValue(kind)
}

func (s *memoryCellStore) ResolveName(identifier string) (contracts.NameTarget, bool) {
	target, ok := s.names[strings.ToUpper(identifier)]
	return target, ok
}

func (s *memoryCellStore) EachCell(visit func(contracts.Coordinate, string) bool) {
	coords := make([]contracts.Coordinate, 0, len(s.raw))
	for coord := range s.raw {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Row != coords[j].Row {
			return coords[i].Row < coords[j].Row
		}
		return coords[i].Col < coords[j].Col
	})
	for _, coord := range coords {
		if !visit(coord, s.raw[coord]) {
			return
		}
	}
}

var _ contracts.CellStore = (*memoryCellStore)(nil)

func _newRecalculator(t *testing.T, cells map[string]string) (*Recalculator, *memoryCellStore) {
	store := newMemoryCellStore()
	engine := NewRecalculator(store, NewFunctionRegistry(), fixedClock{}, fixedRandom{float: 0.5})

	refs := make([]string, 0, len(cells))
	for ref := range cells {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		engine.OnCellEdited(_coord(t, ref), cells[ref])
	}
	return engine, store
}

func _storedNumber(t *testing.T, store *memoryCellStore, ref string) float64 {
	value := store.GetValue(_coord(t, ref))
	assert.Equal(t, contracts.KindNumber, value.Kind, "cell %s holds %#v", ref, value)
	return value.Num
}

func TestRecalculatorEditPropagation(t *testing.T) {
	engine, store := _newRecalculator(t, map[string]string{
		"A1": "1",
		"B1": "=A1+1",
		"C1": "=B1*2",
	})

	assert.Equal(t, 2.0, _storedNumber(t, store, "B1"))
	assert.Equal(t, 4.0, _storedNumber(t, store, "C1"))

	stats := engine.OnCellEdited(_coord(t, "A1"), "10")
	assert.Equal(t, 2, stats.CellsEvaluated)
	assert.Equal(t, 0, stats.ErrorsFound)
	assert.Equal(t, 11.0, _storedNumber(t, store, "B1"))
	assert.Equal(t, 22.0, _storedNumber(t, store, "C1"))

	t.Run("clearing-a-cell", func(t *testing.T) {
		engine.OnCellEdited(_coord(t, "A1"), "")
		_, exists := store.GetRawContent(_coord(t, "A1"))
		assert.False(t, exists)
		// empty precedent coerces to zero
		assert.Equal(t, 1.0, _storedNumber(t, store, "B1"))
	})
}

func TestRecalculatorGetDependents(t *testing.T) {
	engine, _ := _newRecalculator(t, map[string]string{
		"A1": "1",
		"B1": "=A1+1",
		"C1": "=B1*2",
		"D1": "=42",
	})

	assert.Equal(t, _coords(t, "B1", "C1"), engine.GetDependents(_coord(t, "A1")))
	assert.Equal(t, _coords(t, "C1"), engine.GetDependents(_coord(t, "B1")))
	assert.Empty(t, engine.GetDependents(_coord(t, "D1")))
}

func TestRecalculatorCircularReferences(t *testing.T) {
	engine, store := _newRecalculator(t, map[string]string{
		"A1": "=B1",
		"B1": "=A1",
		"C1": "=A1+1",
	})

	assert.Equal(t, _coords(t, "A1", "B1"), engine.GetCircularReferences())
	_assertStoredError := func(ref string) {
		value := store.GetValue(_coord(t, ref))
		assert.True(t, value.IsError())
		assert.Equal(t, contracts.ErrInvalidValue, value.Err)
	}
	_assertStoredError("A1")
	_assertStoredError("B1")

	t.Run("stats-count-the-cycle", func(t *testing.T) {
		stats := engine.OnCellEdited(_coord(t, "B1"), "=A1")
		assert.Equal(t, 2, stats.CircularRefsFound)
	})

	t.Run("breaking-the-cycle-recovers", func(t *testing.T) {
		stats := engine.OnCellEdited(_coord(t, "B1"), "5")
		assert.Equal(t, 0, stats.CircularRefsFound)
		assert.Empty(t, engine.GetCircularReferences())
		assert.Equal(t, 5.0, _storedNumber(t, store, "A1"))
		assert.Equal(t, 6.0, _storedNumber(t, store, "C1"))
	})
}

func TestRecalculatorManualMode(t *testing.T) {
	engine, store := _newRecalculator(t, map[string]string{
		"A1": "1",
		"B1": "=A1*10",
	})
	engine.SetMode(contracts.RecalcManual)

	stats := engine.OnCellEdited(_coord(t, "A1"), "7")
	assert.Equal(t, 0, stats.CellsEvaluated)

	// the literal took effect, the dependent formula did not
	assert.Equal(t, 7.0, _storedNumber(t, store, "A1"))
	assert.Equal(t, 10.0, _storedNumber(t, store, "B1"))

	stats = engine.RequestManualRecalculation()
	assert.Equal(t, 1, stats.CellsEvaluated)
	assert.Equal(t, 70.0, _storedNumber(t, store, "B1"))

	t.Run("request-on-clean-sheet-refreshes-all", func(t *testing.T) {
		stats := engine.RequestManualRecalculation()
		assert.Equal(t, 1, stats.CellsEvaluated)
		assert.Equal(t, 70.0, _storedNumber(t, store, "B1"))
	})
}

func TestRecalculatorNamedRanges(t *testing.T) {
	engine, store := _newRecalculator(t, map[string]string{
		"A1": "100",
		"B1": "=Rate*2",
	})

	value := store.GetValue(_coord(t, "B1"))
	assert.True(t, value.IsError())
	assert.Equal(t, contracts.ErrUnknownName, value.Err)

	ref, err := contracts.ParseReference("A1")
	assert.NoError(t, err)
	store.names["RATE"] = contracts.NameTarget{Ref: ref}

	stats := engine.OnNameDefined("Rate")
	assert.Equal(t, 1, stats.CellsEvaluated)
	assert.Equal(t, 200.0, _storedNumber(t, store, "B1"))

	t.Run("name-edges-track-the-target", func(t *testing.T) {
		assert.Equal(t, _coords(t, "B1"), engine.GetDependents(_coord(t, "A1")))

		engine.OnCellEdited(_coord(t, "A1"), "50")
		assert.Equal(t, 100.0, _storedNumber(t, store, "B1"))
	})

	t.Run("defining-an-unused-name-is-a-no-op", func(t *testing.T) {
		stats := engine.OnNameDefined("Unused")
		assert.Equal(t, 0, stats.CellsEvaluated)
	})
}

func TestRecalculatorStructuralEdit(t *testing.T) {
	t.Run("insert-row-shifts-cells-and-formulas", func(t *testing.T) {
		engine, store := _newRecalculator(t, map[string]string{
			"A1": "1",
			"A2": "2",
			"A3": "=SUM(A1:A2)",
		})

		engine.OnStructuralEdit(contracts.InsertRow, 1)

		raw, ok := store.GetRawContent(_coord(t, "A4"))
		assert.True(t, ok)
		assert.Equal(t, "=SUM(A1:A3)", raw)
		assert.Equal(t, 3.0, _storedNumber(t, store, "A4"))

		// A2's content moved down into A3, leaving A2 empty
		raw, ok = store.GetRawContent(_coord(t, "A3"))
		assert.True(t, ok)
		assert.Equal(t, "2", raw)
		_, occupied := store.GetRawContent(_coord(t, "A2"))
		assert.False(t, occupied)
	})

	t.Run("delete-row-rewrites-dead-references", func(t *testing.T) {
		engine, store := _newRecalculator(t, map[string]string{
			"A1": "1",
			"A2": "2",
			"A3": "=A1+A2",
		})

		engine.OnStructuralEdit(contracts.DeleteRow, 0)

		raw, ok := store.GetRawContent(_coord(t, "A2"))
		assert.True(t, ok)
		assert.Equal(t, "=#REF!+A1", raw)

		value := store.GetValue(_coord(t, "A2"))
		assert.True(t, value.IsError())
		assert.Equal(t, contracts.ErrInvalidReference, value.Err)
	})

	t.Run("delete-column-shrinks-ranges", func(t *testing.T) {
		engine, store := _newRecalculator(t, map[string]string{
			"A1": "1",
			"B1": "2",
			"C1": "3",
			"D1": "=SUM(A1:C1)",
		})

		engine.OnStructuralEdit(contracts.DeleteColumn, 1)

		raw, _ := store.GetRawContent(_coord(t, "C1"))
		assert.Equal(t, "=SUM(A1:B1)", raw)
		assert.Equal(t, 4.0, _storedNumber(t, store, "C1"))
	})

	t.Run("manual-mode-defers-reevaluation", func(t *testing.T) {
		engine, store := _newRecalculator(t, map[string]string{
			"A1": "1",
			"A2": "=A1*10",
		})
		engine.SetMode(contracts.RecalcManual)

		stats := engine.OnStructuralEdit(contracts.InsertRow, 0)
		assert.Equal(t, 0, stats.CellsEvaluated)

		raw, _ := store.GetRawContent(_coord(t, "A3"))
		assert.Equal(t, "=A2*10", raw)

		stats = engine.RequestManualRecalculation()
		assert.Equal(t, 1, stats.CellsEvaluated)
		assert.Equal(t, 10.0, _storedNumber(t, store, "A3"))
	})
}

func TestRecalculatorSweepOrder(t *testing.T) {
	build := func(t *testing.T) (*Recalculator, *memoryCellStore) {
		return _newRecalculator(t, map[string]string{
			"A1": "=1",
			"C1": "=2",
			"A2": "=3",
			"B2": "=4",
		})
	}

	t.Run("row-wise", func(t *testing.T) {
		engine, store := build(t)
		engine.SetOrder(contracts.OrderRowWise)
		store.writeLog = nil

		engine.RequestManualRecalculation()
		assert.Equal(t, _coords(t, "A1", "C1", "A2", "B2"), store.writeLog)
	})

	t.Run("column-wise", func(t *testing.T) {
		engine, store := build(t)
		engine.SetOrder(contracts.OrderColumnWise)
		store.writeLog = nil

		engine.RequestManualRecalculation()
		assert.Equal(t, _coords(t, "A1", "A2", "B2", "C1"), store.writeLog)
	})

	t.Run("dependency-edges-force-natural-order", func(t *testing.T) {
		engine, store := _newRecalculator(t, map[string]string{
			"A2": "=A1+1",
			"A1": "=B2",
			"B2": "=5",
		})
		engine.SetOrder(contracts.OrderRowWise)
		store.writeLog = nil

		engine.RequestManualRecalculation()
		assert.Equal(t, _coords(t, "B2", "A1", "A2"), store.writeLog)
	})
}

func TestRecalculatorLoad(t *testing.T) {
	store := newMemoryCellStore()
	store.raw[_coord(t, "A1")] = "5"
	store.raw[_coord(t, "B1")] = "=A1*2"
	store.raw[_coord(t, "C1")] = "=B1+A1"

	engine := NewRecalculator(store, NewFunctionRegistry(), fixedClock{}, fixedRandom{float: 0.5})
	stats := engine.Load()

	assert.Equal(t, 2, stats.CellsEvaluated)
	assert.Equal(t, 10.0, _storedNumber(t, store, "B1"))
	assert.Equal(t, 15.0, _storedNumber(t, store, "C1"))
	assert.Equal(t, _coords(t, "B1", "C1"), engine.GetDependents(_coord(t, "A1")))
}
