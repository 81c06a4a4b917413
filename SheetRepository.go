package main

import (
	"fmt"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	"lotusCalc/contracts"
)

var InvalidNameError = fmt.Errorf("invalid name identifier")

var InvalidEditIndexError = fmt.Errorf("edit index out of bounds")

// SheetRepository owns one cell store and one recalculation engine per
// sheet, created lazily on first touch. Engines keep their sheet fully
// evaluated; the repository's job is parsing API-level reference text,
// flushing storage after each mutation and pushing value changes to
// webhook subscribers.
type SheetRepository struct {
	db         *bbolt.DB
	serializer contracts.CellSerializer
	functions  *FunctionRegistry
	clock      Clock
	random     RandomGenerator
	dispatcher contracts.WebhookDispatcher

	mu     sync.Mutex
	sheets map[string]*sheetState
}

type sheetState struct {
	store  *BoltCellStore
	engine *Recalculator
}

func NewSheetRepository(
	db *bbolt.DB, serializer contracts.CellSerializer, functions *FunctionRegistry,
	clock Clock, random RandomGenerator, dispatcher contracts.WebhookDispatcher,
) *SheetRepository {
	return &SheetRepository{
		db:         db,
		serializer: serializer,
		functions:  functions,
		clock:      clock,
		random:     random,
		dispatcher: dispatcher,
		sheets:     map[string]*sheetState{},
	}
}

func (s *SheetRepository) sheet(sheetId string, createIfMissing bool) (*sheetState, error) {
	sheetId = strings.ToLower(sheetId)

	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sheets[sheetId]; ok {
		return state, nil
	}

	store, err := NewBoltCellStore(s.db, sheetId, s.serializer)
	if err != nil {
		return nil, err
	}
	if !store.Persisted() && !createIfMissing {
		return nil, fmt.Errorf("%s: %w", sheetId, contracts.SheetNotFoundError)
	}

	engine := NewRecalculator(store, s.functions, s.clock, s.random)
	engine.Load()
	store.TakeChanges()

	state := &sheetState{store: store, engine: engine}
	s.sheets[sheetId] = state
	return state, nil
}

// finish persists a mutation and pushes recorded value changes out.
func (s *SheetRepository) finish(sheetId string, state *sheetState) error {
	err := state.store.Flush()
	if err != nil {
		return err
	}
	changes := state.store.TakeChanges()
	if len(changes) > 0 && s.dispatcher != nil {
		s.dispatcher.Notify(strings.ToLower(sheetId), changes)
	}
	return nil
}

func (s *SheetRepository) SetCell(sheetId string, ref string, value string) (*contracts.Cell, error) {
	parsed, err := contracts.ParseReference(ref)
	if err != nil {
		return nil, err
	}

	state, err := s.sheet(sheetId, true)
	if err != nil {
		return nil, err
	}

	state.engine.OnCellEdited(parsed.Coordinate, value)
	if err = s.finish(sheetId, state); err != nil {
		return nil, err
	}

	return &contracts.Cell{
		Value:  value,
		Result: state.store.GetValue(parsed.Coordinate).Display(),
	}, nil
}

func (s *SheetRepository) GetCell(sheetId string, ref string) (*contracts.Cell, error) {
	parsed, err := contracts.ParseReference(ref)
	if err != nil {
		return nil, err
	}

	state, err := s.sheet(sheetId, false)
	if err != nil {
		return nil, err
	}

	raw, ok := state.store.GetRawContent(parsed.Coordinate)
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, contracts.CellNotFoundError)
	}
	return &contracts.Cell{
		Value:  raw,
		Result: state.store.GetValue(parsed.Coordinate).Display(),
	}, nil
}

func (s *SheetRepository) GetCellList(sheetId string) (contracts.CellList, error) {
	state, err := s.sheet(sheetId, false)
	if err != nil {
		return nil, err
	}

	cellList := contracts.CellList{}
	state.store.EachCell(func(coord contracts.Coordinate, raw string) bool {
		cellList[refText(coord)] = &contracts.Cell{
			Value:  raw,
			Result: state.store.GetValue(coord).Display(),
		}
		return true
	})
	return cellList, nil
}

// SetName defines a named reference. The identifier must not itself
// read as a cell reference and the target must be a cell or range.
func (s *SheetRepository) SetName(sheetId string, name string, target string) error {
	if !validNameIdentifier(name) {
		return fmt.Errorf("%s: %w", name, InvalidNameError)
	}
	if target != "" {
		if _, rangeErr := contracts.ParseRange(target); rangeErr != nil {
			if _, refErr := contracts.ParseReference(target); refErr != nil {
				return fmt.Errorf("%s: %w", target, contracts.InvalidReferenceError)
			}
		}
	}

	state, err := s.sheet(sheetId, true)
	if err != nil {
		return err
	}

	state.store.SetName(name, target)
	state.engine.OnNameDefined(strings.ToUpper(name))
	return s.finish(sheetId, state)
}

func (s *SheetRepository) GetName(sheetId string, name string) (string, error) {
	state, err := s.sheet(sheetId, false)
	if err != nil {
		return "", err
	}
	target, ok := state.store.GetNameTarget(name)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, contracts.NameNotFoundError)
	}
	return target, nil
}

func (s *SheetRepository) Recalculate(sheetId string) (contracts.RecalcStats, error) {
	state, err := s.sheet(sheetId, false)
	if err != nil {
		return contracts.RecalcStats{}, err
	}
	stats := state.engine.RequestManualRecalculation()
	return stats, s.finish(sheetId, state)
}

func (s *SheetRepository) StructuralEdit(sheetId string, kind contracts.StructuralEditKind, index int) (contracts.RecalcStats, error) {
	limit := contracts.MaxRow
	if kind == contracts.InsertColumn || kind == contracts.DeleteColumn {
		limit = contracts.MaxColumn
	}
	if index < 0 || index > limit {
		return contracts.RecalcStats{}, fmt.Errorf("%d: %w", index, InvalidEditIndexError)
	}

	state, err := s.sheet(sheetId, false)
	if err != nil {
		return contracts.RecalcStats{}, err
	}
	stats := state.engine.OnStructuralEdit(kind, index)
	return stats, s.finish(sheetId, state)
}

func (s *SheetRepository) SetMode(sheetId string, mode contracts.RecalcMode) error {
	state, err := s.sheet(sheetId, true)
	if err != nil {
		return err
	}
	state.engine.SetMode(mode)
	return nil
}

func (s *SheetRepository) SetOrder(sheetId string, order contracts.RecalcOrder) error {
	state, err := s.sheet(sheetId, true)
	if err != nil {
		return err
	}
	state.engine.SetOrder(order)
	return nil
}

func (s *SheetRepository) GetDependents(sheetId string, ref string) ([]string, error) {
	parsed, err := contracts.ParseReference(ref)
	if err != nil {
		return nil, err
	}
	state, err := s.sheet(sheetId, false)
	if err != nil {
		return nil, err
	}

	coords := state.engine.GetDependents(parsed.Coordinate)
	refs := make([]string, len(coords))
	for i, coord := range coords {
		refs[i] = refText(coord)
	}
	return refs, nil
}

func (s *SheetRepository) GetCircularReferences(sheetId string) ([]string, error) {
	state, err := s.sheet(sheetId, false)
	if err != nil {
		return nil, err
	}

	coords := state.engine.GetCircularReferences()
	refs := make([]string, len(coords))
	for i, coord := range coords {
		refs[i] = refText(coord)
	}
	return refs, nil
}

// validNameIdentifier rejects anything that could be confused with a
// cell reference and anything the tokenizer would not scan as a single
// identifier.
func validNameIdentifier(name string) bool {
	if name == "" {
		return false
	}
	if !isIdentStart(name[0]) || name[0] == '$' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentChar(name[i]) || name[i] == '$' || name[i] == '.' {
			return false
		}
	}
	_, err := contracts.ParseReference(name)
	return err != nil
}
