package main

import (
	"strings"

	"go.etcd.io/bbolt"

	"lotusCalc/contracts"
)

var namesBucketPrefix = [4]byte{'_', '_', 'n', '_'}

// BoltCellStore is the cell storage for one sheet: an in-memory map of
// raw content and computed values, persisted to a bbolt bucket keyed
// by canonical reference text. Value changes are recorded so the
// repository can push them to webhook subscribers after a pass.
type BoltCellStore struct {
	db         *bbolt.DB
	sheetId    []byte
	serializer contracts.CellSerializer

	raws      map[contracts.Coordinate]string
	values    map[contracts.Coordinate]contracts.Value
	names     map[string]string
	pending   coordSet
	removed   coordSet
	namesEdit bool
	persisted bool
	changes   []contracts.CellChange
}

func NewBoltCellStore(db *bbolt.DB, sheetId string, serializer contracts.CellSerializer) (*BoltCellStore, error) {
	store := &BoltCellStore{
		db:         db,
		sheetId:    []byte(strings.ToLower(sheetId)),
		serializer: serializer,
		raws:       map[contracts.Coordinate]string{},
		values:     map[contracts.Coordinate]contracts.Value{},
		names:      map[string]string{},
		pending:    coordSet{},
		removed:    coordSet{},
	}
	err := store.load()
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *BoltCellStore) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.sheetId)
		if bucket != nil {
			s.persisted = true
			c := bucket.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				_, raw, _, err := s.serializer.Unmarshal(v)
				if err != nil {
					continue
				}
				ref, err := contracts.ParseReference(string(k))
				if err != nil {
					continue
				}
				s.raws[ref.Coordinate] = raw
			}
		}

		namesBucket := tx.Bucket(s.namesBucketId())
		if namesBucket != nil {
			c := namesBucket.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				s.names[string(k)] = string(v)
			}
		}
		return nil
	})
}

func (s *BoltCellStore) namesBucketId() []byte {
	return append(namesBucketPrefix[:], s.sheetId...)
}

// Persisted tells whether the sheet existed in the database before
// this process opened it.
func (s *BoltCellStore) Persisted() bool {
	return s.persisted
}

func (s *BoltCellStore) GetRawContent(coord contracts.Coordinate) (string, bool) {
	raw, ok := s.raws[coord]
	return raw, ok
}

func (s *BoltCellStore) SetRawContent(coord contracts.Coordinate, raw string) {
	s.raws[coord] = raw
	s.pending.add(coord)
	delete(s.removed, coord)
}

func (s *BoltCellStore) DeleteCell(coord contracts.Coordinate) {
	if _, existed := s.raws[coord]; !existed {
		return
	}
	delete(s.raws, coord)
	delete(s.values, coord)
	delete(s.pending, coord)
	s.removed.add(coord)
	s.changes = append(s.changes, contracts.CellChange{Ref: refText(coord), Result: ""})
}

func (s *BoltCellStore) GetValue(coord contracts.Coordinate) contracts.Value {
	return s.values[coord]
}

func (s *BoltCellStore) SetValue(coord contracts.Coordinate, value contracts.Value) {
	previous, had := s.values[coord]
	if had && previous == value {
		return
	}
	s.values[coord] = value
	s.pending.add(coord)
	s.changes = append(s.changes, contracts.CellChange{Ref: refText(coord), Result: value.Display()})
}

func (s *BoltCellStore) SetFormulaError(coord contracts.Coordinate, kind contracts.ErrorKind) {
	s.SetValue(coord, contracts.ErrorValue(kind))
}

func (s *BoltCellStore) ResolveName(identifier string) (contracts.NameTarget, bool) {
	targetText, ok := s.names[strings.ToUpper(identifier)]
	if !ok {
		return contracts.NameTarget{}, false
	}
	if rng, err := contracts.ParseRange(targetText); err == nil {
		return contracts.NameTarget{Range: rng, IsRange: true}, true
	}
	ref, err := contracts.ParseReference(targetText)
	if err != nil {
		return contracts.NameTarget{}, false
	}
	return contracts.NameTarget{Ref: ref}, true
}

// SetName defines or retargets a named reference; an empty target
// removes the name.
func (s *BoltCellStore) SetName(identifier string, target string) {
	identifier = strings.ToUpper(identifier)
	if target == "" {
		delete(s.names, identifier)
	} else {
		s.names[identifier] = strings.ToUpper(target)
	}
	s.namesEdit = true
}

func (s *BoltCellStore) GetNameTarget(identifier string) (string, bool) {
	target, ok := s.names[strings.ToUpper(identifier)]
	return target, ok
}

func (s *BoltCellStore) EachCell(visit func(contracts.Coordinate, string) bool) {
	for _, coord := range s.sortedCells() {
		if !visit(coord, s.raws[coord]) {
			return
		}
	}
}

func (s *BoltCellStore) sortedCells() []contracts.Coordinate {
	out := make([]contracts.Coordinate, 0, len(s.raws))
	for coord := range s.raws {
		out = append(out, coord)
	}
	sortCoordinates(out)
	return out
}

// TakeChanges returns the value changes recorded since the last call
// and resets the log.
func (s *BoltCellStore) TakeChanges() []contracts.CellChange {
	changes := s.changes
	s.changes = nil
	return changes
}

// Flush writes pending cells, removals and name edits to the database
// in one batch.
func (s *BoltCellStore) Flush() error {
	if len(s.pending) == 0 && len(s.removed) == 0 && !s.namesEdit {
		return nil
	}
	err := s.db.Batch(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(s.sheetId)
		if err != nil {
			return err
		}
		for coord := range s.pending {
			raw, ok := s.raws[coord]
			if !ok {
				continue
			}
			ref := refText(coord)
			record := s.serializer.Marshal(ref, raw, s.values[coord].Display())
			if err = bucket.Put([]byte(ref), record); err != nil {
				return err
			}
		}
		for coord := range s.removed {
			if err = bucket.Delete([]byte(refText(coord))); err != nil {
				return err
			}
		}

		if s.namesEdit {
			if err = tx.DeleteBucket(s.namesBucketId()); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if len(s.names) > 0 {
				namesBucket, err := tx.CreateBucket(s.namesBucketId())
				if err != nil {
					return err
				}
				for identifier, target := range s.names {
					if err = namesBucket.Put([]byte(identifier), []byte(target)); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.pending = coordSet{}
	s.removed = coordSet{}
	s.namesEdit = false
	s.persisted = true
	return nil
}

func refText(coord contracts.Coordinate) string {
	return contracts.Reference{Coordinate: coord}.String()
}
