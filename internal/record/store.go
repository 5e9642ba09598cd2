package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reforma-dev/reforma/internal/id"
	"github.com/reforma-dev/reforma/internal/kv"
)

// ErrSave marks a failed write. It is the only store failure callers must
// report to the user; read failures degrade to empty data instead.
var ErrSave = errors.New("could not save")

// Store provides CRUD over collections backed by a kv.Store.
// Mutations are serialized: one read-modify-write in flight at a time.
type Store struct {
	kv    kv.Store
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for system timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs sets the identifier generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a Store over backend.
func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{kv: backend, now: time.Now, newID: id.New}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns the collection in insertion order. Absent or unreadable
// data yields an empty slice.
func (s *Store) ListAll(c Collection) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(c)
}

// Save replaces the whole collection.
func (s *Store) Save(c Collection, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(c, records)
}

// Create stores a copy of fields with a new id and createdAt, and returns it.
func (s *Store) Create(c Collection, fields Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read(c)
	rec := fields.WithoutSystemFields()
	rec[FieldID] = s.uniqueID(items)
	rec[FieldCreatedAt] = Timestamp(s.now())

	if err := s.write(c, append(items, rec)); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Update shallow-merges partial into the record with the given id and sets
// updatedAt. It reports false, without writing, when no such record exists.
// id and createdAt in partial are ignored.
func (s *Store) Update(c Collection, recordID string, partial Record) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read(c)
	idx := indexOf(items, recordID)
	if idx < 0 {
		return nil, false, nil
	}

	merged := items[idx].Clone()
	for k, v := range partial {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		merged[k] = v
	}
	merged[FieldUpdatedAt] = Timestamp(s.now())
	items[idx] = merged

	if err := s.write(c, items); err != nil {
		return nil, false, err
	}
	return merged.Clone(), true, nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op and does not write.
func (s *Store) Remove(c Collection, recordID string) error {
	_, err := s.RemoveWhere(c, func(r Record) bool { return r.ID() == recordID })
	return err
}

// RemoveWhere deletes every record matching pred and returns how many were
// removed. Nothing is written when nothing matches.
func (s *Store) RemoveWhere(c Collection, pred func(Record) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read(c)
	kept := items[:0:0]
	for _, r := range items {
		if !pred(r) {
			kept = append(kept, r)
		}
	}
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(c, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// GetByID returns the first record with the given id.
func (s *Store) GetByID(c Collection, recordID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read(c)
	if idx := indexOf(items, recordID); idx >= 0 {
		return items[idx], true
	}
	return nil, false
}

// Duplicate creates a copy of an existing record with fresh system fields,
// applying overrides on top. It reports false when the source is missing.
func (s *Store) Duplicate(c Collection, recordID string, overrides Record) (Record, bool, error) {
	src, ok := s.GetByID(c, recordID)
	if !ok {
		return nil, false, nil
	}
	fields := src.WithoutSystemFields()
	for k, v := range overrides {
		fields[k] = v
	}
	rec, err := s.Create(c, fields)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *Store) read(c Collection) []Record {
	data, ok, err := s.kv.Get(c.Key())
	if err != nil || !ok {
		return []Record{}
	}
	var items []Record
	if err := json.Unmarshal(data, &items); err != nil {
		return []Record{}
	}
	out := make([]Record, 0, len(items))
	for _, r := range items {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) write(c Collection, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrSave, c, err)
	}
	if err := s.kv.Set(c.Key(), data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrSave, c, err)
	}
	return nil
}

func (s *Store) uniqueID(items []Record) string {
	for {
		v := s.newID()
		if indexOf(items, v) < 0 {
			return v
		}
	}
}

func indexOf(items []Record, recordID string) int {
	for i, r := range items {
		if r.ID() == recordID {
			return i
		}
	}
	return -1
}
