package content

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Filter narrows a listing down, zero fields don't filter anything
type Filter struct {
	// PublishedUntil excludes records published after it
	PublishedUntil time.Time

	// EndedAfter excludes agenda items which ended at or before it
	EndedAfter time.Time
}

// Store describes a storage contract for content records,
// listings come back in their canonical order:
// agenda by start and publications by publication time (newest first),
// contacts by their order
type Store interface {
	CreateRecord(ctx context.Context, r Record) (Record, error)
	UpdateRecord(ctx context.Context, r Record) (Record, error)
	FetchRecord(ctx context.Context, k Kind, id int64) (Record, error)
	FetchRecords(ctx context.Context, k Kind, f Filter) ([]Record, error)
	DeleteRecord(ctx context.Context, k Kind, id int64) error
}

type memoryStore struct {
	records map[Kind]map[int64]Record
	lastID  map[Kind]int64
	sync.RWMutex
}

// NewMemoryStore returns an in-memory content store
func NewMemoryStore() Store {
	s := &memoryStore{
		records: make(map[Kind]map[int64]Record),
		lastID:  make(map[Kind]int64),
	}

	for _, k := range Kinds {
		s.records[k] = make(map[int64]Record)
	}

	return s
}

func (s *memoryStore) CreateRecord(ctx context.Context, r Record) (Record, error) {
	if _, ok := s.records[r.Kind()]; !ok {
		return r, ErrInvalidKind
	}

	s.Lock()
	s.lastID[r.Kind()]++
	r = r.WithID(s.lastID[r.Kind()])
	s.records[r.Kind()][r.RecordID()] = r
	s.Unlock()

	return r, nil
}

func (s *memoryStore) UpdateRecord(ctx context.Context, r Record) (Record, error) {
	if _, ok := s.records[r.Kind()]; !ok {
		return r, ErrInvalidKind
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.records[r.Kind()][r.RecordID()]; !ok {
		return r, ErrRecordNotFound
	}

	s.records[r.Kind()][r.RecordID()] = r

	return r, nil
}

func (s *memoryStore) FetchRecord(ctx context.Context, k Kind, id int64) (Record, error) {
	if _, ok := s.records[k]; !ok {
		return nil, ErrInvalidKind
	}

	s.RLock()
	r, ok := s.records[k][id]
	s.RUnlock()

	if !ok {
		return nil, ErrRecordNotFound
	}

	return r, nil
}

func (s *memoryStore) FetchRecords(ctx context.Context, k Kind, f Filter) ([]Record, error) {
	if _, ok := s.records[k]; !ok {
		return nil, ErrInvalidKind
	}

	rs := make([]Record, 0)

	s.RLock()
	for _, r := range s.records[k] {
		if f.Matches(r) {
			rs = append(rs, r)
		}
	}
	s.RUnlock()

	sort.SliceStable(rs, func(i, j int) bool {
		return less(rs[i], rs[j])
	})

	return rs, nil
}

func (s *memoryStore) DeleteRecord(ctx context.Context, k Kind, id int64) error {
	if _, ok := s.records[k]; !ok {
		return ErrInvalidKind
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.records[k][id]; !ok {
		return ErrRecordNotFound
	}

	delete(s.records[k], id)

	return nil
}

// Matches tells whether a record passes the filter
func (f Filter) Matches(r Record) bool {
	switch v := r.(type) {
	case AgendaItem:
		return f.EndedAfter.IsZero() || v.End.After(f.EndedAfter)
	case Bulletin:
		return f.PublishedUntil.IsZero() || !v.PublishedAt.After(f.PublishedUntil)
	case Newsletter:
		return f.PublishedUntil.IsZero() || !v.PublishedAt.After(f.PublishedUntil)
	default:
		return true
	}
}

// less reports the canonical listing order of two records of the same kind,
// ties are broken by ID
func less(a, b Record) bool {
	switch x := a.(type) {
	case AgendaItem:
		y := b.(AgendaItem)
		if !x.Start.Equal(y.Start) {
			return x.Start.After(y.Start)
		}
	case Bulletin:
		y := b.(Bulletin)
		if !x.PublishedAt.Equal(y.PublishedAt) {
			return x.PublishedAt.After(y.PublishedAt)
		}
	case Newsletter:
		y := b.(Newsletter)
		if !x.PublishedAt.Equal(y.PublishedAt) {
			return x.PublishedAt.After(y.PublishedAt)
		}
	case Contact:
		y := b.(Contact)
		if x.Order != y.Order {
			return x.Order < y.Order
		}

		return x.ID < y.ID
	}

	return a.RecordID() > b.RecordID()
}
