package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Notifier announces freshly published bulletins
type Notifier interface {
	AnnounceBulletin(ctx context.Context, b Bulletin) error
}

// Manager is responsible for content records and their listings
type Manager struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewManager initializing a new content manager
func NewManager(s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	m := &Manager{
		store: s,
		now:   time.Now,
	}

	return m, nil
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[content]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize content manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// SetNotifier assigns a notifier for new bulletins, nil disables announcements
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// SetClock replaces the time source used by listings
func (m *Manager) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// Create validates and stores a new record
// NOTE: a bulletin which is already published is announced right away,
// a failed announcement does not fail the creation
func (m *Manager) Create(ctx context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	k := r.Kind()

	r, err := m.store.CreateRecord(ctx, r.WithID(0))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", k)
	}

	m.Logger().Debug(
		"created record",
		zap.String("kind", r.Kind().String()),
		zap.Int64("id", r.RecordID()),
	)

	if b, ok := r.(Bulletin); ok && m.notifier != nil && !b.PublishedAt.After(m.now()) {
		if err = m.notifier.AnnounceBulletin(ctx, b); err != nil {
			m.Logger().Warn(
				"failed to announce bulletin",
				zap.Int64("id", b.ID),
				zap.Error(err),
			)
		}
	}

	return r, nil
}

// Update replaces an existing record
func (m *Manager) Update(ctx context.Context, r Record) (Record, error) {
	if r.RecordID() == 0 {
		return nil, ErrZeroID
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	k := r.Kind()

	r, err := m.store.UpdateRecord(ctx, r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update %s", k)
	}

	return r, nil
}

// Patch applies the fields of a JSON body to an existing record
func (m *Manager) Patch(ctx context.Context, k Kind, id int64, body []byte) (Record, error) {
	r, err := m.Record(ctx, k, id)
	if err != nil {
		return nil, err
	}

	if r, err = Merge(r, body); err != nil {
		return nil, err
	}

	return m.Update(ctx, r)
}

// Record returns a single record
func (m *Manager) Record(ctx context.Context, k Kind, id int64) (Record, error) {
	if id == 0 {
		return nil, ErrRecordNotFound
	}

	return m.store.FetchRecord(ctx, k, id)
}

// Delete deletes a single record
func (m *Manager) Delete(ctx context.Context, k Kind, id int64) error {
	if err := m.store.DeleteRecord(ctx, k, id); err != nil {
		return errors.Wrapf(err, "failed to delete %s", k)
	}

	m.Logger().Debug("deleted record", zap.String("kind", k.String()), zap.Int64("id", id))

	return nil
}

// DefaultFilter returns the filter of the default listing of a given kind:
// publications must be published by now and agenda items must not
// have ended before today
func (m *Manager) DefaultFilter(k Kind) Filter {
	now := m.now()

	switch k {
	case KBulletin, KNewsletter:
		return Filter{PublishedUntil: now}
	case KAgendaItem:
		return Filter{EndedAfter: startOfDay(now)}
	default:
		return Filter{}
	}
}

// List returns the listing of a given kind, all lifts the default filter
func (m *Manager) List(ctx context.Context, k Kind, all bool) ([]Record, error) {
	f := Filter{}
	if !all {
		f = m.DefaultFilter(k)
	}

	rs, err := m.store.FetchRecords(ctx, k, f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", k)
	}

	return rs, nil
}

// TimelineEntry is a single item of the combined feed
type TimelineEntry struct {
	Kind  string    `json:"kind"`
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Timeline merges bulletins, newsletters and agenda items into a single
// feed, newest first
func (m *Manager) Timeline(ctx context.Context, allPublications, allAgenda bool) ([]TimelineEntry, error) {
	entries := make([]TimelineEntry, 0)

	sources := []struct {
		kind Kind
		all  bool
	}{
		{KBulletin, allPublications},
		{KNewsletter, allPublications},
		{KAgendaItem, allAgenda},
	}

	for _, src := range sources {
		rs, err := m.List(ctx, src.kind, src.all)
		if err != nil {
			return nil, err
		}

		for _, r := range rs {
			entries = append(entries, timelineEntry(r))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	return entries, nil
}

func timelineEntry(r Record) TimelineEntry {
	e := TimelineEntry{Kind: r.Kind().String(), ID: r.RecordID()}

	switch v := r.(type) {
	case AgendaItem:
		e.Title, e.Date = v.Title, v.Start
	case Bulletin:
		e.Title, e.Date = v.Title, v.PublishedAt
	case Newsletter:
		e.Title, e.Date = v.Title, v.PublishedAt
	}

	return e
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
