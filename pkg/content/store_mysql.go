package content

import (
	"context"

	"github.com/gocraft/dbr/v2"
	"github.com/pkg/errors"
)

// MySQLStore keeps content records in MySQL
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore returns a content store with mysql used as a backend
func NewMySQLStore(db *dbr.Connection) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &MySQLStore{db}, nil
}

//? BEGIN ->>>----------------------------------------------------------------
//? unexported utility functions

// columns lists the stored columns of a kind, except the id
func columns(k Kind) []string {
	switch k {
	case KAgendaItem:
		return []string{"title", "type", "start", "end"}
	case KBulletin:
		return []string{"title", "body", "published_at"}
	case KNewsletter:
		return []string{"title", "document_url", "published_at"}
	case KContact:
		return []string{"display_name", "email", "order", "detail_text"}
	default:
		return nil
	}
}

// values maps column names to the values of a record
func values(r Record) map[string]interface{} {
	switch v := r.(type) {
	case AgendaItem:
		return map[string]interface{}{"title": v.Title, "type": v.Type, "start": v.Start, "end": v.End}
	case Bulletin:
		return map[string]interface{}{"title": v.Title, "body": v.Body, "published_at": v.PublishedAt}
	case Newsletter:
		return map[string]interface{}{"title": v.Title, "document_url": v.DocumentURL, "published_at": v.PublishedAt}
	case Contact:
		return map[string]interface{}{"display_name": v.DisplayName, "email": v.Email, "order": v.Order, "detail_text": v.DetailText}
	default:
		return nil
	}
}

// load executes a select statement into a slice of records of a given kind
func load(ctx context.Context, k Kind, stmt *dbr.SelectStmt) (rs []Record, err error) {
	rs = make([]Record, 0)

	switch k {
	case KAgendaItem:
		var items []AgendaItem
		if _, err = stmt.LoadContext(ctx, &items); err == nil {
			for _, v := range items {
				rs = append(rs, v)
			}
		}
	case KBulletin:
		var items []Bulletin
		if _, err = stmt.LoadContext(ctx, &items); err == nil {
			for _, v := range items {
				rs = append(rs, v)
			}
		}
	case KNewsletter:
		var items []Newsletter
		if _, err = stmt.LoadContext(ctx, &items); err == nil {
			for _, v := range items {
				rs = append(rs, v)
			}
		}
	case KContact:
		var items []Contact
		if _, err = stmt.LoadContext(ctx, &items); err == nil {
			for _, v := range items {
				rs = append(rs, v)
			}
		}
	default:
		return nil, ErrInvalidKind
	}

	return rs, err
}

//? unexported utility functions
//? END ---<<<----------------------------------------------------------------

func (s *MySQLStore) CreateRecord(ctx context.Context, r Record) (Record, error) {
	cols := columns(r.Kind())
	if cols == nil {
		return r, ErrInvalidKind
	}

	vals := values(r)
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		args[i] = vals[c]
	}

	res, err := s.db.NewSession(nil).
		InsertInto(r.Kind().Table()).
		Columns(cols...).
		Values(args...).
		ExecContext(ctx)

	if err != nil {
		return r, errors.Wrapf(err, "failed to insert %s", r.Kind())
	}

	id, err := res.LastInsertId()
	if err != nil {
		return r, errors.Wrap(err, "failed to obtain last insert id")
	}

	return r.WithID(id), nil
}

func (s *MySQLStore) UpdateRecord(ctx context.Context, r Record) (Record, error) {
	if r.RecordID() == 0 {
		return r, ErrZeroID
	}

	updates := values(r)
	if updates == nil {
		return r, ErrInvalidKind
	}

	_, err := s.db.NewSession(nil).
		Update(r.Kind().Table()).
		SetMap(updates).
		Where("id = ?", r.RecordID()).
		ExecContext(ctx)

	if err != nil {
		return r, errors.Wrapf(err, "failed to update %s", r.Kind())
	}

	// MySQL counts only changed rows as affected, so existence is checked separately
	if _, err = s.FetchRecord(ctx, r.Kind(), r.RecordID()); err != nil {
		return r, err
	}

	return r, nil
}

func (s *MySQLStore) FetchRecord(ctx context.Context, k Kind, id int64) (Record, error) {
	if k.Table() == "" {
		return nil, ErrInvalidKind
	}

	stmt := s.db.NewSession(nil).
		Select("*").
		From(k.Table()).
		Where("id = ?", id).
		Limit(1)

	rs, err := load(ctx, k, stmt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", k)
	}

	if len(rs) == 0 {
		return nil, ErrRecordNotFound
	}

	return rs[0], nil
}

func (s *MySQLStore) FetchRecords(ctx context.Context, k Kind, f Filter) ([]Record, error) {
	if k.Table() == "" {
		return nil, ErrInvalidKind
	}

	stmt := s.db.NewSession(nil).Select("*").From(k.Table())

	switch k {
	case KAgendaItem:
		if !f.EndedAfter.IsZero() {
			stmt = stmt.Where("`end` > ?", f.EndedAfter)
		}

		stmt = stmt.OrderDesc("start").OrderDesc("id")
	case KBulletin, KNewsletter:
		if !f.PublishedUntil.IsZero() {
			stmt = stmt.Where("published_at <= ?", f.PublishedUntil)
		}

		stmt = stmt.OrderDesc("published_at").OrderDesc("id")
	case KContact:
		// ORDER BY is not quoted by dbr
		stmt = stmt.OrderAsc("`order`").OrderAsc("id")
	}

	rs, err := load(ctx, k, stmt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s listing", k)
	}

	return rs, nil
}

func (s *MySQLStore) DeleteRecord(ctx context.Context, k Kind, id int64) error {
	if k.Table() == "" {
		return ErrInvalidKind
	}

	res, err := s.db.NewSession(nil).
		DeleteFrom(k.Table()).
		Where("id = ?", id).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", k)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if ra == 0 {
		return ErrRecordNotFound
	}

	return nil
}
