package device

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

// registration columns, a missing token is stored as NULL
const registrationColumns = `account_id, provider, active, COALESCE(token, ''), name, created_at, updated_at`

type PostgreSQLStore struct {
	db *pgx.ConnPool
}

// NewPostgreSQLStore returns a registration store backed by PostgreSQL
func NewPostgreSQLStore(db *pgx.ConnPool) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &PostgreSQLStore{db}, nil
}

func (s *PostgreSQLStore) oneRegistration(ctx context.Context, q string, args ...interface{}) (r Registration, err error) {
	err = s.db.QueryRowEx(ctx, q, nil, args...).
		Scan(&r.AccountID, &r.Provider, &r.Active, &r.Token, &r.Name, &r.CreatedAt, &r.UpdatedAt)

	switch err {
	case nil:
		return r, nil
	case pgx.ErrNoRows:
		return r, ErrRegistrationNotFound
	default:
		return r, errors.Wrap(err, "failed to scan registration")
	}
}

func (s *PostgreSQLStore) manyRegistrations(ctx context.Context, q string, args ...interface{}) (rs []Registration, err error) {
	rs = make([]Registration, 0)

	rows, err := s.db.QueryEx(ctx, q, nil, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch registrations")
	}
	defer rows.Close()

	for rows.Next() {
		var r Registration

		if err = rows.Scan(&r.AccountID, &r.Provider, &r.Active, &r.Token, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return rs, errors.Wrap(err, "failed to scan registrations")
		}

		rs = append(rs, r)
	}

	return rs, rows.Err()
}

func (s *PostgreSQLStore) UpsertRegistration(ctx context.Context, r Registration) (_ Registration, err error) {
	if err = r.Validate(); err != nil {
		return r, err
	}

	q := `
	INSERT INTO device_registration(account_id, provider, active, token, name, created_at, updated_at)
	VALUES($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	ON CONFLICT ON CONSTRAINT device_registration_pk
	DO UPDATE
		SET provider	= EXCLUDED.provider,
			active		= EXCLUDED.active,
			token		= EXCLUDED.token,
			name		= EXCLUDED.name,
			updated_at	= EXCLUDED.updated_at
	RETURNING ` + registrationColumns

	return s.oneRegistration(
		ctx,
		q,
		r.AccountID, string(r.Provider), r.Active, r.Token, r.Name, r.CreatedAt, r.UpdatedAt,
	)
}

func (s *PostgreSQLStore) FetchRegistration(ctx context.Context, accountID uuid.UUID) (Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM device_registration WHERE account_id = $1 LIMIT 1`

	return s.oneRegistration(ctx, q, accountID)
}

func (s *PostgreSQLStore) FetchActiveRegistrations(ctx context.Context, p Provider) ([]Registration, error) {
	q := `
	SELECT ` + registrationColumns + `
	FROM device_registration
	WHERE provider = $1 AND active
	ORDER BY created_at`

	return s.manyRegistrations(ctx, q, string(p))
}

func (s *PostgreSQLStore) DeleteRegistration(ctx context.Context, accountID uuid.UUID) error {
	cmd, err := s.db.ExecEx(ctx, `DELETE FROM device_registration WHERE account_id = $1`, nil, accountID)
	if err != nil {
		return errors.Wrap(err, "failed to delete registration")
	}

	if cmd.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}
