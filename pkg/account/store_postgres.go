package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation
const pgUniqueViolation = "23505"

type PostgreSQLStore struct {
	db *pgx.ConnPool
}

// NewPostgreSQLStore returns an account store backed by PostgreSQL
// NOTE: dependent tables (password, group_members, device_registration)
// reference account(id) with ON DELETE CASCADE
func NewPostgreSQLStore(db *pgx.ConnPool) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &PostgreSQLStore{db}, nil
}

func (s *PostgreSQLStore) oneAccount(ctx context.Context, q string, args ...interface{}) (a Account, err error) {
	err = s.db.QueryRowEx(ctx, q, nil, args...).
		Scan(&a.ID, &a.Username, &a.IsAdmin, &a.CreatedAt)

	switch err {
	case nil:
		return a, nil
	case pgx.ErrNoRows:
		return a, ErrAccountNotFound
	default:
		return a, errors.Wrap(err, "failed to scan account")
	}
}

func (s *PostgreSQLStore) CreateAccount(ctx context.Context, a Account) (_ Account, err error) {
	if err = a.Validate(); err != nil {
		return a, err
	}

	q := `
	INSERT INTO account(id, username, is_admin, created_at)
	VALUES($1, $2, $3, $4)`

	_, err = s.db.ExecEx(ctx, q, nil, a.ID, a.Username, a.IsAdmin, a.CreatedAt)
	if err != nil {
		if pgErr, ok := errors.Cause(err).(pgx.PgError); ok && pgErr.Code == pgUniqueViolation {
			return a, ErrUsernameTaken
		}

		return a, errors.Wrap(err, "failed to execute insert statement")
	}

	return a, nil
}

func (s *PostgreSQLStore) FetchAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.oneAccount(ctx, `SELECT id, username, is_admin, created_at FROM account WHERE id = $1 LIMIT 1`, id)
}

func (s *PostgreSQLStore) FetchAccountByUsername(ctx context.Context, username string) (Account, error) {
	return s.oneAccount(ctx, `SELECT id, username, is_admin, created_at FROM account WHERE username = $1 LIMIT 1`, username)
}

func (s *PostgreSQLStore) DeleteAccountByID(ctx context.Context, id uuid.UUID) (err error) {
	if id == uuid.Nil {
		return ErrZeroID
	}

	cmd, err := s.db.ExecEx(ctx, `DELETE FROM account WHERE id = $1`, nil, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete account: id=%s", id)
	}

	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}
