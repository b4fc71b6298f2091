package password

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

type PostgreSQLStore struct {
	db *pgx.ConnPool
}

func NewPostgreSQLStore(db *pgx.ConnPool) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &PostgreSQLStore{db}, nil
}

// Upsert stores password
// NOTE: owner_id must be equal to the account's ID
func (s *PostgreSQLStore) Upsert(ctx context.Context, p Password) (err error) {
	if err = p.Validate(); err != nil {
		return errors.Wrap(err, "password validation failed")
	}

	q := `
	INSERT INTO password(owner_id, hash, created_at, updated_at)
	VALUES($1, $2, $3, $4)
	ON CONFLICT ON CONSTRAINT password_pk
	DO UPDATE
		SET hash		= EXCLUDED.hash,
			updated_at	= EXCLUDED.updated_at`

	_, err = s.db.ExecEx(ctx, q, nil, p.OwnerID, p.Hash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to upsert password")
	}

	return nil
}

// Get retrieves a stored password
func (s *PostgreSQLStore) Get(ctx context.Context, ownerID uuid.UUID) (p Password, err error) {
	q := `
	SELECT owner_id, hash, created_at, updated_at
	FROM password
	WHERE owner_id = $1
	LIMIT 1`

	row := s.db.QueryRowEx(ctx, q, nil, ownerID)

	switch err = row.Scan(&p.OwnerID, &p.Hash, &p.CreatedAt, &p.UpdatedAt); err {
	case nil:
		return p, nil
	case pgx.ErrNoRows:
		return p, ErrPasswordNotFound
	default:
		return p, errors.Wrap(err, "failed to scan password")
	}
}

// Delete deletes a stored password
func (s *PostgreSQLStore) Delete(ctx context.Context, ownerID uuid.UUID) (err error) {
	cmd, err := s.db.ExecEx(ctx, `DELETE FROM password WHERE owner_id = $1`, nil, ownerID)
	if err != nil {
		return errors.Wrap(err, "failed to delete password")
	}

	if cmd.RowsAffected() == 0 {
		return ErrPasswordNotFound
	}

	return nil
}
