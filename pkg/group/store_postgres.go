package group

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

// NewPostgreSQLStore returns a group store backed by PostgreSQL
func NewPostgreSQLStore(db *pgx.ConnPool) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &PostgreSQLStore{db}, nil
}

func (s *PostgreSQLStore) oneGroup(ctx context.Context, q string, args ...interface{}) (g Group, err error) {
	err = s.db.QueryRowEx(ctx, q, nil, args...).
		Scan(&g.ID, &g.Kind, &g.Key, &g.Name, &g.CreatedAt)

	switch err {
	case nil:
		return g, nil
	case pgx.ErrNoRows:
		return g, ErrGroupNotFound
	default:
		return g, errors.Wrap(err, "failed to scan group")
	}
}

func (s *PostgreSQLStore) CreateGroup(ctx context.Context, g Group) (_ Group, err error) {
	if err = g.Validate(); err != nil {
		return g, err
	}

	q := `
	INSERT INTO "group"(id, kind, key, name, created_at)
	VALUES($1, $2, $3, $4, $5)`

	_, err = s.db.ExecEx(ctx, q, nil, g.ID, g.Kind, g.Key, g.Name, g.CreatedAt)
	if err != nil {
		if pgErr, ok := errors.Cause(err).(pgx.PgError); ok && pgErr.Code == pgUniqueViolation {
			return g, ErrGroupKeyTaken
		}

		return g, errors.Wrap(err, "failed to insert group")
	}

	return g, nil
}

func (s *PostgreSQLStore) FetchGroupByKey(ctx context.Context, key string) (Group, error) {
	return s.oneGroup(ctx, `SELECT id, kind, key, name, created_at FROM "group" WHERE key = $1 LIMIT 1`, key)
}

func (s *PostgreSQLStore) CreateRelation(ctx context.Context, groupID, accountID uuid.UUID) error {
	q := `
	INSERT INTO group_members(group_id, account_id)
	VALUES($1, $2)
	ON CONFLICT DO NOTHING`

	if _, err := s.db.ExecEx(ctx, q, nil, groupID, accountID); err != nil {
		return errors.Wrap(err, "failed to create group relation")
	}

	return nil
}

func (s *PostgreSQLStore) HasRelation(ctx context.Context, groupID, accountID uuid.UUID) (has bool, err error) {
	q := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND account_id = $2)`

	if err = s.db.QueryRowEx(ctx, q, nil, groupID, accountID).Scan(&has); err != nil {
		return false, errors.Wrap(err, "failed to check group relation")
	}

	return has, nil
}

func (s *PostgreSQLStore) DeleteRelation(ctx context.Context, groupID, accountID uuid.UUID) error {
	q := `DELETE FROM group_members WHERE group_id = $1 AND account_id = $2`

	cmd, err := s.db.ExecEx(ctx, q, nil, groupID, accountID)
	if err != nil {
		return errors.Wrap(err, "failed to delete group relation")
	}

	if cmd.RowsAffected() == 0 {
		return ErrRelationNotFound
	}

	return nil
}

func (s *PostgreSQLStore) DeleteMemberRelations(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.db.ExecEx(ctx, `DELETE FROM group_members WHERE account_id = $1`, nil, accountID); err != nil {
		return errors.Wrap(err, "failed to delete member relations")
	}

	return nil
}
