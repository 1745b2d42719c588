package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// SessionStore reads the identity provider's session and "user" tables.
// Column names are camelCase and must stay quoted.
type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore returns a SessionStore over db.
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRow struct {
	ExpiresAt time.Time      `db:"expires_at"`
	UserID    string         `db:"user_id"`
	Email     sql.NullString `db:"email"`
	Name      sql.NullString `db:"name"`
}

func (s *SessionStore) LookupSession(ctx context.Context, token string) (ports.Session, error) {
	query, args, err := psql.Select(
		`s."expiresAt" AS expires_at`,
		"u.id AS user_id",
		"u.email AS email",
		"u.name AS name",
	).
		From("session s").
		Join(`"user" u ON s."userId" = u.id`).
		Where(sq.Eq{"s.token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return ports.Session{}, fmt.Errorf("build session lookup: %w", err)
	}

	var row sessionRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.Session{}, domain.ErrUnauthenticated
		}
		return ports.Session{}, fmt.Errorf("lookup session: %w", err)
	}

	return ports.Session{
		User: domain.User{
			ID:    row.UserID,
			Email: row.Email.String,
			Name:  row.Name.String,
		},
		ExpiresAt: row.ExpiresAt.UTC(),
	}, nil
}
