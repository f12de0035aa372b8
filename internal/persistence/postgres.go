package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/health"
)

const (
	upsertBindingQuery = `
		INSERT INTO call_contexts (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
	`

	selectBindingQuery = `
		SELECT value
		FROM call_contexts
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)
	`
)

// PostgresStore expects the call_contexts table from pkg/migrations.
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewPostgresStore takes ownership of db; Close closes it.
func NewPostgresStore(db *sql.DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

func (s *PostgresStore) Put(ctx context.Context, key, value string) error {
	now := s.now()
	var expiresAt sql.NullTime
	if s.ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(s.ttl), Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, upsertBindingQuery, key, value, expiresAt, now); err != nil {
		return classifyPostgresError("upsert", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectBindingQuery, key, s.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classifyPostgresError("select", err)
	}
	return value, true, nil
}

func (s *PostgresStore) CheckHealth(ctx context.Context) health.Report {
	return health.FromError("persistence.postgres", s.db.PingContext(ctx))
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// classifyPostgresError marks connection failures as unavailable so the
// circuit breaker and logs can tell them apart from query errors.
func classifyPostgresError(op string, err error) error {
	wrapped := fmt.Errorf("postgres %s failed: %w", op, err)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return apperrors.ErrPersistence.WithCause(apperrors.Wrap(wrapped, apperrors.ErrUnavailable))
	}
	return apperrors.Wrap(wrapped, apperrors.ErrPersistence)
}
