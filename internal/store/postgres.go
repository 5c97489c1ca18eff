package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresBackend keeps values in the planner_kv table.
type PostgresBackend struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgresBackend expects the schema from database.EnsureSchema.
func NewPostgresBackend(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db, now: time.Now}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	if err := b.db.GetContext(ctx, &value, `SELECT value FROM planner_kv WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO planner_kv (key, value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := b.db.ExecContext(ctx, query, key, string(value), b.now().UTC())
	return err
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM planner_kv WHERE key = $1`, key)
	return err
}
