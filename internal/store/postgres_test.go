package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockBackend(t *testing.T) (*PostgresBackend, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	b := NewPostgresBackend(sqlx.NewDb(raw, "sqlmock"))
	b.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return b, mock
}

func TestPostgresBackendGet(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM planner_kv WHERE key = $1")).
		WithArgs("settings").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"notifications":true}`))

	got, err := b.Get(context.Background(), "settings")
	require.NoError(t, err)
	require.Equal(t, `{"notifications":true}`, string(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendGetMissing(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM planner_kv WHERE key = $1")).
		WithArgs("users").
		WillReturnError(sql.ErrNoRows)

	_, err := b.Get(context.Background(), "users")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendSetUpserts(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO planner_kv (key, value, updated_at) VALUES ($1, $2, $3)")).
		WithArgs("users", `[]`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.Set(context.Background(), "users", []byte(`[]`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendDelete(t *testing.T) {
	b, mock := newMockBackend(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM planner_kv WHERE key = $1")).
		WithArgs("currentUser").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.Delete(context.Background(), "currentUser"))
	require.NoError(t, mock.ExpectationsWereMet())
}
