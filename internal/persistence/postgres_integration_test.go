//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"ariproxy/pkg/migrations"
)

func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ariproxy_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	require.NoError(t, migrations.MigratePostgres(db))
	// Already at the latest version.
	require.NoError(t, migrations.MigratePostgres(db))

	store := NewPostgresStore(db, time.Second)
	t.Cleanup(func() { _ = store.Close() })

	assert.True(t, store.CheckHealth(ctx).OK())

	_, found, err := store.Get(ctx, "resource:ch-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "resource:ch-1", "cc-1"))
	value, found, err := store.Get(ctx, "resource:ch-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cc-1", value)

	require.NoError(t, store.Put(ctx, "resource:ch-1", "cc-2"))
	value, _, err = store.Get(ctx, "resource:ch-1")
	require.NoError(t, err)
	assert.Equal(t, "cc-2", value)

	require.Eventually(t, func() bool {
		_, found, err := store.Get(ctx, "resource:ch-1")
		return err == nil && !found
	}, 5*time.Second, 100*time.Millisecond)
}
