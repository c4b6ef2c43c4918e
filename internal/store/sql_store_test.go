package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestSQLite(t *testing.T) *SQLStore {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	testCartStore(t, func(t *testing.T) CartStore {
		return newTestSQLite(t)
	})
}

func TestSQLiteStore_ReopenKeepsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()
	want := sampleCart()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Close())

	// migrations must be a no-op the second time
	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSameCart(t, want, got)
}

func TestSQLiteStore_SingleRow(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save(ctx, sampleCart()))
	}

	var rows, totalItems int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*), MAX(total_items) FROM cart`).Scan(&rows, &totalItems))
	assert.Equal(t, 1, rows)
	assert.Equal(t, 3, totalItems)
}

func TestSQLiteStore_CorruptRecord(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.db.Exec(`INSERT INTO cart (id, payload, total_items, total_cost, updated_at) VALUES (1, '{', 0, 0, ?)`, time.Now())
	require.NoError(t, err)

	cart, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Nil(t, cart)
}

func TestSQLiteStore_ClosedDatabase(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.db.Close())

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	testCartStore(t, func(t *testing.T) CartStore {
		s, err := OpenPostgres(dsn)
		require.NoError(t, err)
		// subtests share the database, start each one from an empty table
		_, err = s.db.Exec(`TRUNCATE cart`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})

	t.Run("payload is stored as jsonb", func(t *testing.T) {
		s, err := OpenPostgres(dsn)
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Save(ctx, sampleCart()))

		var n int
		require.NoError(t, s.db.QueryRow(`SELECT jsonb_array_length(payload->'items') FROM cart WHERE id = 1`).Scan(&n))
		assert.Equal(t, 3, n)
	})
}
