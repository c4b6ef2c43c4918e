package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fjod/storefront/internal/domain"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore keeps the cart in a single-row table. The row is written with one
// upsert statement, so it is replaced as a whole or not at all.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQLite opens (or creates) the database file and applies migrations.
func OpenSQLite(dbPath string) (*SQLStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection avoids SQLITE_BUSY between our own writers
	db.SetMaxOpenConns(1)

	return newSQLStore(db, dialectSQLite)
}

// OpenPostgres connects using dsn and applies migrations.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return newSQLStore(db, dialectPostgres)
}

func newSQLStore(db *sql.DB, dialect string) (*SQLStore, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Load(ctx context.Context) (*domain.Cart, error) {
	query := `SELECT payload FROM cart WHERE id = 1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, unavailable("query cart", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		return nil, unavailable("decode cart", err)
	}
	return normalize(&cart), nil
}

func (s *SQLStore) Save(ctx context.Context, cart *domain.Cart) error {
	cart = normalize(cart.Clone())
	payload, err := json.Marshal(cart)
	if err != nil {
		return unavailable("encode cart", err)
	}

	query := `
		INSERT INTO cart (id, payload, total_items, total_cost, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			total_items = excluded.total_items,
			total_cost = excluded.total_cost,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, string(payload), cart.TotalItems, cart.TotalCost, time.Now().UTC())
	if err != nil {
		return unavailable("upsert cart", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
