package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=giftwell sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// The credit path holds row locks; keep the pool small enough that a
	// burst of approvals queues instead of exhausting server connections.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// EnsureSchema creates the gifts and contributions tables if they do not
// exist yet. Amounts are stored as NUMERIC and scanned through strings so
// no float ever touches a balance.
func (db *DB) EnsureSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS gifts (
			id               UUID PRIMARY KEY,
			name             TEXT NOT NULL,
			price            NUMERIC(12,2) NOT NULL DEFAULT 0,
			target_amount    NUMERIC(12,2) NOT NULL DEFAULT 0,
			collected_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			is_crowdfund     BOOLEAN NOT NULL DEFAULT FALSE,
			status           TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contributions (
			id                   UUID PRIMARY KEY,
			gift_id              UUID NOT NULL REFERENCES gifts(id),
			donor_name           TEXT NOT NULL,
			donor_email          TEXT,
			message              TEXT,
			amount               NUMERIC(12,2) NOT NULL,
			method               TEXT NOT NULL,
			country              TEXT NOT NULL,
			client_tx_id         TEXT NOT NULL UNIQUE,
			provider_tx_id       TEXT,
			receipt_reference    TEXT,
			receipt_amount       NUMERIC(12,2),
			receipt_currency     TEXT,
			receipt_bank         TEXT,
			receipt_account_tail TEXT,
			receipt_issued_at    TIMESTAMPTZ,
			review_reason        TEXT,
			state                TEXT NOT NULL,
			receipt_url          TEXT,
			created_at           TIMESTAMPTZ NOT NULL,
			validated_at         TIMESTAMPTZ,
			approved_at          TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contributions_gift_id ON contributions (gift_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contributions_state ON contributions (state, created_at)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
