package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Schema for the three ledger tables. Rows are created lazily on first
// write; absence of a row reads as the zero value.
const schema = `
CREATE TABLE IF NOT EXISTS balances (
	user_id INTEGER PRIMARY KEY,
	points  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS claims (
	user_id INTEGER PRIMARY KEY,
	claimed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS progress (
	user_id       INTEGER PRIMARY KEY,
	message_count INTEGER NOT NULL DEFAULT 0
);
`

// Client provides access to the embedded sqlite store
type Client struct {
	db *sql.DB
}

// New opens (or creates) the database file and prepares the schema
func New(path string) (*Client, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// A single writer at a time; sqlite serializes conflicting writers itself.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return &Client{db: db}, nil
}

var memCounter atomic.Int64

// NewInMemory opens a private in-memory database, for tests. Each call gets
// its own database so tests cannot observe each other's rows.
func NewInMemory() (*Client, error) {
	n := memCounter.Add(1)
	return New(fmt.Sprintf("file:mem%d?mode=memory&cache=shared", n))
}

// DB exposes the underlying handle for query execution
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database
func (c *Client) Close() error {
	return c.db.Close()
}
