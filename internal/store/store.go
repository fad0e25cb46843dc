// Package store persists the OAuth2 token set and the ledger of appended
// orders in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"sheetsync/internal/auth"
)

// tokenKey is the fixed key the single token set is stored under.
const tokenKey = "googleapi"

const schema = `
CREATE TABLE IF NOT EXISTS api_tokens (
    name TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS appended_orders (
    id TEXT PRIMARY KEY,
    row_count INTEGER NOT NULL,
    appended_at INTEGER NOT NULL
);
`

// Store is the SQLite-backed system of record. It implements the
// auth.TokenStore port.
type Store struct {
	db *sql.DB
}

var _ auth.TokenStore = (*Store)(nil)

// Open opens (creating if necessary) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the persisted token set, or auth.ErrMissingCredentials if
// the authorization flow has not been completed yet.
func (s *Store) Token(ctx context.Context) (*oauth2.Token, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT token FROM api_tokens WHERE name = ?", tokenKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, auth.ErrMissingCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	return &token, nil
}

// SaveToken persists the token set, replacing any previous one.
func (s *Store) SaveToken(ctx context.Context, token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO api_tokens (name, token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		tokenKey, string(raw), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	return nil
}

// Appended reports whether the order with the given id has already been
// appended to the spreadsheet.
func (s *Store) Appended(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appended_orders WHERE id = ?", id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking ledger: %w", err)
	}

	return n > 0, nil
}

// MarkAppended records that the order's rows have been appended.
func (s *Store) MarkAppended(ctx context.Context, id string, rows int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO appended_orders (id, row_count, appended_at) VALUES (?, ?, ?)",
		id, rows, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording appended order: %w", err)
	}

	return nil
}
