package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/ratechat-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchange_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_exchange_log_created ON exchange_log(created_at DESC);
`

// SQLiteStore implements store.ExchangeLog for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; :memory: also needs it to keep one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendExchange inserts one lookup result.
func (s *SQLiteStore) AppendExchange(ctx context.Context, body string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO exchange_log (body) VALUES (?)`, body); err != nil {
		return fmt.Errorf("insert exchange log: %w", err)
	}
	return nil
}

// RecentExchanges returns up to limit records, newest first.
func (s *SQLiteStore) RecentExchanges(ctx context.Context, limit int) ([]store.ExchangeRecord, error) {
	query := `
		SELECT id, body, created_at
		FROM exchange_log
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchange log: %w", err)
	}
	defer rows.Close()

	var records []store.ExchangeRecord
	for rows.Next() {
		var rec store.ExchangeRecord
		if err := rows.Scan(&rec.ID, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange log: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchange log: %w", err)
	}
	return records, nil
}
