// Package storage is the single-process durable backend: the financial
// document is kept as one JSON payload in a SQLite table, written through on
// every mutation and read once at startup.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bilancio/internal/core"
	"bilancio/internal/docstore"

	_ "modernc.org/sqlite"
)

// The document is a singleton row; documentID pins it.
const documentID = 1

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements docstore.SnapshotReader.
func (r *SQLiteRepository) Load(ctx context.Context) (core.FinancialData, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM financial_document WHERE id = ?`, documentID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialData{}, docstore.ErrNotFound
	}
	if err != nil {
		return core.FinancialData{}, fmt.Errorf("read financial document: %w", err)
	}

	var doc core.FinancialData
	if err := json.Unmarshal(payload, &doc); err != nil {
		return core.FinancialData{}, fmt.Errorf("decode financial document: %w", err)
	}
	return doc, nil
}

// Save implements docstore.SnapshotWriter. The whole aggregate replaces the
// stored row; last write wins.
func (r *SQLiteRepository) Save(ctx context.Context, data core.FinancialData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode financial document: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO financial_document (id, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		documentID, string(payload))
	if err != nil {
		return fmt.Errorf("write financial document: %w", err)
	}

	slog.DebugContext(ctx, "Financial document saved to SQLite",
		"payload_bytes", len(payload))
	return nil
}
