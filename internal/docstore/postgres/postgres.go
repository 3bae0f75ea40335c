// Package postgres is the second shared remote document backend. The
// aggregate is one jsonb row; saves fire pg_notify and subscribed clients
// re-load the document on each notification. The notification itself carries
// no payload, so ordering stays with the table, not the queue.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bilancio/internal/core"
	"bilancio/internal/docstore"
)

const (
	documentID    = 1
	notifyChannel = "bilancio_document"
)

type Client struct {
	pool *pgxpool.Pool
}

func NewClient(ctx context.Context, url string) (*Client, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	c := &Client{pool: pool}
	if err := c.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS financial_document (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create financial_document table: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Load implements docstore.SnapshotReader.
func (c *Client) Load(ctx context.Context) (core.FinancialData, error) {
	var doc core.FinancialData
	err := c.pool.QueryRow(ctx,
		`SELECT payload FROM financial_document WHERE id = $1`, documentID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.FinancialData{}, docstore.ErrNotFound
	}
	if err != nil {
		return core.FinancialData{}, fmt.Errorf("read financial document: %w", err)
	}
	return doc, nil
}

// Save implements docstore.SnapshotWriter: whole-document upsert, last write
// wins, then a notification so every listening client re-loads.
func (c *Client) Save(ctx context.Context, data core.FinancialData) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO financial_document (id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		documentID, data)
	if err != nil {
		return fmt.Errorf("write financial document: %w", err)
	}

	if _, err := c.pool.Exec(ctx, `SELECT pg_notify($1, '')`, notifyChannel); err != nil {
		// The write landed; listeners catch up on the next notification.
		slog.WarnContext(ctx, "Failed to notify document update", "error", err)
	}
	return nil
}

// EnsureDefault creates the document with default contents exactly once.
// ON CONFLICT DO NOTHING makes the first-client race harmless.
func (c *Client) EnsureDefault(ctx context.Context) error {
	tag, err := c.pool.Exec(ctx, `
		INSERT INTO financial_document (id, payload)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		documentID, core.DefaultFinancialData())
	if err != nil {
		return fmt.Errorf("create default document: %w", err)
	}
	if tag.RowsAffected() > 0 {
		slog.InfoContext(ctx, "Created default financial document")
	}
	return nil
}

// Subscribe implements docstore.SnapshotWatcher. A dedicated connection sits
// in LISTEN and re-loads the document for every notification.
func (c *Client) Subscribe(ctx context.Context, apply func(core.FinancialData)) (docstore.Unsubscribe, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen on %s: %w", notifyChannel, err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Release()
		for {
			if _, err := conn.Conn().WaitForNotification(listenCtx); err != nil {
				if listenCtx.Err() == nil {
					slog.Warn("Document listener stopped", "error", err)
				}
				return
			}
			doc, err := c.Load(listenCtx)
			if err != nil {
				slog.Warn("Failed to re-load document after notification", "error", err)
				continue
			}
			apply(doc)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}
