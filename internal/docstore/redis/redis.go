// Package redis is the shared remote document backend: the aggregate lives
// at a single key and every save is published on a channel, so two household
// clients see each other's edits without a manual refresh.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"bilancio/internal/core"
	"bilancio/internal/docstore"
)

const (
	defaultKey     = "bilancio:document"
	defaultChannel = "bilancio:document:updates"
)

type Client struct {
	rdb     *goredis.Client
	key     string
	channel string
}

func NewClient(ctx context.Context, url string) (*Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Client{
		rdb:     rdb,
		key:     defaultKey,
		channel: defaultChannel,
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Load implements docstore.SnapshotReader.
func (c *Client) Load(ctx context.Context) (core.FinancialData, error) {
	payload, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
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

// Save implements docstore.SnapshotWriter. The payload replaces the stored
// document and is published to all subscribed clients, including this one.
func (c *Client) Save(ctx context.Context, data core.FinancialData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode financial document: %w", err)
	}

	if err := c.rdb.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("write financial document: %w", err)
	}
	if err := c.rdb.Publish(ctx, c.channel, payload).Err(); err != nil {
		// The write landed; subscribers will still converge on the next
		// publish or on their periodic reload.
		slog.WarnContext(ctx, "Failed to publish document update", "error", err)
	}
	return nil
}

// EnsureDefault creates the document with default contents exactly once.
// SETNX makes the first-client race harmless: both clients converge to the
// same default shape.
func (c *Client) EnsureDefault(ctx context.Context) error {
	payload, err := json.Marshal(core.DefaultFinancialData())
	if err != nil {
		return fmt.Errorf("encode default document: %w", err)
	}
	created, err := c.rdb.SetNX(ctx, c.key, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create default document: %w", err)
	}
	if created {
		slog.InfoContext(ctx, "Created default financial document", "key", c.key)
	}
	return nil
}

// Subscribe implements docstore.SnapshotWatcher via redis pub/sub. Messages
// carry the full document payload; malformed payloads are logged and
// dropped, never fatal.
func (c *Client) Subscribe(ctx context.Context, apply func(core.FinancialData)) (docstore.Unsubscribe, error) {
	pubsub := c.rdb.Subscribe(ctx, c.channel)

	// Force the subscription to be established before returning, so a
	// caller's first save after Subscribe is never missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to document updates: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			var doc core.FinancialData
			if err := json.Unmarshal([]byte(msg.Payload), &doc); err != nil {
				slog.Warn("Dropping malformed document update", "error", err)
				continue
			}
			apply(doc)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			pubsub.Close()
			<-done
		})
	}, nil
}
