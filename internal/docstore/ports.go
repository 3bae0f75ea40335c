// Package docstore defines the ports a financial document backend must
// implement. The whole aggregate is the unit of persistence: backends load
// and save full snapshots, never deltas.
package docstore

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

// ErrNotFound is returned by Load when no document has ever been saved.
var ErrNotFound = errors.New("financial document not found")

// Unsubscribe releases a snapshot subscription.
type Unsubscribe func()

// SnapshotReader fetches the current durable snapshot.
type SnapshotReader interface {
	Load(ctx context.Context) (core.FinancialData, error)
}

// SnapshotWriter persists a full snapshot, replacing whatever was stored.
type SnapshotWriter interface {
	Save(ctx context.Context, data core.FinancialData) error
}

// SnapshotWatcher is an optional backend capability: apply is invoked for
// every durable change, including this client's own writes. Backends without
// push support simply do not implement it.
type SnapshotWatcher interface {
	Subscribe(ctx context.Context, apply func(core.FinancialData)) (Unsubscribe, error)
}
