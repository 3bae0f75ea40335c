// Package worker mirrors the locally persisted financial document to a
// shared remote store, so a household member on another machine sees edits
// made against the local backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/docstore"
)

// MirrorWorker re-loads the document from local storage on every sync signal
// and ships the full snapshot to the remote store. Re-loading instead of
// shipping payloads in messages means delayed or coalesced messages still
// mirror the latest state.
type MirrorWorker struct {
	local  docstore.SnapshotReader
	remote docstore.SnapshotWriter
}

func NewMirrorWorker(local docstore.SnapshotReader, remote docstore.SnapshotWriter) *MirrorWorker {
	return &MirrorWorker{
		local:  local,
		remote: remote,
	}
}

// HandleSyncMessage processes a single document sync message from AMQP
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.DocumentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"operation", msg.Operation,
		"queued_at", msg.Timestamp)

	return w.Mirror(ctx)
}

// Mirror copies the current local document to the remote store. A local
// document that does not exist yet is nothing to mirror, not an error.
func (w *MirrorWorker) Mirror(ctx context.Context) error {
	doc, err := w.local.Load(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		slog.DebugContext(ctx, "No local document yet, skipping mirror")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load local document: %w", err)
	}

	if err := w.remote.Save(ctx, doc); err != nil {
		return fmt.Errorf("mirror document to remote: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored document to remote store")
	return nil
}

// StartupSyncCheck mirrors once at startup to cover messages missed while
// the worker was down.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Performing startup sync check")
	return w.Mirror(ctx)
}

// RunPeriodic mirrors on a fixed interval as a safety net for lost messages.
// It returns when the context is canceled.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Mirror(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic mirror failed", "error", err)
			}
		}
	}
}
