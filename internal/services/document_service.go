package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// DocumentService orchestrates document persistence across SQLite and AMQP:
// every save lands locally first, then a sync message tells the mirror
// worker to push the document to the remote store.
type DocumentService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewDocumentService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *DocumentService {
	return &DocumentService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Load implements docstore.SnapshotReader, passing through to SQLite.
func (s *DocumentService) Load(ctx context.Context) (core.FinancialData, error) {
	return s.storage.Load(ctx)
}

// Save persists the document locally and publishes a sync message
func (s *DocumentService) Save(ctx context.Context, data core.FinancialData) error {
	// Save to SQLite first (fast, reliable)
	if err := s.storage.Save(ctx, data); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	// Publish async sync message (non-blocking)
	if err := s.publishSyncMessage(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "error", err)
		// Don't fail the request - document is saved locally
	}

	return nil
}

func (s *DocumentService) publishSyncMessage(ctx context.Context) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishDocumentSync(ctx, "save")
}

// Close closes both storage and AMQP connections
func (s *DocumentService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close document service: %v", errs)
	}

	return nil
}
