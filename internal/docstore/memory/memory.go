// Package memory is the in-process document backend, used for development
// and as the test double for the durable backends.
package memory

import (
	"context"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/docstore"
)

type Store struct {
	mu     sync.Mutex
	doc    core.FinancialData
	exists bool
	subs   map[int]func(core.FinancialData)
	nextID int
}

func New() *Store {
	return &Store{subs: make(map[int]func(core.FinancialData))}
}

// NewWithDocument returns a store pre-seeded with a document, as if a
// previous client had already saved it.
func NewWithDocument(doc core.FinancialData) *Store {
	s := New()
	s.doc = doc.Clone()
	s.exists = true
	return s
}

func (s *Store) Load(_ context.Context) (core.FinancialData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return core.FinancialData{}, docstore.ErrNotFound
	}
	return s.doc.Clone(), nil
}

func (s *Store) Save(_ context.Context, data core.FinancialData) error {
	s.mu.Lock()
	s.doc = data.Clone()
	s.exists = true
	subs := make([]func(core.FinancialData), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	// Fan out outside the lock; a subscriber may call back into the store.
	for _, fn := range subs {
		fn(snapshot.Clone())
	}
	return nil
}

// Subscribe implements docstore.SnapshotWatcher. Every Save is pushed to all
// subscribers, mimicking a shared remote document.
func (s *Store) Subscribe(_ context.Context, apply func(core.FinancialData)) (docstore.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = apply
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}, nil
}

func (s *Store) Close() error { return nil }
