// Package store holds the in-memory financial state and the mutation surface
// the presentation layer consumes. The store owns the current snapshot; the
// persistence backend owns the durable copy and is authoritative on load.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/backend"
	"bilancio/internal/core"
	"bilancio/internal/docstore"
	"bilancio/internal/log"
)

// Store applies mutations copy-on-write: every operation derives a new
// snapshot from the current one, adopts it in memory, then issues the durable
// write. A failed write is logged and the optimistic in-memory state is kept;
// nothing rolls back, nothing crashes.
type Store struct {
	mu    sync.Mutex
	data  core.FinancialData
	ready bool

	backend backend.Backend
	unsub   docstore.Unsubscribe

	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Store. Clock and id generation are injectable so tests
// get deterministic snapshots.
type Option func(*Store)

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(b backend.Backend, opts ...Option) *Store {
	s := &Store{
		data:    core.DefaultFinancialData(),
		backend: b,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentStore),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the durable snapshot and, when the backend supports push,
// subscribes to remote updates. A missing document is created with default
// contents; document creation is idempotent, so two clients racing on first
// start converge to the same shape. Any other load failure falls back to the
// default document and still marks the store ready: a broken backend must
// never block the caller indefinitely.
func (s *Store) Init(ctx context.Context) error {
	doc, err := s.backend.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, docstore.ErrNotFound):
		doc = core.DefaultFinancialData()
		if saveErr := s.backend.Save(ctx, doc); saveErr != nil {
			s.logger.ErrorContext(ctx, "Failed to create default document",
				log.FieldError, saveErr)
		} else {
			s.logger.InfoContext(ctx, "Created default financial document")
		}
	default:
		s.logger.ErrorContext(ctx, "Failed to load financial document, starting from defaults",
			log.FieldError, err)
		doc = core.DefaultFinancialData()
	}

	s.applySnapshot(doc)

	if watcher, ok := s.backend.(docstore.SnapshotWatcher); ok {
		unsub, err := watcher.Subscribe(ctx, s.applySnapshot)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to subscribe to document updates, live sync disabled",
				log.FieldError, err)
		} else {
			s.unsub = unsub
		}
	}

	return nil
}

// Close releases the remote subscription, if any.
func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Ready reports whether the initial load (or the first pushed snapshot) has
// completed. The transition is one-way.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Snapshot returns a deep copy of the current aggregate.
func (s *Store) Snapshot() core.FinancialData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Totals recomputes the derived values from the current snapshot. They are
// never stored.
func (s *Store) Totals() core.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ComputeTotals()
}

// applySnapshot installs an authoritative snapshot. Both the initial load and
// every pushed remote update funnel through here, so the two paths cannot
// diverge. Identical snapshots are dropped: the backend echoes our own writes
// back and the initial load may race the first push.
func (s *Store) applySnapshot(doc core.FinancialData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready && s.data.Equal(doc) {
		return
	}
	s.data = doc.Clone()
	s.ready = true
}

// UpdateSalaries replaces both salary fields unconditionally. No validation:
// negative inputs are accepted as entered.
func (s *Store) UpdateSalaries(ctx context.Context, user, spouse core.Money) error {
	s.mu.Lock()
	next := s.data.Clone()
	next.Salaries = core.Salaries{User: user, Spouse: spouse}
	s.data = next
	s.mu.Unlock()

	s.persist(ctx, next, log.OpUpdateSalaries)
	return nil
}

// AddDebt appends a new debt with a fresh id. Validation failures leave the
// snapshot untouched.
func (s *Store) AddDebt(ctx context.Context, description string, value core.Money, category string) (core.Debt, error) {
	debt := core.Debt{
		ID:          s.newID(),
		Description: description,
		Value:       value,
		Category:    category,
		CreatedAt:   s.now(),
	}
	if err := debt.Validate(); err != nil {
		return core.Debt{}, err
	}

	s.mu.Lock()
	next := s.data.Clone()
	next.Debts = append(next.Debts, debt)
	s.data = next
	s.mu.Unlock()

	s.persist(ctx, next, log.OpAddDebt)
	return debt, nil
}

// RemoveDebt deletes the debt with the given id. Removing an unknown id is a
// no-op, not an error: deletion is idempotent.
func (s *Store) RemoveDebt(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	next := s.data.Clone()
	debts := next.Debts[:0]
	for _, d := range next.Debts {
		if d.ID == id {
			found = true
			continue
		}
		debts = append(debts, d)
	}
	next.Debts = debts
	if found {
		s.data = next
	}
	s.mu.Unlock()

	if found {
		s.persist(ctx, next, log.OpRemoveDebt)
	}
	return nil
}

// ToggleDebtPaid flips the paid flag on the matching debt; applied twice it
// restores the original state. Unknown ids are a no-op.
func (s *Store) ToggleDebtPaid(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	next := s.data.Clone()
	for i := range next.Debts {
		if next.Debts[i].ID == id {
			next.Debts[i].IsPaid = !next.Debts[i].IsPaid
			found = true
			break
		}
	}
	if found {
		s.data = next
	}
	s.mu.Unlock()

	if found {
		s.persist(ctx, next, log.OpToggleDebtPaid)
	}
	return nil
}

// DepositSavings appends a deposit to the ledger and raises the total by
// exactly the deposited value.
func (s *Store) DepositSavings(ctx context.Context, value core.Money) (core.SavingsTransaction, error) {
	tx := core.SavingsTransaction{
		ID:        s.newID(),
		Type:      core.Deposit,
		Value:     value,
		CreatedAt: s.now(),
	}
	if err := tx.Validate(); err != nil {
		return core.SavingsTransaction{}, err
	}

	s.mu.Lock()
	next := s.data.Clone()
	next.Savings.Transactions = append(next.Savings.Transactions, tx)
	next.Savings.Total = next.Savings.Total.Add(value)
	s.data = next
	s.mu.Unlock()

	s.persist(ctx, next, log.OpDepositSavings)
	return tx, nil
}

// WithdrawSavings appends a withdrawal recording the requested value while
// the total is clamped at zero. The ledger may therefore show a withdrawal
// larger than what actually left the total.
func (s *Store) WithdrawSavings(ctx context.Context, value core.Money) (core.SavingsTransaction, error) {
	tx := core.SavingsTransaction{
		ID:        s.newID(),
		Type:      core.Withdrawal,
		Value:     value,
		CreatedAt: s.now(),
	}
	if err := tx.Validate(); err != nil {
		return core.SavingsTransaction{}, err
	}

	s.mu.Lock()
	next := s.data.Clone()
	next.Savings.Transactions = append(next.Savings.Transactions, tx)
	if total := next.Savings.Total.Sub(value); total.Cents > 0 {
		next.Savings.Total = total
	} else {
		next.Savings.Total = core.Money{}
	}
	s.data = next
	s.mu.Unlock()

	s.persist(ctx, next, log.OpWithdrawSavings)
	return tx, nil
}

// persist issues the durable write for an already-adopted snapshot. A failed
// write keeps the optimistic in-memory state: the failure is a consistency
// gap, not a crash.
func (s *Store) persist(ctx context.Context, next core.FinancialData, operation string) {
	if err := s.backend.Save(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist financial document, keeping local state",
			log.FieldOperation, operation,
			log.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Financial document persisted",
		log.FieldOperation, operation)
}
