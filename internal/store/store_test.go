package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/docstore/memory"
)

func newTestStore(t *testing.T, b *memory.Store) *Store {
	t.Helper()
	seq := 0
	s := New(b,
		WithClock(func() time.Time {
			return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestInitCreatesDefaultDocument(t *testing.T) {
	b := memory.New()
	s := newTestStore(t, b)

	if !s.Ready() {
		t.Fatalf("store should be ready after init")
	}
	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("backend should hold the default document: %v", err)
	}
	if !got.Equal(core.DefaultFinancialData()) {
		t.Fatalf("backend document should be the default one")
	}
}

func TestInitLoadsExistingDocument(t *testing.T) {
	doc := core.DefaultFinancialData()
	doc.Salaries = core.Salaries{User: core.Money{Cents: 100000}}
	s := newTestStore(t, memory.NewWithDocument(doc))

	if got := s.Snapshot(); !got.Equal(doc) {
		t.Fatalf("store should adopt the durable snapshot on load")
	}
}

func TestHouseholdScenario(t *testing.T) {
	// updateSalaries(3000, 2000); addDebt("Rent", 1200); depositSavings(500)
	// -> balance 5000 - 1200 + 500 = 4300.
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	if err := s.UpdateSalaries(ctx, core.Money{Cents: 300000}, core.Money{Cents: 200000}); err != nil {
		t.Fatalf("update salaries: %v", err)
	}
	if got := s.Totals().Salaries.Cents; got != 500000 {
		t.Fatalf("totalSalaries: got %d", got)
	}

	debt, err := s.AddDebt(ctx, "Rent", core.Money{Cents: 120000}, "")
	if err != nil {
		t.Fatalf("add debt: %v", err)
	}
	if debt.IsPaid {
		t.Fatalf("new debt should start unpaid")
	}
	if got := s.Totals().Debts.Cents; got != 120000 {
		t.Fatalf("totalDebts: got %d", got)
	}

	if _, err := s.DepositSavings(ctx, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := s.Totals().Savings.Cents; got != 50000 {
		t.Fatalf("totalSavings: got %d", got)
	}

	if got := s.Totals().Balance.Cents; got != 430000 {
		t.Fatalf("balance: got %d, want 430000", got)
	}
}

func TestSavingsTotalInvariant(t *testing.T) {
	// After any sequence of deposits and withdrawals the total equals
	// max(0, deposits - withdrawals) and never goes negative.
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	steps := []struct {
		typ   core.TransactionType
		cents int64
	}{
		{core.Deposit, 50000},
		{core.Withdrawal, 20000},
		{core.Deposit, 10000},
		{core.Withdrawal, 999900}, // overdraws: clamps to zero
		{core.Deposit, 30000},
		{core.Withdrawal, 5000},
	}

	var running int64
	for i, step := range steps {
		var err error
		if step.typ == core.Deposit {
			_, err = s.DepositSavings(ctx, core.Money{Cents: step.cents})
			running += step.cents
		} else {
			_, err = s.WithdrawSavings(ctx, core.Money{Cents: step.cents})
			running -= step.cents
			if running < 0 {
				running = 0
			}
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		snap := s.Snapshot()
		if snap.Savings.Total.Cents != running {
			t.Fatalf("step %d: total %d, want %d", i, snap.Savings.Total.Cents, running)
		}
		if snap.Savings.Total.Cents < 0 {
			t.Fatalf("step %d: total went negative", i)
		}
		// Balance identity holds after every mutation.
		totals := snap.ComputeTotals()
		want := totals.Salaries.Sub(totals.Debts).Add(totals.Savings)
		if totals.Balance != want {
			t.Fatalf("step %d: balance identity broken", i)
		}
	}
}

func TestWithdrawRecordsRequestedValue(t *testing.T) {
	// The ledger records user intent, not the clamped amount.
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	if _, err := s.DepositSavings(ctx, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	tx, err := s.WithdrawSavings(ctx, core.Money{Cents: 999900})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if tx.Value.Cents != 999900 {
		t.Fatalf("ledger should record the requested value, got %d", tx.Value.Cents)
	}

	snap := s.Snapshot()
	if snap.Savings.Total.Cents != 0 {
		t.Fatalf("total should clamp to zero, got %d", snap.Savings.Total.Cents)
	}
	if n := len(snap.Savings.Transactions); n != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", n)
	}
	if got := s.Totals().Balance.Cents; got != 0 {
		t.Fatalf("balance should reflect the clamped total, got %d", got)
	}
}

func TestAddRemoveDebtRoundTrip(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	if _, err := s.AddDebt(ctx, "Existing", core.Money{Cents: 1000}, ""); err != nil {
		t.Fatalf("seed debt: %v", err)
	}
	before := s.Snapshot()

	debt, err := s.AddDebt(ctx, "Car", core.Money{Cents: 45000}, "Trasporti")
	if err != nil {
		t.Fatalf("add debt: %v", err)
	}
	if err := s.RemoveDebt(ctx, debt.ID); err != nil {
		t.Fatalf("remove debt: %v", err)
	}

	after := s.Snapshot()
	if !after.Equal(before) {
		t.Fatalf("add+remove should restore the exact previous state")
	}
}

func TestRemoveDebtUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	if _, err := s.AddDebt(ctx, "Rent", core.Money{Cents: 1000}, ""); err != nil {
		t.Fatalf("add debt: %v", err)
	}
	before := s.Snapshot()

	if err := s.RemoveDebt(ctx, "nonexistent-id"); err != nil {
		t.Fatalf("remove of unknown id should succeed: %v", err)
	}
	if got := s.Snapshot(); !got.Equal(before) {
		t.Fatalf("removing an unknown id should not change state")
	}
}

func TestToggleDebtPaidInvolution(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	debt, err := s.AddDebt(ctx, "Rent", core.Money{Cents: 1000}, "")
	if err != nil {
		t.Fatalf("add debt: %v", err)
	}

	if err := s.ToggleDebtPaid(ctx, debt.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !s.Snapshot().Debts[0].IsPaid {
		t.Fatalf("first toggle should mark the debt paid")
	}
	// Paid debts still count toward the total.
	if got := s.Totals().Debts.Cents; got != 1000 {
		t.Fatalf("paid debt must still count toward totalDebts, got %d", got)
	}

	if err := s.ToggleDebtPaid(ctx, debt.ID); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if s.Snapshot().Debts[0].IsPaid {
		t.Fatalf("second toggle should restore the original state")
	}

	// Unknown id: no-op.
	before := s.Snapshot()
	if err := s.ToggleDebtPaid(ctx, "nope"); err != nil {
		t.Fatalf("toggle unknown id: %v", err)
	}
	if got := s.Snapshot(); !got.Equal(before) {
		t.Fatalf("toggling an unknown id should not change state")
	}
}

func TestValidationLeavesStateUntouched(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()
	before := s.Snapshot()

	cases := []struct {
		name string
		call func() error
		want error
	}{
		{"empty description", func() error {
			_, err := s.AddDebt(ctx, "", core.Money{Cents: 10000}, "")
			return err
		}, core.ErrEmptyDescription},
		{"zero debt value", func() error {
			_, err := s.AddDebt(ctx, "X", core.Money{}, "")
			return err
		}, core.ErrInvalidAmount},
		{"zero deposit", func() error {
			_, err := s.DepositSavings(ctx, core.Money{})
			return err
		}, core.ErrInvalidAmount},
		{"negative withdrawal", func() error {
			_, err := s.WithdrawSavings(ctx, core.Money{Cents: -100})
			return err
		}, core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if got := s.Snapshot(); !got.Equal(before) {
				t.Fatalf("failed mutation must leave state unchanged")
			}
		})
	}
}

func TestDebtInsertionOrderPreserved(t *testing.T) {
	s := newTestStore(t, memory.New())
	ctx := context.Background()

	for _, desc := range []string{"First", "Second", "Third"} {
		if _, err := s.AddDebt(ctx, desc, core.Money{Cents: 100}, ""); err != nil {
			t.Fatalf("add %s: %v", desc, err)
		}
	}

	snap := s.Snapshot()
	for i, want := range []string{"First", "Second", "Third"} {
		if snap.Debts[i].Description != want {
			t.Fatalf("debt %d: got %q, want %q", i, snap.Debts[i].Description, want)
		}
	}
}

func TestMutationsPersistThroughBackend(t *testing.T) {
	b := memory.New()
	s := newTestStore(t, b)
	ctx := context.Background()

	if _, err := s.AddDebt(ctx, "Rent", core.Money{Cents: 120000}, ""); err != nil {
		t.Fatalf("add debt: %v", err)
	}

	durable, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("backend load: %v", err)
	}
	if !durable.Equal(s.Snapshot()) {
		t.Fatalf("durable copy should match the in-memory snapshot")
	}
}

func TestRemoteUpdatesFunnelThroughSameApplyPath(t *testing.T) {
	b := memory.New()
	s := newTestStore(t, b)
	ctx := context.Background()

	// A second client sharing the same backend document.
	other := New(b)
	if err := other.Init(ctx); err != nil {
		t.Fatalf("init second client: %v", err)
	}
	defer other.Close()

	debt, err := other.AddDebt(ctx, "Shared", core.Money{Cents: 5000}, "")
	if err != nil {
		t.Fatalf("add debt from second client: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Debts) != 1 || snap.Debts[0].ID != debt.ID {
		t.Fatalf("first client should see the pushed remote edit: %+v", snap.Debts)
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	b := memory.New()
	s := newTestStore(t, b)
	ctx := context.Background()

	s.Close()
	before := s.Snapshot()

	remote := core.DefaultFinancialData()
	remote.Salaries.User = core.Money{Cents: 777}
	if err := b.Save(ctx, remote); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := s.Snapshot(); !got.Equal(before) {
		t.Fatalf("closed store must not receive pushed updates")
	}
}

// failingBackend always fails to save; loads succeed or fail as configured.
type failingBackend struct {
	doc     core.FinancialData
	loadErr error
}

func (f *failingBackend) Load(context.Context) (core.FinancialData, error) {
	if f.loadErr != nil {
		return core.FinancialData{}, f.loadErr
	}
	return f.doc.Clone(), nil
}

func (f *failingBackend) Save(context.Context, core.FinancialData) error {
	return errors.New("disk on fire")
}

func TestWriteFailureKeepsOptimisticState(t *testing.T) {
	doc := core.DefaultFinancialData()
	s := New(&failingBackend{doc: doc})
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := s.AddDebt(context.Background(), "Rent", core.Money{Cents: 100}, ""); err != nil {
		t.Fatalf("mutation must not fail on a write error: %v", err)
	}
	if len(s.Snapshot().Debts) != 1 {
		t.Fatalf("optimistic in-memory state should be kept after a failed write")
	}
}

func TestLoadFailureFallsBackToDefault(t *testing.T) {
	s := New(&failingBackend{loadErr: errors.New("corrupt payload")})
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init must not fail on a broken backend: %v", err)
	}
	if !s.Ready() {
		t.Fatalf("store must become ready even when the backend is broken")
	}
	if !s.Snapshot().Equal(core.DefaultFinancialData()) {
		t.Fatalf("store should fall back to the default document")
	}
}

func TestDuplicatePushedSnapshotIsNoop(t *testing.T) {
	b := memory.New()
	s := newTestStore(t, b)
	ctx := context.Background()

	if _, err := s.DepositSavings(ctx, core.Money{Cents: 100}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	snap := s.Snapshot()

	// The backend echoing our own write back must not change anything.
	s.applySnapshot(snap.Clone())
	if got := s.Snapshot(); !got.Equal(snap) {
		t.Fatalf("duplicate snapshot should be a no-op")
	}
}
