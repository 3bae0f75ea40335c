package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

type (
	// TransactionType tags a savings ledger entry as a deposit or a withdrawal.
	TransactionType string

	// Salaries holds both household incomes. Values default to zero and are
	// not validated; a negative salary is accepted as entered.
	Salaries struct {
		User   Money `json:"user"`
		Spouse Money `json:"spouse"`
	}

	// Debt is a single household debt. Identity is ID, assigned at creation
	// and immutable. IsPaid is the only field that changes afterwards.
	Debt struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Value       Money     `json:"value"`
		Category    string    `json:"category,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		IsPaid      bool      `json:"isPaid"`
	}

	// SavingsTransaction is an append-only ledger entry. Once recorded it is
	// never mutated or removed.
	SavingsTransaction struct {
		ID        string          `json:"id"`
		Type      TransactionType `json:"type"`
		Value     Money           `json:"value"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	// Savings holds the cached running total and the full transaction ledger.
	// Total must equal the deposits minus withdrawals, clamped at zero.
	Savings struct {
		Total        Money                `json:"total"`
		Transactions []SavingsTransaction `json:"transactions"`
	}

	// FinancialData is the aggregate root and the unit of persistence: one
	// logical document holding the whole household state.
	FinancialData struct {
		Salaries Salaries `json:"salaries"`
		Debts    []Debt   `json:"debts"`
		Savings  Savings  `json:"savings"`
	}
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrEmptyDescription       = errors.New("empty description")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// DefaultFinancialData returns the first-ever document: zero salaries, no
// debts, empty savings ledger. Slices are non-nil so the document always
// serializes with empty arrays rather than nulls.
func DefaultFinancialData() FinancialData {
	return FinancialData{
		Debts: []Debt{},
		Savings: Savings{
			Transactions: []SavingsTransaction{},
		},
	}
}

func (t TransactionType) Validate() error {
	switch t {
	case Deposit, Withdrawal:
		return nil
	default:
		return ErrInvalidTransactionType
	}
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := d.Value.Validate(); err != nil {
		return err
	}
	return nil
}

func (tx SavingsTransaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Value.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the aggregate. Mutations work on copies so a
// snapshot handed out is never edited in place.
func (d FinancialData) Clone() FinancialData {
	out := d
	out.Debts = make([]Debt, len(d.Debts))
	copy(out.Debts, d.Debts)
	out.Savings.Transactions = make([]SavingsTransaction, len(d.Savings.Transactions))
	copy(out.Savings.Transactions, d.Savings.Transactions)
	return out
}

// Equal reports whether two snapshots are structurally identical. The store
// uses it to drop duplicate push notifications.
func (d FinancialData) Equal(other FinancialData) bool {
	if d.Salaries != other.Salaries {
		return false
	}
	if d.Savings.Total != other.Savings.Total {
		return false
	}
	if len(d.Debts) != len(other.Debts) {
		return false
	}
	for i := range d.Debts {
		if !d.Debts[i].equal(other.Debts[i]) {
			return false
		}
	}
	if len(d.Savings.Transactions) != len(other.Savings.Transactions) {
		return false
	}
	for i := range d.Savings.Transactions {
		if !d.Savings.Transactions[i].equal(other.Savings.Transactions[i]) {
			return false
		}
	}
	return true
}

func (d Debt) equal(other Debt) bool {
	return d.ID == other.ID &&
		d.Description == other.Description &&
		d.Value == other.Value &&
		d.Category == other.Category &&
		d.CreatedAt.Equal(other.CreatedAt) &&
		d.IsPaid == other.IsPaid
}

func (tx SavingsTransaction) equal(other SavingsTransaction) bool {
	return tx.ID == other.ID &&
		tx.Type == other.Type &&
		tx.Value == other.Value &&
		tx.CreatedAt.Equal(other.CreatedAt)
}
