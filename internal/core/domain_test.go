package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDebtValidate(t *testing.T) {
	good := Debt{
		ID:          "d1",
		Description: "Rent",
		Value:       Money{Cents: 120000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Debt{
		{ID: "d2", Description: "", Value: Money{Cents: 100}},
		{ID: "d3", Description: "   ", Value: Money{Cents: 100}},
		{ID: "d4", Description: "X", Value: Money{Cents: 0}},
		{ID: "d5", Description: "X", Value: Money{Cents: -100}},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSavingsTransactionValidate(t *testing.T) {
	cases := []struct {
		tx SavingsTransaction
		ok bool
	}{
		{SavingsTransaction{ID: "t1", Type: Deposit, Value: Money{Cents: 1}}, true},
		{SavingsTransaction{ID: "t2", Type: Withdrawal, Value: Money{Cents: 500}}, true},
		{SavingsTransaction{ID: "t3", Type: "transfer", Value: Money{Cents: 500}}, false},
		{SavingsTransaction{ID: "t4", Type: Deposit, Value: Money{Cents: 0}}, false},
	}
	for i, tc := range cases {
		err := tc.tx.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDefaultFinancialData(t *testing.T) {
	d := DefaultFinancialData()
	if d.Salaries.User.Cents != 0 || d.Salaries.Spouse.Cents != 0 {
		t.Fatalf("default salaries should be zero")
	}
	if d.Debts == nil || len(d.Debts) != 0 {
		t.Fatalf("default debts should be empty, non-nil")
	}
	if d.Savings.Transactions == nil || len(d.Savings.Transactions) != 0 {
		t.Fatalf("default transactions should be empty, non-nil")
	}

	// The default document must serialize with empty arrays, not nulls.
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal default: %v", err)
	}
	want := `{"salaries":{"user":0,"spouse":0},"debts":[],"savings":{"total":0,"transactions":[]}}`
	if string(raw) != want {
		t.Fatalf("default document mismatch:\n got %s\nwant %s", raw, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := DefaultFinancialData()
	orig.Debts = append(orig.Debts, Debt{ID: "a", Description: "Rent", Value: Money{Cents: 100}})
	orig.Savings.Transactions = append(orig.Savings.Transactions,
		SavingsTransaction{ID: "t", Type: Deposit, Value: Money{Cents: 100}})

	clone := orig.Clone()
	clone.Debts[0].IsPaid = true
	clone.Savings.Transactions[0].Value = Money{Cents: 999}

	if orig.Debts[0].IsPaid {
		t.Fatalf("mutating clone changed original debt")
	}
	if orig.Savings.Transactions[0].Value.Cents != 100 {
		t.Fatalf("mutating clone changed original transaction")
	}
}

func TestEqual(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	base := FinancialData{
		Salaries: Salaries{User: Money{Cents: 300000}, Spouse: Money{Cents: 200000}},
		Debts: []Debt{
			{ID: "d", Description: "Rent", Value: Money{Cents: 120000}, CreatedAt: now},
		},
		Savings: Savings{
			Total: Money{Cents: 50000},
			Transactions: []SavingsTransaction{
				{ID: "t", Type: Deposit, Value: Money{Cents: 50000}, CreatedAt: now},
			},
		},
	}

	if !base.Equal(base.Clone()) {
		t.Fatalf("snapshot should equal its clone")
	}

	changed := base.Clone()
	changed.Debts[0].IsPaid = true
	if base.Equal(changed) {
		t.Fatalf("isPaid flip should break equality")
	}

	changed = base.Clone()
	changed.Salaries.User = Money{Cents: 1}
	if base.Equal(changed) {
		t.Fatalf("salary change should break equality")
	}

	// Same instant in a different location still compares equal.
	shifted := base.Clone()
	shifted.Debts[0].CreatedAt = now.In(time.FixedZone("CET", 3600))
	if !base.Equal(shifted) {
		t.Fatalf("equal instants in different zones should compare equal")
	}
}

func TestFinancialDataJSONRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := FinancialData{
		Salaries: Salaries{User: Money{Cents: 300000}, Spouse: Money{Cents: 200000}},
		Debts: []Debt{
			{ID: "d1", Description: "Rent", Value: Money{Cents: 120000}, Category: "Casa", CreatedAt: now},
			{ID: "d2", Description: "Car", Value: Money{Cents: 45050}, CreatedAt: now, IsPaid: true},
		},
		Savings: Savings{
			Total: Money{Cents: 50000},
			Transactions: []SavingsTransaction{
				{ID: "t1", Type: Deposit, Value: Money{Cents: 50000}, CreatedAt: now},
			},
		},
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out FinancialData
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !in.Equal(out) {
		t.Fatalf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}
