package core

import "testing"

func TestComputeTotals(t *testing.T) {
	d := FinancialData{
		Salaries: Salaries{User: Money{Cents: 300000}, Spouse: Money{Cents: 200000}},
		Debts: []Debt{
			{ID: "d1", Description: "Rent", Value: Money{Cents: 120000}},
		},
		Savings: Savings{Total: Money{Cents: 50000}},
	}

	got := d.ComputeTotals()
	if got.Salaries.Cents != 500000 {
		t.Fatalf("totalSalaries: got %d", got.Salaries.Cents)
	}
	if got.Debts.Cents != 120000 {
		t.Fatalf("totalDebts: got %d", got.Debts.Cents)
	}
	if got.Savings.Cents != 50000 {
		t.Fatalf("totalSavings: got %d", got.Savings.Cents)
	}
	// 5000 - 1200 + 500 = 4300
	if got.Balance.Cents != 430000 {
		t.Fatalf("balance: got %d", got.Balance.Cents)
	}
}

func TestComputeTotalsIncludesPaidDebts(t *testing.T) {
	d := DefaultFinancialData()
	d.Debts = []Debt{
		{ID: "a", Description: "Rent", Value: Money{Cents: 100000}},
		{ID: "b", Description: "Car", Value: Money{Cents: 50000}, IsPaid: true},
	}

	got := d.ComputeTotals()
	if got.Debts.Cents != 150000 {
		t.Fatalf("paid debts must still count toward the total: got %d", got.Debts.Cents)
	}
	if got.Balance.Cents != -150000 {
		t.Fatalf("balance: got %d", got.Balance.Cents)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := DefaultFinancialData().ComputeTotals()
	if got != (Totals{}) {
		t.Fatalf("empty document should derive all-zero totals: %+v", got)
	}
}

func TestComputeTotalsNegativeSalary(t *testing.T) {
	// Negative salaries are accepted as entered; the balance just follows.
	d := DefaultFinancialData()
	d.Salaries = Salaries{User: Money{Cents: -100000}, Spouse: Money{Cents: 50000}}

	got := d.ComputeTotals()
	if got.Salaries.Cents != -50000 {
		t.Fatalf("totalSalaries: got %d", got.Salaries.Cents)
	}
	if got.Balance.Cents != -50000 {
		t.Fatalf("balance: got %d", got.Balance.Cents)
	}
}
