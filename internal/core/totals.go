package core

// Totals are the derived values computed from a snapshot on every access.
// They are never persisted.
type Totals struct {
	Salaries Money `json:"totalSalaries"`
	Debts    Money `json:"totalDebts"`
	Savings  Money `json:"totalSavings"`
	Balance  Money `json:"balance"`
}

// ComputeTotals derives the household totals from the aggregate.
// Debts count toward the total whether paid or not.
func (d FinancialData) ComputeTotals() Totals {
	t := Totals{
		Salaries: d.Salaries.User.Add(d.Salaries.Spouse),
		Savings:  d.Savings.Total,
	}
	for _, debt := range d.Debts {
		t.Debts = t.Debts.Add(debt.Value)
	}
	t.Balance = t.Salaries.Sub(t.Debts).Add(t.Savings)
	return t
}
