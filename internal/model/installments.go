package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/record"
)

// SplitInstallments spreads an expense over n monthly installments. Each
// one carries amount/n rounded to cents, a "(i/n)" description suffix and a
// date i months after the original.
func SplitInstallments(e Expense, n int) ([]Expense, error) {
	if n < 2 {
		return nil, fmt.Errorf("installments must be at least 2, got %d", n)
	}
	base, err := time.Parse(record.DateFormat, e.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing expense date %q: %w", e.Date, err)
	}

	share := e.Amount.DivRound(decimal.NewFromInt(int64(n)), 2)
	out := make([]Expense, n)
	for i := range out {
		p := e
		p.ID = ""
		p.Description = fmt.Sprintf("%s (%d/%d)", e.Description, i+1, n)
		p.Amount = share
		p.Date = base.AddDate(0, i, 0).Format(record.DateFormat)
		p.InstallmentCurrent = i + 1
		p.InstallmentTotal = n
		out[i] = p
	}
	return out, nil
}
