// Package aggregate derives display views from a transaction snapshot.
//
// Every function is pure: input slices are never modified and the current
// time is always passed in by the caller.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
)

// Totals are the unsigned income and expense sums of a period.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Dashboard is the summary header: all-time balance plus the current
// month's income and expense.
type Dashboard struct {
	Balance      decimal.Decimal `json:"balance"`
	MonthIncome  decimal.Decimal `json:"monthIncome"`
	MonthExpense decimal.Decimal `json:"monthExpense"`
}

// Balance sums every transaction, income positive and expense negative.
func Balance(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}
	return total
}

// PeriodTotals sums the transactions dated in the same calendar month and
// year as now.
func PeriodTotals(txs []core.Transaction, now time.Time) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		if !core.SameMonth(tx.Date, now) {
			continue
		}
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}

func ComputeDashboard(txs []core.Transaction, now time.Time) Dashboard {
	month := PeriodTotals(txs, now)
	return Dashboard{
		Balance:      Balance(txs),
		MonthIncome:  month.Income,
		MonthExpense: month.Expense,
	}
}
