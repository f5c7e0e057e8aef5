package aggregate

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
)

// Dimension selects what Breakdown groups expenses by.
type Dimension string

const (
	ByCategory Dimension = "category"
	ByAccount  Dimension = "account"
)

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case ByCategory, ByAccount:
		return Dimension(s), nil
	default:
		return "", fmt.Errorf("unknown breakdown dimension %q", s)
	}
}

// Slice is one entry of a breakdown.
type Slice struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Percent float64         `json:"percent"`
}

// Breakdown sums expenses per dimension value, largest first. Equal sums
// keep the order in which their names first appear. The result is empty
// when there are no expenses or they sum to zero.
func Breakdown(txs []core.Transaction, dim Dimension) []Slice {
	index := make(map[string]int)
	var out []Slice
	total := decimal.Zero

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		name := dimensionValue(tx, dim)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Slice{Name: name, Value: decimal.Zero})
		}
		out[i].Value = out[i].Value.Add(tx.Amount)
		total = total.Add(tx.Amount)
	}

	if total.IsZero() {
		return []Slice{}
	}

	hundred := decimal.NewFromInt(100)
	for i := range out {
		out[i].Percent = out[i].Value.Mul(hundred).Div(total).InexactFloat64()
	}

	slices.SortStableFunc(out, func(a, b Slice) int {
		return b.Value.Cmp(a.Value)
	})
	return out
}

func dimensionValue(tx core.Transaction, dim Dimension) string {
	if dim == ByAccount {
		if tx.AccountID == "" {
			return core.DefaultAccountID
		}
		return tx.AccountID
	}
	return tx.Category
}
