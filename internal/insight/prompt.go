// Package insight turns a transaction snapshot into a spending-analysis
// prompt and exchanges it for text through the insight relay.
package insight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "₹"

type categoryGroup struct {
	name  string
	total decimal.Decimal
	items []core.Transaction
}

// BuildPrompt summarizes the expenses in txs by category, in order of first
// appearance, and wraps the summary in the analysis instructions. The same
// input always yields the same prompt.
func BuildPrompt(txs []core.Transaction, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}

	index := make(map[string]int)
	var groups []categoryGroup
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(groups)
			index[tx.Category] = i
			groups = append(groups, categoryGroup{name: tx.Category, total: decimal.Zero})
		}
		groups[i].total = groups[i].total.Add(tx.Amount)
		groups[i].items = append(groups[i].items, tx)
		total = total.Add(tx.Amount)
	}

	var b strings.Builder
	b.WriteString("You are a financial advisor. Analyze the following spending summary:\n\n")
	fmt.Fprintf(&b, "Total Expense: %s\n\n", core.FormatAmount(currency, total))
	b.WriteString("Category Breakdown:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "- %s: %s\n", g.name, core.FormatAmount(currency, g.total))
		for _, tx := range g.items {
			if tx.Description != "" {
				fmt.Fprintf(&b, "  - %s (%s)\n", core.FormatAmount(currency, tx.Amount), tx.Description)
			} else {
				fmt.Fprintf(&b, "  - %s\n", core.FormatAmount(currency, tx.Amount))
			}
		}
	}
	b.WriteString("\nPlease provide a brief, insightful analysis of the spending habits and 1-2 actionable tips to save money. ")
	b.WriteString("Keep it friendly and concise (max 3-4 sentences).\n")
	return b.String()
}
