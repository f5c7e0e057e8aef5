package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
	"moneymanager/internal/insight"
)

func (a *app) symbol() string {
	if a.currency == "" {
		return insight.DefaultCurrency
	}
	return a.currency
}

func (a *app) money(d decimal.Decimal) string { return core.FormatAmount(a.symbol(), d) }

func (a *app) signed(d decimal.Decimal) string { return core.FormatSigned(a.symbol(), d) }

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) printTransactions(txs []core.Transaction) error {
	w := a.table()
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tACCOUNT\tNOTE")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID,
			tx.Date.Format(core.DateLayout),
			a.signed(tx.Signed()),
			categoryLabel(tx),
			tx.AccountID,
			tx.Description)
	}
	return w.Flush()
}

func categoryLabel(tx core.Transaction) string {
	if tx.SubCategory == "" {
		return tx.Category
	}
	return tx.Category + " / " + tx.SubCategory
}

func (a *app) printCategories(cats []core.Category) error {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tICON\tSUB-CATEGORIES")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Icon, strings.Join(c.SubCategories, ", "))
	}
	return w.Flush()
}

func (a *app) printAccounts(accts []core.Account) error {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tOPENING BALANCE")
	for _, acct := range accts {
		balance := "-"
		if acct.Balance != nil {
			balance = a.money(*acct.Balance)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acct.ID, acct.Name, acct.Type, balance)
	}
	return w.Flush()
}
