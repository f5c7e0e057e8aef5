package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"moneymanager/internal/core"
)

type txFlags struct {
	amount      string
	txType      string
	category    string
	subCategory string
	date        string
	note        string
	account     string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, dot or comma decimal separator")
	cmd.Flags().StringVarP(&f.txType, "type", "t", string(core.Expense), "income or expense")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category name")
	cmd.Flags().StringVarP(&f.subCategory, "sub", "s", "", "Sub-category name")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "Description")
	cmd.Flags().StringVar(&f.account, "account", "", "Account id (default Cash)")
}

// apply copies every flag the user set onto tx.
func (f *txFlags) apply(cmd *cobra.Command, tx *core.Transaction, now time.Time) error {
	changed := cmd.Flags().Changed
	if changed("amount") {
		amount, err := core.ParseAmount(f.amount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", f.amount, err)
		}
		tx.Amount = amount
	}
	if changed("type") || tx.Type == "" {
		tx.Type = core.TransactionType(f.txType)
	}
	if changed("category") {
		tx.Category = f.category
	}
	if changed("sub") {
		tx.SubCategory = f.subCategory
	}
	if changed("note") {
		tx.Description = f.note
	}
	if changed("account") {
		tx.AccountID = f.account
	}
	switch {
	case changed("date"):
		d, err := core.ParseDate(f.date, now.Location())
		if err != nil {
			return fmt.Errorf("date %q: %w", f.date, err)
		}
		tx.Date = d
	case tx.Date.IsZero():
		tx.Date = core.StartOfDay(now)
	}
	return nil
}

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Record and edit transactions",
	}
	cmd.AddCommand(newTxAddCmd(a), newTxEditCmd(a), newTxDeleteCmd(a), newTxListCmd(a))
	return cmd
}

func newTxAddCmd(a *app) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("amount") {
				return fmt.Errorf("--amount is required")
			}
			var tx core.Transaction
			if err := f.apply(cmd, &tx, a.wallet.Now()); err != nil {
				return err
			}
			saved, err := a.wallet.UpsertTransaction(cmd.Context(), tx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s %s (%s)\n", saved.Type, a.money(saved.Amount), saved.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTxEditCmd(a *app) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := a.wallet.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			i := slices.IndexFunc(txs, func(tx core.Transaction) bool { return tx.ID == args[0] })
			if i < 0 {
				return fmt.Errorf("transaction %s not found", args[0])
			}
			tx := txs[i]
			if err := f.apply(cmd, &tx, a.wallet.Now()); err != nil {
				return err
			}
			if _, err := a.wallet.UpsertTransaction(cmd.Context(), tx); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s\n", tx.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTxDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wallet.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newTxListCmd(a *app) *cobra.Command {
	var txType string
	var limit int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest recorded first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := a.wallet.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			if txType != "" {
				txs = slices.DeleteFunc(txs, func(tx core.Transaction) bool { return string(tx.Type) != txType })
			}
			if limit > 0 && len(txs) > limit {
				txs = txs[:limit]
			}
			if len(txs) == 0 {
				fmt.Fprintln(a.out, "No transactions yet.")
				return nil
			}
			return a.printTransactions(txs)
		},
	}
	cmd.Flags().StringVarP(&txType, "type", "t", "", "Only income or expense")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Show at most this many")
	return cmd
}
