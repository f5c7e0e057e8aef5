package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moneymanager/internal/aggregate"
	"moneymanager/internal/amqp"
	"moneymanager/internal/cli"
	"moneymanager/internal/insight"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show balance and this month's income and expense",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := a.wallet.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			a.printDashboard(a.wallet.ComputeDashboard(txs))
			return nil
		},
	}
}

func (a *app) printDashboard(d aggregate.Dashboard) {
	fmt.Fprintf(a.out, "Balance:        %s\n", a.money(d.Balance))
	fmt.Fprintf(a.out, "Month income:   %s\n", a.money(d.MonthIncome))
	fmt.Fprintf(a.out, "Month expense:  %s\n", a.money(d.MonthExpense))
}

func newGroupCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Show transactions grouped by day or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := aggregate.ParseMode(mode)
			if err != nil {
				return err
			}
			txs, err := a.wallet.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			buckets := a.wallet.GroupTransactions(txs, m)
			if len(buckets) == 0 {
				fmt.Fprintln(a.out, "No transactions yet.")
				return nil
			}
			for _, b := range buckets {
				if m == aggregate.ModeMonth {
					fmt.Fprintf(a.out, "== %s  %s\n", b.Label, a.signed(b.Subtotal))
					for _, day := range b.Days {
						if err := a.printDay(day, "  "); err != nil {
							return err
						}
					}
					continue
				}
				if err := a.printDay(b, ""); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(aggregate.ModeDay), "day or month")
	return cmd
}

func (a *app) printDay(b aggregate.Bucket, indent string) error {
	fmt.Fprintf(a.out, "%s%s  %s\n", indent, a.wallet.DayLabel(b.Key), a.signed(b.Subtotal))
	w := a.table()
	for _, tx := range b.Transactions {
		fmt.Fprintf(w, "%s  %s\t%s\t%s\n", indent, a.signed(tx.Signed()), categoryLabel(tx), tx.Description)
	}
	return w.Flush()
}

func newBreakdownCmd(a *app) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show expense shares by category or account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dim, err := aggregate.ParseDimension(by)
			if err != nil {
				return err
			}
			txs, err := a.wallet.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			shares := a.wallet.ComputeBreakdown(txs, dim)
			if len(shares) == 0 {
				fmt.Fprintln(a.out, "No expenses yet.")
				return nil
			}
			w := a.table()
			for _, s := range shares {
				bar := strings.Repeat("#", int(s.Percent/5+0.5))
				fmt.Fprintf(w, "%s\t%s\t%5.1f%%\t%s\n", s.Name, a.money(s.Value), s.Percent, bar)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&by, "by", "b", string(aggregate.ByCategory), "category or account")
	return cmd
}

func newInsightCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insight",
		Short: "Ask the insight relay for a short analysis of your spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := a.wallet.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			text, err := a.wallet.RequestInsight(cmd.Context(), txs)
			if err != nil {
				return errors.New(insight.Message(err))
			}
			fmt.Fprintln(a.out, text)
			return nil
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all data; default categories and accounts come back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to erase data without --yes")
			}
			if err := a.wallet.ResetAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "All data erased.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm erasing all data")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the dashboard again whenever another process changes the data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.session == nil || a.session.Feed == nil {
				return errors.New("change feed is not available: set AMQP_URL")
			}
			ctx, stop := cli.GracefulShutdown(cmd.Context(), a.logger)
			defer stop()

			refresh := func() error {
				txs, err := a.wallet.ListTransactions(ctx)
				if err != nil {
					return err
				}
				a.printDashboard(a.wallet.ComputeDashboard(txs))
				return nil
			}
			if err := refresh(); err != nil {
				return err
			}

			err := a.session.Feed.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
				a.session.Store.Invalidate(msg.Key)
				fmt.Fprintf(a.out, "\n%s changed at %s\n", msg.Key, msg.Timestamp.Local().Format("15:04:05"))
				return refresh()
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
