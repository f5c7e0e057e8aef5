package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moneymanager/internal/core"
	"moneymanager/internal/repository"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"acct"},
		Short:   "Manage accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accts, err := a.wallet.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			return a.printAccounts(accts)
		},
	}

	var addType, addBalance string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct := core.Account{Name: args[0], Type: core.AccountType(addType)}
			if cmd.Flags().Changed("balance") {
				b, err := core.ParseAmount(addBalance)
				if err != nil {
					return fmt.Errorf("balance %q: %w", addBalance, err)
				}
				acct.Balance = &b
			}
			created, err := a.wallet.AddAccount(cmd.Context(), acct)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added account %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&addType, "type", "t", string(core.BankAccount), "cash, bank, card or other")
	add.Flags().StringVar(&addBalance, "balance", "", "Opening balance")

	var name, acctType, balance string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an account's name, type or opening balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch repository.AccountPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("type") {
				t := core.AccountType(acctType)
				patch.Type = &t
			}
			if cmd.Flags().Changed("balance") {
				b, err := core.ParseAmount(balance)
				if err != nil {
					return fmt.Errorf("balance %q: %w", balance, err)
				}
				patch.Balance = &b
			}
			found, err := a.wallet.UpdateAccount(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("account %s not found", args[0])
			}
			fmt.Fprintf(a.out, "Updated account %s\n", args[0])
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "New name")
	update.Flags().StringVarP(&acctType, "type", "t", "", "cash, bank, card or other")
	update.Flags().StringVar(&balance, "balance", "", "Opening balance")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an account; the last one cannot be deleted",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wallet.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted account %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}
