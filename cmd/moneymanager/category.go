package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"moneymanager/internal/core"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories and sub-categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := a.wallet.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return a.printCategories(cats)
		},
	}

	var catType, icon string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.wallet.AddCategory(cmd.Context(), core.Category{
				Name: args[0],
				Type: core.TransactionType(catType),
				Icon: icon,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added category %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&catType, "type", "t", string(core.Expense), "income or expense")
	add.Flags().StringVar(&icon, "icon", "Tag", "Icon name")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category; its transactions keep their label",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wallet.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted category %s\n", args[0])
			return nil
		},
	}

	sub := &cobra.Command{
		Use:   "sub",
		Short: "Add or remove sub-categories",
	}
	sub.AddCommand(
		&cobra.Command{
			Use:   "add <category-id> <name>",
			Short: "Add a sub-category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cats, err := a.wallet.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				i := slices.IndexFunc(cats, func(c core.Category) bool { return c.ID == args[0] })
				if i < 0 {
					return fmt.Errorf("category %s not found", args[0])
				}
				if cats[i].HasSubCategory(args[1]) {
					return fmt.Errorf("%s already has sub-category %q", cats[i].Name, args[1])
				}
				if err := a.wallet.AddSubCategory(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added sub-category %s\n", args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:     "remove <category-id> <name>",
			Aliases: []string{"rm"},
			Short:   "Remove a sub-category",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.wallet.RemoveSubCategory(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Removed sub-category %s\n", args[1])
				return nil
			},
		},
	)

	cmd.AddCommand(list, add, del, sub)
	return cmd
}
