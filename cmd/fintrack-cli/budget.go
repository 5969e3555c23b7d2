package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/services"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
	}
	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetListCmd())
	return cmd
}

func budgetSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Create or replace the budget for a category and month",
		Example: `  fintrack-cli budget set --category Food --amount 1000 --month 2024-03`,
		Args:    cobra.NoArgs,
		RunE:    runBudgetSet,
	}
	cmd.Flags().String("category", "", "budget category (required)")
	cmd.Flags().String("amount", "", "budget amount, e.g. 1500.00 (required)")
	cmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	month, err := monthFlag(cmd)
	if err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("category")
	amount, _ := cmd.Flags().GetString("amount")

	be, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	saved, err := services.NewLedgerService(be.Store, nil).UpsertBudget(ctx, services.BudgetInput{
		Category: category,
		Amount:   amount,
		Month:    month.String(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s in %s set to %s\n",
		saved.Category, saved.Month, formatter.Currency(saved.Amount))
	return nil
}

func budgetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the budgets of a month",
		Args:  cobra.NoArgs,
		RunE:  runBudgetList,
	}
	cmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	month, err := monthFlag(cmd)
	if err != nil {
		return err
	}

	be, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	budgets, err := services.NewLedgerService(be.Store, nil).ListBudgets(ctx, month)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No budgets for %s.\n", month)
		return nil
	}
	for _, b := range budgets {
		fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s\n", b.Category, formatter.Currency(b.Amount))
	}
	return nil
}
