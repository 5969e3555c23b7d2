package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE:    runTransactions,
	}
	cmd.Flags().String("month", "", "only show this month (YYYY-MM)")
	return cmd
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var month *core.Month
	if raw, _ := cmd.Flags().GetString("month"); raw != "" {
		m, err := core.ParseMonth(raw)
		if err != nil {
			return err
		}
		month = &m
	}

	be, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	txns, err := services.NewLedgerService(be.Store, nil).ListTransactions(ctx, month)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transactions found.")
		return nil
	}
	return printTransactions(cmd.OutOrStdout(), txns)
}

func printTransactions(out io.Writer, txns []core.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, t := range txns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.Date.Display(), t.Category, formatter.Currency(t.Amount), t.Description, t.ID)
	}
	return w.Flush()
}
