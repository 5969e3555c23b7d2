package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print spending against budget for a month",
		Long: `Print the per-category spend, budget and status for a month,
followed by totals and the most recent transactions.`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}
	cmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
	cmd.Flags().Bool("json", false, "print the raw summary as JSON")
	return cmd
}

// monthFlag parses --month, defaulting to the current month.
func monthFlag(cmd *cobra.Command) (core.Month, error) {
	raw, _ := cmd.Flags().GetString("month")
	if raw == "" {
		return core.CurrentMonth(time.Now()), nil
	}
	return core.ParseMonth(raw)
}

func runSummary(cmd *cobra.Command, _ []string) error {
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

	res, err := services.NewAnalyticsService(be.Store).MonthlySummary(ctx, month)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printSummary(cmd.OutOrStdout(), res)
}

func printSummary(out io.Writer, res analytics.Result) error {
	fmt.Fprintf(out, "Summary for %s\n\n", res.Month)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CATEGORY\tSPENT\tBUDGET\tUSED\tSTATUS\t")
	for _, cs := range res.CategorySummary {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			cs.Category,
			formatter.Currency(cs.Spent),
			formatter.Currency(cs.Budget),
			formatter.Percent(cs.Percentage),
			cs.Status)
	}
	fmt.Fprintf(w, "TOTAL\t%s\t%s\t%s\t\t\n",
		formatter.Currency(res.TotalSpent),
		formatter.Currency(res.TotalBudget),
		formatter.Percent(res.Insights.BudgetUsedPercent))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nOver budget: %d  Warning: %d  On track: %d\n",
		len(res.Insights.OverBudget), len(res.Insights.Warning), len(res.Insights.OnTrack))

	if len(res.RecentTransactions) == 0 {
		fmt.Fprintln(out, "\nNo transactions this month.")
		return nil
	}
	fmt.Fprintln(out, "\nRecent transactions:")
	return printTransactions(out, res.RecentTransactions)
}
