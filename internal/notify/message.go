// Package notify renders budget alerts and digests and delivers them by email.
package notify

import (
	"fmt"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/format"
)

// Message is a rendered plain-text notification.
type Message struct {
	Subject string
	Body    string
}

// BudgetAlertMessage describes categories whose status got worse.
func BudgetAlertMessage(f *format.Formatter, month core.Month, escalations []analytics.Escalation) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Budget status changed for %s:\n\n", month)
	over := 0
	for _, e := range escalations {
		if e.To == core.StatusOver {
			over++
		}
		fmt.Fprintf(&b, "- %s: %s -> %s, spent %s of %s (%s)\n",
			e.Category, e.From, e.To,
			f.Currency(e.Spent), f.Currency(e.Budget),
			f.Percent(core.Percentage(e.Spent, e.Budget)))
	}
	b.WriteString("\nfintrack")

	subject := fmt.Sprintf("[fintrack] %d categor%s nearing budget in %s", len(escalations), plural(len(escalations)), month)
	if over > 0 {
		subject = fmt.Sprintf("[fintrack] %d categor%s over budget in %s", over, plural(over), month)
	}
	return Message{Subject: subject, Body: b.String()}
}

// DigestMessage summarises a month: totals, per-category rows with a budget
// or spend, and the most recent transactions.
func DigestMessage(f *format.Formatter, res analytics.Result) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Spending summary for %s\n\n", res.Month)
	fmt.Fprintf(&b, "Total spent:  %s\n", f.Currency(res.TotalSpent))
	fmt.Fprintf(&b, "Total budget: %s\n", f.Currency(res.TotalBudget))
	fmt.Fprintf(&b, "Budget used:  %s\n\n", f.Percent(res.Insights.BudgetUsedPercent))

	b.WriteString("By category:\n")
	for _, cs := range res.CategorySummary {
		if cs.Spent.IsZero() && cs.Budget.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "- %-15s %s / %s  [%s]\n", cs.Category, f.Currency(cs.Spent), f.Currency(cs.Budget), cs.Status)
	}

	if len(res.RecentTransactions) > 0 {
		b.WriteString("\nRecent transactions:\n")
		for _, t := range res.RecentTransactions {
			fmt.Fprintf(&b, "- %s  %-15s %s  %s\n", t.Date.Display(), t.Category, f.Currency(t.Amount), t.Description)
		}
	}
	b.WriteString("\nfintrack")

	return Message{
		Subject: fmt.Sprintf("[fintrack] Monthly digest %s: %d over, %d warning", res.Month, len(res.Insights.OverBudget), len(res.Insights.Warning)),
		Body:    b.String(),
	}
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
