// Package analytics computes the monthly spend-versus-budget summary.
//
// ComputeMonthlySummary is pure: it does no I/O and holds no state, so it is
// safe to call concurrently and its result is never cached.
package analytics

import (
	"sort"

	"fintrack/internal/core"
)

// RecentLimit caps the recent transactions list.
const RecentLimit = 10

type (
	CategorySummary struct {
		Category   core.Category `json:"category"`
		Spent      core.Money    `json:"spent"`
		Budget     core.Money    `json:"budget"`
		Percentage float64       `json:"percentage"`
		Status     core.Status   `json:"status"`
	}

	// Insights mirrors the dashboard cards: which categories need attention
	// and how much of the overall budget is used.
	Insights struct {
		OverBudget        []core.Category `json:"overBudget"`
		Warning           []core.Category `json:"warning"`
		OnTrack           []core.Category `json:"onTrack"`
		BudgetUsedPercent float64         `json:"budgetUsedPercent"`
	}

	Result struct {
		CategorySummary    []CategorySummary  `json:"categorySummary"`
		TotalSpent         core.Money         `json:"totalSpent"`
		TotalBudget        core.Money         `json:"totalBudget"`
		RecentTransactions []core.Transaction `json:"recentTransactions"`
		Month              core.Month         `json:"month"`
		Insights           Insights           `json:"insights"`
	}
)

// ComputeMonthlySummary aggregates one month's transactions and budgets.
//
// Inputs are assumed to be already filtered to month. Spend in a category
// outside the set is counted under Other so the per-category rows always add
// up to TotalSpent. Totals are summed from the raw inputs.
func ComputeMonthlySummary(month core.Month, txns []core.Transaction, budgets []core.Budget) Result {
	spent := make(map[core.Category]core.Money, len(core.Categories))
	var totalSpent core.Money
	for _, t := range txns {
		c := t.Category
		if !c.Valid() {
			c = core.Other
		}
		spent[c] = spent[c].Add(t.Amount)
		totalSpent = totalSpent.Add(t.Amount)
	}

	budgeted := make(map[core.Category]core.Money, len(budgets))
	var totalBudget core.Money
	for _, b := range budgets {
		totalBudget = totalBudget.Add(b.Amount)
		if b.Category.Valid() {
			budgeted[b.Category] = b.Amount
		}
	}

	res := Result{
		CategorySummary:    make([]CategorySummary, 0, len(core.Categories)),
		TotalSpent:         totalSpent,
		TotalBudget:        totalBudget,
		RecentTransactions: Recent(txns, RecentLimit),
		Month:              month,
	}
	for _, c := range core.Categories {
		s, b := spent[c], budgeted[c]
		res.CategorySummary = append(res.CategorySummary, CategorySummary{
			Category:   c,
			Spent:      s,
			Budget:     b,
			Percentage: core.Percentage(s, b),
			Status:     core.StatusFor(s, b),
		})
	}
	res.Insights = insightsFor(res)
	return res
}

// Recent returns up to limit transactions, newest date first. Same-day
// entries are ordered by creation time, newest first, then by ID.
// The input slice is not modified.
func Recent(txns []core.Transaction, limit int) []core.Transaction {
	out := make([]core.Transaction, len(txns))
	copy(out, txns)
	SortNewestFirst(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortNewestFirst sorts in place by date desc, createdAt desc, id desc.
func SortNewestFirst(txns []core.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func insightsFor(r Result) Insights {
	in := Insights{
		OverBudget: []core.Category{},
		Warning:    []core.Category{},
		OnTrack:    []core.Category{},
	}
	for _, cs := range r.CategorySummary {
		switch cs.Status {
		case core.StatusOver:
			in.OverBudget = append(in.OverBudget, cs.Category)
		case core.StatusWarning:
			in.Warning = append(in.Warning, cs.Category)
		default:
			if cs.Budget.Cents > 0 {
				in.OnTrack = append(in.OnTrack, cs.Category)
			}
		}
	}
	in.BudgetUsedPercent = core.Percentage(r.TotalSpent, r.TotalBudget)
	return in
}
