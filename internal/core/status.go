package core

import "github.com/shopspring/decimal"

// Status is the budget health of one category for one month.
type Status string

const (
	StatusSafe    Status = "safe"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

// Threshold percentages of the budget.
const (
	OverThresholdPercent    = 100
	WarningThresholdPercent = 80
)

// StatusFor classifies spent against budget. A zero budget is always safe.
// Comparisons are exact decimal arithmetic on minor units, so 80.00 of
// 100.00 is exactly a warning and month totals near the int64 limit cannot wrap.
func StatusFor(spent, budget Money) Status {
	if budget.Cents == 0 {
		return StatusSafe
	}
	s := decimal.NewFromInt(spent.Cents).Mul(hundred)
	b := decimal.NewFromInt(budget.Cents)
	switch {
	case s.GreaterThanOrEqual(b.Mul(decimal.NewFromInt(OverThresholdPercent))):
		return StatusOver
	case s.GreaterThanOrEqual(b.Mul(decimal.NewFromInt(WarningThresholdPercent))):
		return StatusWarning
	default:
		return StatusSafe
	}
}

var hundred = decimal.NewFromInt(100)

// Rank orders statuses by severity.
func (s Status) Rank() int {
	switch s {
	case StatusOver:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Percentage returns spent as a percentage of budget, or 0 with no budget.
func Percentage(spent, budget Money) float64 {
	if budget.Cents == 0 {
		return 0
	}
	return float64(spent.Cents) / float64(budget.Cents) * 100
}
