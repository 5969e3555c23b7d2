package analytics

import "fintrack/internal/core"

// Escalation records a category whose status became more severe.
type Escalation struct {
	Category core.Category `json:"category"`
	From     core.Status   `json:"from"`
	To       core.Status   `json:"to"`
	Spent    core.Money    `json:"spent"`
	Budget   core.Money    `json:"budget"`
}

// Escalations compares two summaries of the same month and returns the
// categories whose status rank increased. A nil previous summary is treated
// as all safe.
func Escalations(prev *Result, next Result) []Escalation {
	before := make(map[core.Category]core.Status, len(core.Categories))
	if prev != nil {
		for _, cs := range prev.CategorySummary {
			before[cs.Category] = cs.Status
		}
	}
	var out []Escalation
	for _, cs := range next.CategorySummary {
		from, ok := before[cs.Category]
		if !ok {
			from = core.StatusSafe
		}
		if cs.Status.Rank() > from.Rank() {
			out = append(out, Escalation{
				Category: cs.Category,
				From:     from,
				To:       cs.Status,
				Spent:    cs.Spent,
				Budget:   cs.Budget,
			})
		}
	}
	return out
}
