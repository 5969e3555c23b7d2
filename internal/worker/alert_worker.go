package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Summarizer computes a month's summary. *services.AnalyticsService satisfies it.
type Summarizer interface {
	MonthlySummary(ctx context.Context, month core.Month) (analytics.Result, error)
}

// Alerter delivers escalation alerts and digests. *notify.Notifier satisfies it.
type Alerter interface {
	BudgetAlert(ctx context.Context, month core.Month, escalations []analytics.Escalation) error
	MonthlyDigest(ctx context.Context, res analytics.Result) error
}

// EventSource is the consuming half of the AMQP client.
type EventSource interface {
	ConsumeEvents(ctx context.Context, handler amqp.Handler) error
}

// AlertWorker recomputes a month whenever a ledger event touches it and
// alerts on categories whose status became more severe since the last
// summary it saw for that month.
type AlertWorker struct {
	summaries Summarizer
	alerts    Alerter
	logger    *applog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last map[core.Month]analytics.Result
}

func NewAlertWorker(summaries Summarizer, alerts Alerter, logger *applog.Logger) *AlertWorker {
	return &AlertWorker{
		summaries: summaries,
		alerts:    alerts,
		logger:    logger.WithComponent(applog.ComponentWorker),
		now:       time.Now,
		last:      make(map[core.Month]analytics.Result),
	}
}

// Prime records baselines for months without alerting, so a restart does
// not re-announce categories that were already over budget.
func (w *AlertWorker) Prime(ctx context.Context, months ...core.Month) error {
	for _, m := range months {
		res, err := w.summaries.MonthlySummary(ctx, m)
		if err != nil {
			return fmt.Errorf("prime %s: %w", m, err)
		}
		w.mu.Lock()
		w.last[m] = res
		w.mu.Unlock()
		w.logger.InfoContext(ctx, "Baseline recorded",
			applog.FieldMonth, m.String(),
			"over", len(res.Insights.OverBudget),
			"warning", len(res.Insights.Warning))
	}
	return nil
}

// HandleEvent is the amqp.Handler for ledger events. A returned error
// requeues the event; the baseline only advances once alerts went out.
func (w *AlertWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.DebugContext(ctx, "Processing ledger event",
		"type", ev.Type,
		applog.FieldRecordID, ev.ID,
		applog.FieldMonth, ev.Month.String())

	res, err := w.summaries.MonthlySummary(ctx, ev.Month)
	if err != nil {
		return fmt.Errorf("recompute %s: %w", ev.Month, err)
	}

	w.mu.Lock()
	prev, seen := w.last[ev.Month]
	w.mu.Unlock()

	var prevPtr *analytics.Result
	if seen {
		prevPtr = &prev
	}
	escalations := analytics.Escalations(prevPtr, res)
	if len(escalations) > 0 {
		if err := w.alerts.BudgetAlert(ctx, ev.Month, escalations); err != nil {
			return fmt.Errorf("send budget alert: %w", err)
		}
		w.logger.InfoContext(ctx, "Budget alert sent",
			applog.FieldMonth, ev.Month.String(),
			"categories", len(escalations))
	}

	w.mu.Lock()
	w.last[ev.Month] = res
	w.mu.Unlock()
	return nil
}

// SendDigest mails the summary of the current month.
func (w *AlertWorker) SendDigest(ctx context.Context) error {
	month := core.CurrentMonth(w.now())
	res, err := w.summaries.MonthlySummary(ctx, month)
	if err != nil {
		return fmt.Errorf("digest summary %s: %w", month, err)
	}
	if err := w.alerts.MonthlyDigest(ctx, res); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	w.logger.InfoContext(ctx, "Digest sent", applog.FieldMonth, month.String())
	return nil
}

// ScheduleDigest registers SendDigest on a standard five-field cron spec
// and starts the scheduler. Stop the returned cron on shutdown.
func (w *AlertWorker) ScheduleDigest(ctx context.Context, spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := w.SendDigest(runCtx); err != nil {
			w.logger.ErrorContext(runCtx, "Scheduled digest failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	c.Start()
	w.logger.InfoContext(ctx, "Digest scheduled", "schedule", spec)
	return c, nil
}

// Run consumes ledger events until ctx is cancelled.
func (w *AlertWorker) Run(ctx context.Context, source EventSource) error {
	w.logger.InfoContext(ctx, "Alert worker consuming ledger events")
	if err := source.ConsumeEvents(ctx, w.HandleEvent); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume ledger events: %w", err)
	}
	return nil
}
