package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	be, err := cli.InitBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	amqpClient, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	if !cfg.SMTPEnabled() {
		logger.Info("SMTP not configured, notifications will be logged only")
	}
	alerts := worker.NewAlertWorker(
		services.NewAnalyticsService(be.Store),
		notify.FromConfig(cfg, logger),
		logger,
	)

	var (
		mu        sync.Mutex
		scheduler *cron.Cron
	)
	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		mu.Lock()
		if scheduler != nil {
			select {
			case <-scheduler.Stop().Done():
			case <-shutdownCtx.Done():
			}
		}
		mu.Unlock()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if err := be.Cleanup(); err != nil {
			logger.Warn("Storage close error", "error", err)
		}
	})

	if err := alerts.Prime(ctx, core.CurrentMonth(time.Now())); err != nil {
		// Without a baseline the first event may re-alert; keep running.
		logger.Error("Failed to record alert baseline", "error", err)
	}

	if cfg.AlertDigestSchedule != "" {
		sched, err := alerts.ScheduleDigest(ctx, cfg.AlertDigestSchedule, time.Minute)
		if err != nil {
			logger.Error("Failed to schedule digest", "error", err)
			os.Exit(1)
		}
		mu.Lock()
		scheduler = sched
		mu.Unlock()
	} else {
		logger.Info("ALERT_DIGEST_SCHEDULE empty, digest disabled")
	}

	if amqpClient != nil {
		go func() {
			if err := alerts.Run(ctx, amqpClient); err != nil {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	} else {
		logger.Info("Skipping ledger event consumption - AMQP not configured, only the digest runs")
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
