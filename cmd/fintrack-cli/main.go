package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/format"
	applog "fintrack/internal/log"
)

var (
	cfg       *config.Config
	logger    *applog.Logger
	formatter *format.Formatter

	rootCmd = &cobra.Command{
		Use:   "fintrack-cli",
		Short: "Manage the fintrack ledger from the terminal",
		Long: `fintrack-cli runs migrations, sets budgets and prints monthly
spending reports against the configured storage backend.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().String("backend", "", "storage backend override ("+joinBackends()+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(transactionsCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	loaded := config.Load()
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		loaded.DataBackend = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		loaded.LogLevel = v
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentCLI)
	formatter = format.New(cfg.CurrencyLocale, cfg.CurrencySymbol)
	return nil
}

// openStore opens the configured backend. Callers must invoke the cleanup.
func openStore(ctx context.Context) (*backend.BackendResult, func(), error) {
	be, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return be, func() {
		if err := be.Cleanup(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}, nil
}

func joinBackends() string {
	out := ""
	for i, b := range backend.GetBackendTypeStrings() {
		if i > 0 {
			out += ", "
		}
		out += b
	}
	return out
}
