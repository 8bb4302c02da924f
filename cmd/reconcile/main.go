// Command reconcile imports a bank statement for one owner from the command
// line, proposes exact matches and prints a summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/homebudget-guard/internal/cli"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/config"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/logging"
)

func main() {
	flags, err := cli.ParseReconcileFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnvWithPath(flags.ConfigPath)
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := cli.NewServices(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	if err := cli.RunReconcile(ctx, services, flags, os.Stdout); err != nil {
		logger.Error("Reconcile failed", "error", err)
		services.Close()
		os.Exit(1)
	}
}
