// amdriver-check verifies that a dashboard install is reachable and
// drivable: it opens a browser session, logs in, loads the transfer
// tab, and optionally clears leftover units from earlier runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/artefactual-labs/amdriver/internal/common"
	"github.com/artefactual-labs/amdriver/internal/dashboard"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	cleanUnits   = flag.Bool("clean", false, "Remove all listed transfer and ingest units after the check")
	checkTimeout = flag.Duration("timeout", 2*time.Minute, "Overall deadline for the check")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("amdriver version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup order: config, logger, banner, then browser work.
	if len(configFiles) == 0 {
		if _, err := os.Stat("amdriver.toml"); err == nil {
			configFiles = append(configFiles, "amdriver.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("dashboard", config.Dashboard.BaseURL).
		Bool("headless", config.Browser.Headless).
		Dur("timeout", *checkTimeout).
		Msg("Starting dashboard check")

	ctx, cancel := context.WithTimeout(context.Background(), *checkTimeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("Interrupted, shutting down")
		cancel()
	}()

	if err := runCheck(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Dashboard check failed")
		os.Exit(1)
	}
	logger.Info().Msg("Dashboard check passed")
}

func runCheck(ctx context.Context) error {
	harness, err := dashboard.NewHarness(config, logger)
	if err != nil {
		return err
	}
	defer harness.Close()

	if err := harness.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := harness.VerifyTransferTab(ctx); err != nil {
		return fmt.Errorf("transfer tab check failed: %w", err)
	}

	if *cleanUnits {
		if err := harness.RemoveAllTransfers(ctx); err != nil {
			return fmt.Errorf("failed to clear transfer units: %w", err)
		}
		if err := harness.RemoveAllIngests(ctx); err != nil {
			return fmt.Errorf("failed to clear ingest units: %w", err)
		}
		logger.Info().Msg("Cleared leftover units")
	}

	return nil
}
