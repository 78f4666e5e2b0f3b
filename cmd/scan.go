package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [company...]",
		Short: "Runs a one-shot scan and prints the results as JSON",
		Long: `Scans the given companies, or the configured roster when none are
given, and prints one result per company to stdout. New documents are
recorded, notified, and archived according to the configuration.`,
		RunE: runScanCommand,
	}
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer a.Close()

	companies := args
	if len(companies) == 0 {
		companies = a.cfg.Scan.Companies
	}
	if len(companies) == 0 {
		return errors.New("no companies given and scan.companies is empty")
	}

	results, err := a.scanner.ScanAll(ctx, companies)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	a.logger.Info("scan finished",
		zap.Int("requested", len(companies)),
		zap.Int("succeeded", len(results)))
	if len(results) < len(companies) {
		return fmt.Errorf("%d of %d companies failed", len(companies)-len(results), len(companies))
	}
	return nil
}
