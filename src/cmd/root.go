// Package cmd provides the CLI commands for dividendtax.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dividendtax",
	Short: "Reconcile broker dividend statements into a home-currency tax report",
	Long: `dividendtax converts an XTB cash-operation XLSX export into a per-dividend
tax ledger: share counts and per-share amounts reconstructed from statement
comments, foreign withholding netted against the home flat tax, and amounts
converted with official D-1 exchange rates.

Example:
  dividendtax process --input data/statement.xlsx
  dividendtax fetch --years 3
  dividendtax serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		logger.InitLogger(config.Cfg.LogLevel)
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// exitOnError logs a fatal error, surfacing any remediation hint the error
// carries, and terminates the process.
func exitOnError(err error, msg string) {
	if err == nil {
		return
	}
	logger.L.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	var rateErr *models.RateNotFoundError
	if errors.As(err, &rateErr) {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", rateErr.Remediation())
	}
	os.Exit(1)
}
