package cmd

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/database"
	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/services"
)

var (
	processInput  string
	processOutput string
	processSource string
	processSave   bool
)

// processCmd runs the statement-to-report pipeline once and writes the TSV.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a broker statement into a dividend tax report",
	Long: `Process reads one broker cash-operation export, reconciles its dividend
rows into per-instrument events, computes the residual home tax per event and
writes the final table as a tab-separated file.

The output file is only written when the whole statement reconciles; any
fatal inconsistency aborts the run before output.

Example:
  dividendtax process --input data/statement.xlsx
  dividendtax process --input data/statement.xlsx --save`,
	Run: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processInput, "input", "", "statement file to process (default from INPUT_FILE)")
	processCmd.Flags().StringVar(&processOutput, "output", "", "output TSV path (default from OUTPUT_FILE)")
	processCmd.Flags().StringVar(&processSource, "source", "xtb", "statement source format")
	processCmd.Flags().BoolVar(&processSave, "save", false, "persist the run and its events to the database")
}

func runProcess(cmd *cobra.Command, args []string) {
	input := processInput
	if input == "" {
		input = config.Cfg.InputFile
	}
	output := processOutput
	if output == "" {
		output = config.Cfg.OutputFile
	}

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	reportService := services.NewReportService(config.Cfg, reportCache)

	result, err := reportService.GenerateReport(input, processSource)
	exitOnError(err, "failed to generate dividend report")

	exportService := services.NewExportService()
	err = exportService.ExportTSV(result.Report, output)
	exitOnError(err, "failed to write report file")

	if processSave {
		database.InitDB(config.Cfg.DatabasePath)
		runID, err := database.SaveReport(input, result.Report, result.Events)
		exitOnError(err, "failed to save report to database")
		logger.L.Info("Report persisted", "runID", runID)
	}

	fmt.Printf("Processed %d dividend events from %s\n", len(result.Events), input)
	fmt.Printf("Total tax due: %.2f %s\n", result.Report.TotalTaxDue, result.Report.HomeCurrency)
	fmt.Printf("Total net received: %.2f %s\n", result.Report.TotalNetHome, result.Report.HomeCurrency)
	fmt.Printf("Report written to %s\n", output)
}
