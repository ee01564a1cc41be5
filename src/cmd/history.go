package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/database"
)

var historyLimit int

// historyCmd lists runs persisted with `process --save`.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved report runs",
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) {
	database.InitDB(config.Cfg.DatabasePath)

	runs, err := database.ListRuns(historyLimit)
	exitOnError(err, "failed to list report runs")

	if len(runs) == 0 {
		fmt.Println("No saved report runs.")
		return
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  %s  events=%d  tax due=%.2f %s  net=%.2f %s\n",
			run.GeneratedAt, run.ID, run.InputFile, run.EventCount,
			run.TotalTaxDue, run.HomeCurrency, run.TotalNetHome, run.HomeCurrency)
	}
}
