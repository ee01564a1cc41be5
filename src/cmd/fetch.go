package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/services"
)

var fetchYears int

// fetchCmd downloads the NBP exchange-rate archives needed for reconciliation.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download NBP exchange rate archives into the data directory",
	Long: `Fetch drives a headless browser against the NBP archive page and downloads
the yearly "tabela A" CSV files for the most recent years. These files back
the D-1 exchange rate lookups during processing.

Example:
  dividendtax fetch --years 3`,
	Run: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchYears, "years", 3, "number of most recent yearly archives to download")
}

func runFetch(cmd *cobra.Command, args []string) {
	fetchService := services.NewFetchService(config.Cfg)
	err := fetchService.FetchArchives(fetchYears)
	exitOnError(err, "failed to fetch exchange rate archives")
	fmt.Printf("Downloaded %d archive(s) into %s\n", fetchYears, config.Cfg.DataDirectory)
}
