package cmd

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/handlers"
	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/services"
)

// serveCmd exposes the computed report over a small JSON API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dividend report over HTTP",
	Long: `Serve starts an HTTP server exposing the report for the configured input
statement as JSON. Results are cached in-process, so repeated requests do not
re-read the statement or the rate archives.

Endpoints:
  GET /api/health
  GET /api/report
  GET /api/report/events`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	reportService := services.NewReportService(config.Cfg, reportCache)
	reportHandler := handlers.NewReportHandler(reportService, config.Cfg)

	server := &http.Server{
		Addr:         ":" + config.Cfg.Port,
		Handler:      handlers.NewRouter(reportHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Starting HTTP server", "port", config.Cfg.Port, "input", config.Cfg.InputFile)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		exitOnError(err, "HTTP server failed")
	}
}
