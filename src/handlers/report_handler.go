package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/services"
	"github.com/username/dividendtax/backend/src/utils"
)

// ReportHandler serves the assembled dividend report over HTTP. The input
// statement is fixed per process via configuration; the handler exists so a
// spreadsheet or frontend can poll the computed table without re-running the
// CLI.
type ReportHandler struct {
	reportService services.ReportService
	cfg           *config.AppConfig
}

func NewReportHandler(service services.ReportService, cfg *config.AppConfig) *ReportHandler {
	return &ReportHandler{
		reportService: service,
		cfg:           cfg,
	}
}

// NewRouter builds the API router with the shared middleware stack.
func NewRouter(h *ReportHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RateLimitMiddleware)

	r.Get("/api/health", h.HandleHealth)
	r.Get("/api/report", h.HandleGetReport)
	r.Get("/api/report/events", h.HandleGetReportEvents)
	return r
}

func (h *ReportHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	logger.L.Info("Handling GetReport", "input", h.cfg.InputFile)
	result, err := h.reportService.GenerateReport(h.cfg.InputFile, "xtb")
	if err != nil {
		logger.L.Error("Error generating dividend report", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error generating dividend report: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result.Report); err != nil {
		logger.L.Error("Error encoding dividend report to JSON", "error", err)
	}
}

func (h *ReportHandler) HandleGetReportEvents(w http.ResponseWriter, r *http.Request) {
	logger.L.Info("Handling GetReportEvents", "input", h.cfg.InputFile)
	result, err := h.reportService.GenerateReport(h.cfg.InputFile, "xtb")
	if err != nil {
		logger.L.Error("Error generating dividend events", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error generating dividend events: %v", err), http.StatusInternalServerError)
		return
	}
	events := result.Events
	if events == nil {
		events = []models.DividendEvent{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		logger.L.Error("Error encoding dividend events to JSON", "error", err)
	}
}
