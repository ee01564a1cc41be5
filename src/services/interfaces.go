package services

import (
	"errors"

	"github.com/username/dividendtax/backend/src/models"
)

var (
	ErrParsingFailed  = errors.New("statement parsing failed")
	ErrNoDividendRows = errors.New("statement contains no dividend rows")
)

// ReportResult bundles the formatted report with the underlying events, so
// callers that need the typed values (persistence, the JSON API) do not have
// to re-derive them from display strings.
type ReportResult struct {
	Report *models.DividendReport
	Events []models.DividendEvent
}

// ReportService runs the full statement-to-report pipeline.
type ReportService interface {
	GenerateReport(inputPath, source string) (*ReportResult, error)
}

// ExportService writes an assembled report to its external representation.
type ExportService interface {
	ExportTSV(report *models.DividendReport, outputPath string) error
}

// FetchService downloads exchange-rate archive files into the data directory.
type FetchService interface {
	FetchArchives(years int) error
}
