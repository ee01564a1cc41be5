package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
)

// reportHeader builds the fixed column order of the exported table; the last
// column names the home currency.
func reportHeader(homeCurrency string) []string {
	return []string{
		"Date",
		"Instrument",
		"Shares",
		"Net Dividend",
		"Tax Collected Amount",
		"Tax Collected %",
		"Date D-1",
		"Exchange Rate D-1",
		fmt.Sprintf("Tax Amount %s", homeCurrency),
	}
}

type exportServiceImpl struct{}

func NewExportService() ExportService {
	return &exportServiceImpl{}
}

// ExportTSV writes the report as a tab-separated file suitable for pasting
// into a spreadsheet. The output directory is created if missing; the file is
// only touched once the whole report has been assembled upstream.
func (s *exportServiceImpl) ExportTSV(report *models.DividendReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory for '%s': %w", outputPath, err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file '%s': %w", outputPath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = '\t'

	if err := writer.Write(reportHeader(report.HomeCurrency)); err != nil {
		return fmt.Errorf("writing header to '%s': %w", outputPath, err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.Date,
			row.Instrument,
			row.Shares,
			row.NetDividend,
			row.TaxCollectedAmount,
			row.TaxCollectedPct,
			row.DateDMinus1,
			row.ExchangeRateDMinus1,
			row.TaxDueHome,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing row to '%s': %w", outputPath, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing output file '%s': %w", outputPath, err)
	}

	logger.L.Info("Exported dividend report",
		"path", outputPath,
		"rows", len(report.Rows),
		"totalTaxDue", report.TotalTaxDue)
	return nil
}
