package processors

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/utils"
)

const reportDateFormat = "2006-01-02"

// ReportProcessor merges reconciled events, formats the display columns and
// orders the final column set.
type ReportProcessor struct {
	homeCurrency string
}

func NewReportProcessor(homeCurrency string) *ReportProcessor {
	return &ReportProcessor{homeCurrency: homeCurrency}
}

// Assemble builds the final report table from taxed events. Duplicate
// (date, instrument) events are merged by summing shares and net dividend;
// the withholding percentage is uniform within a pair so the first wins.
func (p *ReportProcessor) Assemble(events []models.DividendEvent, statementCurrency string) *models.DividendReport {
	merged := p.merge(events)

	report := &models.DividendReport{
		StatementCurrency: statementCurrency,
		HomeCurrency:      p.homeCurrency,
		Rows:              make([]models.ReportRow, 0, len(merged)),
		GeneratedAt:       time.Now().UTC(),
	}

	var totalGrossHome float64
	for _, event := range merged {
		report.Rows = append(report.Rows, p.formatRow(event))
		if !event.TaxDueNil {
			report.TotalTaxDue += event.TaxDue
		}
		gross := event.NetDividend + event.WithholdingAmount
		totalGrossHome += gross * event.FxRateDMinus1
	}
	report.TotalTaxDue = utils.RoundFloat(report.TotalTaxDue, 2)
	report.TotalNetHome = utils.RoundFloat(totalGrossHome-report.TotalTaxDue, 2)

	logger.L.Info("Assembled dividend report",
		"rows", len(report.Rows),
		"totalTaxDue", report.TotalTaxDue,
		"totalNetHome", report.TotalNetHome)
	return report
}

func (p *ReportProcessor) merge(events []models.DividendEvent) []models.DividendEvent {
	type eventKey struct {
		date       string
		instrument string
	}

	index := make(map[eventKey]int)
	var merged []models.DividendEvent
	for _, event := range events {
		key := eventKey{date: event.Date.Format(reportDateFormat), instrument: event.Instrument}
		if i, ok := index[key]; ok {
			merged[i].Shares += event.Shares
			merged[i].NetDividend += event.NetDividend
			merged[i].WithholdingAmount += event.WithholdingAmount
			if !event.TaxDueNil {
				merged[i].TaxDue += event.TaxDue
				merged[i].TaxDueNil = false
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, event)
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		return merged[i].Instrument < merged[j].Instrument
	})
	return merged
}

// formatRow serializes one event into its display row. Amount and currency
// are carried as separate typed fields internally; the combined "6.84 USD"
// string exists only at this boundary, for compatibility with the downstream
// spreadsheet consumer.
func (p *ReportProcessor) formatRow(event models.DividendEvent) models.ReportRow {
	row := models.ReportRow{
		Date:        event.Date.Format(reportDateFormat),
		Instrument:  event.Instrument,
		NetDividend: fmt.Sprintf("%.2f %s", event.NetDividend, event.Currency),
	}

	if event.Degraded {
		row.Shares = "-"
	} else {
		row.Shares = strconv.Itoa(event.Shares)
	}

	if event.WithholdingPct > 0 && event.WithholdingAmount > 0 {
		row.TaxCollectedAmount = fmt.Sprintf("%.2f %s", event.WithholdingAmount, event.Currency)
	} else {
		row.TaxCollectedAmount = "-"
	}

	if event.WithholdingPct > 0 {
		row.TaxCollectedPct = fmt.Sprintf("%d%%", int(math.Round(event.WithholdingPct*100)))
	} else {
		row.TaxCollectedPct = "-"
	}

	// D-1 columns are informational for the home tax computation; when the
	// foreign withholding already satisfies the home obligation they render
	// as "-".
	if event.FxMasked {
		row.DateDMinus1 = "-"
		row.ExchangeRateDMinus1 = "-"
	} else {
		row.DateDMinus1 = event.DateDMinus1.Format(reportDateFormat)
		if event.Currency == p.homeCurrency {
			row.ExchangeRateDMinus1 = "-"
		} else {
			row.ExchangeRateDMinus1 = fmt.Sprintf("%.4f %s", event.FxRateDMinus1, p.homeCurrency)
		}
	}

	if event.TaxDueNil {
		row.TaxDueHome = "-"
	} else {
		row.TaxDueHome = fmt.Sprintf("%.2f", event.TaxDue)
	}

	return row
}
