package processors

import (
	"sort"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
)

// TransactionGrouper filters raw statement rows down to dividend-related
// kinds and collapses them into one group per (date, instrument) pair.
type TransactionGrouper struct{}

func NewTransactionGrouper() *TransactionGrouper {
	return &TransactionGrouper{}
}

// FilterDividendRows keeps only dividend and withholding-tax rows. Rows whose
// type label did not map to a recognized kind are dropped.
func (g *TransactionGrouper) FilterDividendRows(rows []models.RawTransaction) []models.RawTransaction {
	var filtered []models.RawTransaction
	for _, row := range rows {
		if row.Kind == models.KindDividend || row.Kind == models.KindWithholdingTax {
			filtered = append(filtered, row)
		}
	}
	logger.L.Info("Filtered dividend-related rows", "in", len(rows), "out", len(filtered))
	return filtered
}

// Group collapses filtered rows into one TransactionGroup per
// (date, instrument) pair, summing amounts and retaining every comment.
// Negative amounts are routed to the withholding bucket regardless of their
// type label: some statements report the withheld tax as a negative
// "Dividend" row rather than a dedicated withholding row.
func (g *TransactionGrouper) Group(rows []models.RawTransaction) []models.TransactionGroup {
	type groupKey struct {
		date       string
		instrument string
	}

	groups := make(map[groupKey]*models.TransactionGroup)
	for _, row := range rows {
		key := groupKey{date: row.Date.Format("2006-01-02"), instrument: row.Instrument}
		group, ok := groups[key]
		if !ok {
			group = &models.TransactionGroup{Date: row.Date, Instrument: row.Instrument}
			groups[key] = group
		}
		if row.Kind == models.KindWithholdingTax || row.Amount < 0 {
			group.WithholdingRaw += row.Amount
		} else {
			group.NetAmount += row.Amount
		}
		if row.Comment != "" {
			group.Comments = append(group.Comments, row.Comment)
		}
	}

	result := make([]models.TransactionGroup, 0, len(groups))
	for _, group := range groups {
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Instrument < result[j].Instrument
	})

	logger.L.Info("Grouped dividend rows", "rows", len(rows), "groups", len(result))
	return result
}
