package processors

import (
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/utils"
)

// TaxProcessor computes the residual home-country tax owed per dividend
// event. Each computation is pure given the event and the run-wide statement
// currency; there is no shared mutable state between events.
type TaxProcessor struct {
	homeCurrency string
	homeTaxRate  float64
}

func NewTaxProcessor(homeCurrency string, homeTaxRate float64) *TaxProcessor {
	return &TaxProcessor{homeCurrency: homeCurrency, homeTaxRate: homeTaxRate}
}

// HomeTaxDue returns the residual tax in the home currency and whether the
// result is "none" (no tax due). Foreign withholding at or above the home
// rate settles the obligation outright; so does a result that rounds to 0.00,
// to avoid implying a non-zero residual.
//
// The two formulas differ because home-currency statements report the
// pre-tax per-share amount directly, while foreign-currency statements
// report post-withholding net proceeds, so the gross has to be reconstructed
// before reapplying the home rate.
func (p *TaxProcessor) HomeTaxDue(event models.DividendEvent, statementCurrency string) (float64, bool) {
	if event.WithholdingPct >= p.homeTaxRate {
		return 0, true
	}

	var residual float64
	if statementCurrency == p.homeCurrency {
		residual = event.NetDividend*p.homeTaxRate - event.WithholdingAmount
	} else {
		gross := event.NetDividend + event.WithholdingAmount
		residual = gross*p.homeTaxRate - event.WithholdingAmount
	}

	due := utils.RoundFloat(residual*event.FxRateDMinus1, 2)
	if due == 0 {
		return 0, true
	}
	return due, false
}

// Apply enriches every event with its residual tax. Pure transformation: the
// input slice is not mutated.
func (p *TaxProcessor) Apply(events []models.DividendEvent, statementCurrency string) []models.DividendEvent {
	out := make([]models.DividendEvent, len(events))
	for i, event := range events {
		due, none := p.HomeTaxDue(event, statementCurrency)
		event.TaxDue = due
		event.TaxDueNil = none
		out[i] = event
	}
	return out
}
