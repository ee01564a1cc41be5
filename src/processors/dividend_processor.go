package processors

import (
	"math"
	"strings"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/utils"
)

// shareCountTolerance is the maximum accepted deviation of a reconstructed
// share count from an integer. Larger deviations signal upstream data
// corruption and fail the run.
const shareCountTolerance = 0.01

// w8benThresholdRate is the US withholding rate applied when no W8BEN form is
// on file with the broker.
const w8benThresholdRate = 0.30

// DividendReconciler turns one transaction group into a DividendEvent:
// per-share amount and currency from the comments, share count reconstructed
// from the group total, withholding percentage and amount, and the D-1
// exchange rate for home-currency conversion.
type DividendReconciler struct {
	rates             *RateTable
	statementCurrency string
	homeCurrency      string
	homeTaxRate       float64
}

func NewDividendReconciler(rates *RateTable, statementCurrency, homeCurrency string, homeTaxRate float64) *DividendReconciler {
	return &DividendReconciler{
		rates:             rates,
		statementCurrency: statementCurrency,
		homeCurrency:      homeCurrency,
		homeTaxRate:       homeTaxRate,
	}
}

// Reconcile derives a DividendEvent from a group. Events whose comments yield
// no usable per-share amount are kept as partial records with Degraded set,
// so the one-event-per-(date,instrument) invariant holds for every input.
func (r *DividendReconciler) Reconcile(group models.TransactionGroup) (models.DividendEvent, error) {
	event := models.DividendEvent{
		Date:        group.Date,
		Instrument:  group.Instrument,
		DateDMinus1: utils.PreviousBusinessDay(group.Date),
	}

	perShare, extractedCurrency, found := r.scanPerShare(group.Comments)
	event.Currency = DetermineCurrency(group.Instrument, extractedCurrency)
	event.WithholdingPct = r.withholdingPct(group)

	if !found {
		event.Degraded = true
		event.NetDividend = group.NetAmount
		logger.L.Warn("No per-share amount in any group comment, keeping partial event",
			"instrument", group.Instrument, "date", group.Date.Format("2006-01-02"))
	} else {
		event.PerShareAmount = perShare

		// The raw group total is denominated in the statement currency, so a
		// conversion is only needed when a home-currency statement reports a
		// foreign-currency dividend.
		shareRate := 1.0
		if r.statementCurrency == r.homeCurrency && event.Currency != r.homeCurrency {
			rate, err := r.rates.RateFor(event.Currency, event.DateDMinus1)
			if err != nil {
				return models.DividendEvent{}, err
			}
			shareRate = rate
		}

		rawShares := group.NetAmount / (perShare * shareRate)
		shares := math.Round(rawShares)
		if math.Abs(rawShares-shares) > shareCountTolerance {
			return models.DividendEvent{}, &models.ShareCountMismatchError{
				Instrument: group.Instrument,
				Date:       group.Date,
				Shares:     rawShares,
			}
		}
		event.Shares = int(shares)
		// Reconstruct the clean total from the per-share value, discarding
		// rounding noise in the raw group sum.
		event.NetDividend = float64(event.Shares) * perShare
	}

	event.WithholdingAmount = r.withholdingAmount(&event, group)

	if event.WithholdingPct >= r.homeTaxRate {
		event.FxMasked = true
	}
	if event.Currency == r.homeCurrency {
		event.FxRateDMinus1 = 1.0
	} else {
		rate, err := r.rates.RateFor(event.Currency, event.DateDMinus1)
		if err != nil {
			return models.DividendEvent{}, err
		}
		event.FxRateDMinus1 = rate
	}

	return event, nil
}

// scanPerShare returns the first comment-extracted per-share amount greater
// than zero, together with its currency. When no comment yields an amount, a
// currency-only hit (from a withholding line) is still reported so the
// explicit annotation wins over the ticker-suffix default.
func (r *DividendReconciler) scanPerShare(comments []string) (float64, string, bool) {
	var currencyOnly string
	for _, comment := range comments {
		amount, currency, hasAmount := ParseDividendComment(comment)
		if hasAmount && amount > 0 {
			return amount, currency, true
		}
		if currencyOnly == "" && currency != "" {
			currencyOnly = currency
		}
	}
	return 0, currencyOnly, false
}

// withholdingPct scans every comment in the group for an explicit percentage
// and falls back to the treaty default for the instrument's exchange suffix.
func (r *DividendReconciler) withholdingPct(group models.TransactionGroup) float64 {
	for _, comment := range group.Comments {
		if pct, ok := ParseWithholdingPct(comment); ok {
			r.warnHighUSRate(group.Instrument, pct)
			return utils.RoundFloat(pct, 2)
		}
	}

	defaultRate := DefaultWithholdingRate(group.Instrument)
	if defaultRate == 0.0 {
		logger.L.Info("Using 0% withholding rate (no withholding tax at source)",
			"instrument", group.Instrument)
	} else {
		logger.L.Warn("No withholding annotation in any group comment, using treaty default",
			"instrument", group.Instrument,
			"date", group.Date.Format("2006-01-02"),
			"defaultRate", defaultRate)
	}
	return utils.RoundFloat(defaultRate, 2)
}

// withholdingAmount resolves the tax withheld at source, in the dividend
// currency. Foreign-currency statements report the withheld amount as its own
// row, which is preferred; home-currency statements only carry the
// percentage, so the amount is derived from the net algebraically.
func (r *DividendReconciler) withholdingAmount(event *models.DividendEvent, group models.TransactionGroup) float64 {
	pct := event.WithholdingPct
	if pct <= 0 {
		return 0
	}

	if r.statementCurrency != r.homeCurrency && group.WithholdingRaw != 0 {
		return math.Abs(group.WithholdingRaw)
	}

	if pct >= 1 {
		logger.L.Warn("Withholding percentage at or above 100%, cannot derive amount",
			"instrument", group.Instrument, "pct", pct)
		return math.Abs(group.WithholdingRaw)
	}

	// Net = Gross * (1 - pct), so Gross = Net / (1 - pct).
	gross := event.NetDividend / (1 - pct)
	return gross * pct
}

func (r *DividendReconciler) warnHighUSRate(instrument string, pct float64) {
	if strings.Contains(instrument, ".US") && math.Abs(pct-w8benThresholdRate) < 0.01 {
		logger.L.Warn("30% withholding detected for US dividend; filing a W8BEN form with the broker reduces it to 15% under the double-taxation treaty",
			"instrument", instrument)
	}
}
