package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/username/dividendtax/backend/src/models"
)

// testRates covers 2023-07-11, the D-1 business day for events dated
// 2023-07-12 (a Wednesday).
func testRates(t *testing.T) *RateTable {
	t.Helper()
	return newTestRateTable(t, "20230711;4,0000;4,5000;5,0000;0,5500\n")
}

func dividendGroup(net float64, comments ...string) models.TransactionGroup {
	return models.TransactionGroup{
		Date:       time.Date(2023, 7, 12, 0, 0, 0, 0, time.UTC),
		Instrument: "SBUX.US",
		NetAmount:  net,
		Comments:   comments,
	}
}

func TestReconcileForeignStatement(t *testing.T) {
	// Statement in USD, home currency PLN: net amount is already in the
	// dividend currency, so no share-rate conversion applies.
	r := NewDividendReconciler(testRates(t), "USD", "PLN", 0.19)

	group := dividendGroup(5.7, "SBUX.US USD 0.5700/ SHR", "SBUX.US USD WHT 15%")
	group.WithholdingRaw = -0.86

	event, err := r.Reconcile(group)
	require.NoError(t, err)

	require.Equal(t, 10, event.Shares)
	require.InDelta(t, 0.57, event.PerShareAmount, 1e-9)
	require.InDelta(t, 5.7, event.NetDividend, 1e-9)
	require.Equal(t, "USD", event.Currency)
	require.InDelta(t, 0.15, event.WithholdingPct, 1e-9)
	// Foreign statements carry the withheld amount as its own row.
	require.InDelta(t, 0.86, event.WithholdingAmount, 1e-9)
	require.Equal(t, time.Date(2023, 7, 11, 0, 0, 0, 0, time.UTC), event.DateDMinus1)
	require.InDelta(t, 4.0, event.FxRateDMinus1, 1e-9)
	require.False(t, event.FxMasked)
	require.False(t, event.Degraded)
}

func TestReconcileHomeStatementConvertsShares(t *testing.T) {
	// Statement in PLN, dividend in USD: the group total is in PLN and must be
	// divided through the D-1 rate to recover the share count.
	r := NewDividendReconciler(testRates(t), "PLN", "PLN", 0.19)

	group := dividendGroup(22.8, "SBUX.US USD 0.5700/ SHR", "SBUX.US USD WHT 15%")

	event, err := r.Reconcile(group)
	require.NoError(t, err)

	require.Equal(t, 10, event.Shares) // 22.8 / (0.57 * 4.0)
	require.InDelta(t, 5.7, event.NetDividend, 1e-9)
	// No withholding row on home statements: derived from Net = Gross*(1-pct).
	require.InDelta(t, 5.7/0.85*0.15, event.WithholdingAmount, 1e-9)
}

func TestReconcileShareCountMismatchFails(t *testing.T) {
	r := NewDividendReconciler(testRates(t), "USD", "PLN", 0.19)

	// 5.9 / 0.57 = 10.35 shares: not an integer within tolerance.
	group := dividendGroup(5.9, "SBUX.US USD 0.5700/ SHR")

	_, err := r.Reconcile(group)
	require.Error(t, err)

	var mismatch *models.ShareCountMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "SBUX.US", mismatch.Instrument)
}

func TestReconcileDegradedEventKeepsRawTotal(t *testing.T) {
	r := NewDividendReconciler(testRates(t), "USD", "PLN", 0.19)

	group := dividendGroup(5.7, "SBUX.US corporate action")

	event, err := r.Reconcile(group)
	require.NoError(t, err)
	require.True(t, event.Degraded)
	require.Zero(t, event.Shares)
	require.InDelta(t, 5.7, event.NetDividend, 1e-9)
	// Suffix defaults still apply without comment annotations.
	require.Equal(t, "USD", event.Currency)
	require.InDelta(t, 0.15, event.WithholdingPct, 1e-9)
}

func TestReconcileMasksFxWhenWithholdingCoversHomeRate(t *testing.T) {
	r := NewDividendReconciler(testRates(t), "USD", "PLN", 0.19)

	group := dividendGroup(5.7, "SBUX.US USD 0.5700/ SHR", "SBUX.US USD WHT 30%")

	event, err := r.Reconcile(group)
	require.NoError(t, err)
	require.True(t, event.FxMasked)
	// The rate is still resolved for the totals computation.
	require.InDelta(t, 4.0, event.FxRateDMinus1, 1e-9)
}

func TestReconcileHomeCurrencyDividend(t *testing.T) {
	r := NewDividendReconciler(testRates(t), "PLN", "PLN", 0.19)

	group := models.TransactionGroup{
		Date:       time.Date(2023, 7, 12, 0, 0, 0, 0, time.UTC),
		Instrument: "PKN.PL",
		NetAmount:  110.0,
		Comments:   []string{"PKN.PL PLN 5.5000/ SHR"},
	}

	event, err := r.Reconcile(group)
	require.NoError(t, err)
	require.Equal(t, 20, event.Shares)
	require.Equal(t, "PLN", event.Currency)
	require.Equal(t, 1.0, event.FxRateDMinus1)
	// Polish 19% withholding equals the home rate, so fx display is masked.
	require.True(t, event.FxMasked)
}
