package processors

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"

	"github.com/username/dividendtax/backend/src/models"
)

// writeArchive drops a minimal NBP-style archive file into dir. The real files
// are ISO-8859-1; ASCII content is identical in both encodings.
func writeArchive(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const archiveHeader = "data;1USD;1EUR;1GBP;1DKK\n"

func newTestRateTable(t *testing.T, rows string) *RateTable {
	t.Helper()
	dir := t.TempDir()
	path := writeArchive(t, dir, "archiwum_tab_a_2023.csv", archiveHeader+rows)
	c := cache.New(time.Minute, time.Minute)
	return NewRateTable([]string{path}, "PLN", 10, c)
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d
}

func TestRateForDirectHit(t *testing.T) {
	table := newTestRateTable(t, "20230711;4,1512;4,5678;5,2345;0,5567\n")

	rate, err := table.RateFor("USD", day(t, "2023-07-11"))
	require.NoError(t, err)
	require.InDelta(t, 4.1512, rate, 1e-9)

	rate, err = table.RateFor("EUR", day(t, "2023-07-11"))
	require.NoError(t, err)
	require.InDelta(t, 4.5678, rate, 1e-9)
}

func TestRateForHomeCurrencyIsIdentity(t *testing.T) {
	table := newTestRateTable(t, "")

	rate, err := table.RateFor("PLN", day(t, "2023-07-11"))
	require.NoError(t, err)
	require.Equal(t, 1.0, rate)
}

func TestRateForWeekendFallsBackToFriday(t *testing.T) {
	// 2023-07-15 is a Saturday; the archive only has Friday the 14th.
	table := newTestRateTable(t, "20230714;4,0000;4,5000;5,0000;0,5500\n")

	rate, err := table.RateFor("USD", day(t, "2023-07-15"))
	require.NoError(t, err)
	require.InDelta(t, 4.0, rate, 1e-9)
}

func TestRateForUnsupportedCurrencyDegradesToOne(t *testing.T) {
	table := newTestRateTable(t, "20230711;4,1512;4,5678;5,2345;0,5567\n")

	rate, err := table.RateFor("CHF", day(t, "2023-07-11"))
	require.NoError(t, err)
	require.Equal(t, 1.0, rate)
}

func TestRateForExhaustedLookbackFails(t *testing.T) {
	table := newTestRateTable(t, "20230101;4,1512;4,5678;5,2345;0,5567\n")

	_, err := table.RateFor("USD", day(t, "2023-07-11"))
	require.Error(t, err)

	var rateErr *models.RateNotFoundError
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, "USD", rateErr.Currency)
	require.Equal(t, 10, rateErr.LookbackDays)
	require.Contains(t, rateErr.Remediation(), "archiwum_tab_a_2023.csv")
}

func TestRateForSearchesAllArchives(t *testing.T) {
	dir := t.TempDir()
	old := writeArchive(t, dir, "archiwum_tab_a_2022.csv", archiveHeader+"20221230;4,4000;4,6900;5,2600;0,6300\n")
	recent := writeArchive(t, dir, "archiwum_tab_a_2023.csv", archiveHeader+"20230711;4,1512;4,5678;5,2345;0,5567\n")
	table := NewRateTable([]string{recent, old}, "PLN", 10, nil)

	// 2023-01-02 is a Monday; the lookback crosses the year boundary into the
	// older archive.
	rate, err := table.RateFor("USD", day(t, "2023-01-02"))
	require.NoError(t, err)
	require.InDelta(t, 4.4, rate, 1e-9)
}
