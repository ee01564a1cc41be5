package processors

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/encoding/charmap"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/utils"
)

// currencyColumns maps ISO currency codes to the column identifiers used in
// the NBP "tabela A" archive files.
var currencyColumns = map[string]string{
	"USD": "1USD",
	"EUR": "1EUR",
	"GBP": "1GBP",
	"DKK": "1DKK",
}

const archiveDateColumn = "data"

// archiveTable is one parsed NBP archive file: date (YYYYMMDD) -> column
// identifier -> raw decimal-comma rate string.
type archiveTable map[string]map[string]string

// RateTable answers historical exchange-rate lookups against a set of NBP
// archive CSV files, with a backward business-day fallback. Parsed archives
// are memoized in the shared cache so repeated lookups do not re-read files.
type RateTable struct {
	archivePaths []string
	homeCurrency string
	lookbackDays int
	cache        *cache.Cache
}

func NewRateTable(archivePaths []string, homeCurrency string, lookbackDays int, c *cache.Cache) *RateTable {
	return &RateTable{
		archivePaths: archivePaths,
		homeCurrency: homeCurrency,
		lookbackDays: lookbackDays,
		cache:        c,
	}
}

// RateFor returns the conversion rate from currency to the home currency on
// the given date, falling back to earlier business days within the lookback
// window. The home currency always yields 1.0 without a lookup. Currencies
// with no archive column mapping degrade to 1.0 with a warning; an exhausted
// lookback window is a fatal RateNotFoundError.
func (t *RateTable) RateFor(currency string, date time.Time) (float64, error) {
	if currency == t.homeCurrency {
		return 1.0, nil
	}

	column, ok := currencyColumns[currency]
	if !ok {
		logger.L.Warn("Currency not supported for exchange rate lookup, using 1.0", "currency", currency)
		return 1.0, nil
	}

	current := date
	for attempt := 0; attempt < t.lookbackDays; attempt++ {
		dateKey := current.Format("20060102")
		for _, path := range t.archivePaths {
			table, err := t.loadArchive(path)
			if err != nil {
				logger.L.Warn("Skipping unreadable exchange rate archive", "path", path, "error", err)
				continue
			}
			row, found := table[dateKey]
			if !found {
				continue
			}
			value, found := row[column]
			if !found || value == "" {
				continue
			}
			rate, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
			if err != nil {
				logger.L.Warn("Invalid exchange rate value in archive", "path", path, "currency", currency, "date", dateKey, "value", value)
				continue
			}
			if attempt > 0 {
				logger.L.Info("Exchange rate taken from earlier business day",
					"currency", currency,
					"requestedDate", date.Format("2006-01-02"),
					"matchedDate", current.Format("2006-01-02"),
					"rate", rate)
			}
			return rate, nil
		}
		current = utils.PreviousBusinessDay(current)
	}

	err := &models.RateNotFoundError{Currency: currency, Date: date, LookbackDays: t.lookbackDays}
	logger.L.Error("Exchange rate lookup exhausted lookback window", "currency", currency, "date", date.Format("2006-01-02"), "lookbackDays", t.lookbackDays)
	return 0, err
}

// loadArchive parses one NBP archive CSV (semicolon-separated, ISO-8859-1)
// into an archiveTable, memoizing the result per file path.
func (t *RateTable) loadArchive(path string) (archiveTable, error) {
	cacheKey := "rate_archive_" + path
	if t.cache != nil {
		if cached, found := t.cache.Get(cacheKey); found {
			return cached.(archiveTable), nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exchange rate archive '%s': %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(file))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of archive '%s': %w", path, err)
	}

	dateIdx := -1
	columnIdx := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == archiveDateColumn {
			dateIdx = i
			continue
		}
		for _, col := range currencyColumns {
			if name == col {
				columnIdx[col] = i
			}
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("archive '%s' has no '%s' column", path, archiveDateColumn)
	}

	table := make(archiveTable)
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if dateIdx >= len(record) {
			continue
		}
		dateKey := strings.TrimSpace(record[dateIdx])
		if dateKey == "" {
			continue
		}
		row := make(map[string]string, len(columnIdx))
		for col, idx := range columnIdx {
			if idx < len(record) {
				row[col] = strings.TrimSpace(record[idx])
			}
		}
		table[dateKey] = row
	}

	if t.cache != nil {
		t.cache.Set(cacheKey, table, cache.NoExpiration)
	}
	logger.L.Debug("Parsed exchange rate archive", "path", path, "rows", len(table))
	return table, nil
}
