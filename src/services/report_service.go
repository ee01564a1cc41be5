package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
	"github.com/username/dividendtax/backend/src/parsers"
	"github.com/username/dividendtax/backend/src/processors"
)

const (
	ckReportResult = "res_dividend_report_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// archiveGlob matches the NBP "tabela A" yearly archive files inside the data
// directory.
const archiveGlob = "archiwum_tab_a_*.csv"

type reportServiceImpl struct {
	cfg         *config.AppConfig
	reportCache *cache.Cache
}

func NewReportService(cfg *config.AppConfig, reportCache *cache.Cache) ReportService {
	return &reportServiceImpl{
		cfg:         cfg,
		reportCache: reportCache,
	}
}

// GenerateReport runs parse -> filter -> group -> reconcile -> tax -> assemble
// for one statement file. Results are cached per input path; a run that fails
// at any stage produces no partial output.
func (s *reportServiceImpl) GenerateReport(inputPath, source string) (*ReportResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("GenerateReport START", "input", inputPath, "source", source)

	cacheKey := fmt.Sprintf(ckReportResult, inputPath)
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			logger.L.Debug("GenerateReport cache hit", "input", inputPath)
			return cached.(*ReportResult), nil
		}
	}

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening statement file '%s': %w", inputPath, err)
	}
	defer file.Close()

	rawTxs, statementCurrency, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if statementCurrency == "" {
		statementCurrency = s.cfg.HomeCurrency
		logger.L.Warn("Statement does not declare a currency, assuming home currency",
			"assumed", statementCurrency)
	}

	grouper := processors.NewTransactionGrouper()
	dividendRows := grouper.FilterDividendRows(rawTxs)
	if len(dividendRows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDividendRows, inputPath)
	}
	groups := grouper.Group(dividendRows)

	archivePaths, err := s.discoverArchives()
	if err != nil {
		return nil, err
	}
	rates := processors.NewRateTable(archivePaths, s.cfg.HomeCurrency, s.cfg.RateLookbackDays, s.reportCache)

	reconciler := processors.NewDividendReconciler(rates, statementCurrency, s.cfg.HomeCurrency, s.cfg.HomeTaxRate)
	events := make([]models.DividendEvent, 0, len(groups))
	for _, group := range groups {
		event, err := reconciler.Reconcile(group)
		if err != nil {
			return nil, fmt.Errorf("reconciling %s on %s: %w",
				group.Instrument, group.Date.Format("2006-01-02"), err)
		}
		events = append(events, event)
	}

	taxProcessor := processors.NewTaxProcessor(s.cfg.HomeCurrency, s.cfg.HomeTaxRate)
	events = taxProcessor.Apply(events, statementCurrency)

	reportProcessor := processors.NewReportProcessor(s.cfg.HomeCurrency)
	report := reportProcessor.Assemble(events, statementCurrency)

	result := &ReportResult{Report: report, Events: events}
	if s.reportCache != nil {
		s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	}

	logger.L.Info("GenerateReport END",
		"input", inputPath,
		"events", len(events),
		"durationMs", time.Since(overallStartTime).Milliseconds())
	return result, nil
}

// discoverArchives lists the yearly NBP archive files in the data directory,
// newest year first so lookups hit the most likely file early.
func (s *reportServiceImpl) discoverArchives() ([]string, error) {
	pattern := filepath.Join(s.cfg.DataDirectory, archiveGlob)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing exchange rate archives '%s': %w", pattern, err)
	}
	if len(paths) == 0 {
		logger.L.Warn("No exchange rate archive files found; only home-currency dividends will reconcile",
			"pattern", pattern)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}
