package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/playwright-community/playwright-go"

	"github.com/username/dividendtax/backend/src/config"
	"github.com/username/dividendtax/backend/src/logger"
)

// archiveLinkPattern matches yearly "tabela A" CSV links on the NBP archive
// page and captures the year.
var archiveLinkPattern = regexp.MustCompile(`archiwum_tab_a_(\d{4})\.csv`)

type fetchServiceImpl struct {
	cfg *config.AppConfig
}

func NewFetchService(cfg *config.AppConfig) FetchService {
	return &fetchServiceImpl{cfg: cfg}
}

// FetchArchives downloads the most recent `years` yearly exchange-rate
// archives from the NBP website into the data directory. The page is rendered
// client-side, so a headless browser is driven instead of plain HTTP.
func (s *fetchServiceImpl) FetchArchives(years int) error {
	if years < 1 {
		years = 1
	}
	if err := os.MkdirAll(s.cfg.DataDirectory, 0o755); err != nil {
		return fmt.Errorf("creating data directory '%s': %w", s.cfg.DataDirectory, err)
	}

	logger.L.Info("Fetching exchange rate archives", "url", s.cfg.NBPArchiveURL, "years", years)

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	if _, err := page.Goto(s.cfg.NBPArchiveURL); err != nil {
		return fmt.Errorf("failed to navigate to '%s': %w", s.cfg.NBPArchiveURL, err)
	}

	links, err := page.Locator("a[href$='.csv']").All()
	if err != nil {
		return fmt.Errorf("failed to list archive links: %w", err)
	}

	// year -> locator, keeping the latest `years` entries.
	byYear := make(map[string]playwright.Locator)
	var yearKeys []string
	for _, link := range links {
		href, err := link.GetAttribute("href")
		if err != nil || href == "" {
			continue
		}
		match := archiveLinkPattern.FindStringSubmatch(href)
		if match == nil {
			continue
		}
		if _, seen := byYear[match[1]]; !seen {
			byYear[match[1]] = link
			yearKeys = append(yearKeys, match[1])
		}
	}
	if len(yearKeys) == 0 {
		return fmt.Errorf("no yearly archive links found on '%s'", s.cfg.NBPArchiveURL)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(yearKeys)))
	if len(yearKeys) > years {
		yearKeys = yearKeys[:years]
	}

	for _, year := range yearKeys {
		link := byYear[year]
		download, err := page.ExpectDownload(func() error {
			return link.Click()
		})
		if err != nil {
			return fmt.Errorf("downloading archive for year %s: %w", year, err)
		}
		target := filepath.Join(s.cfg.DataDirectory, fmt.Sprintf("archiwum_tab_a_%s.csv", year))
		if err := download.SaveAs(target); err != nil {
			return fmt.Errorf("saving archive for year %s to '%s': %w", year, target, err)
		}
		logger.L.Info("Downloaded exchange rate archive", "year", year, "path", target)
	}

	return nil
}
