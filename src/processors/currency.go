package processors

import "strings"

// USListedInPoland is a US company cross-listed on the Warsaw exchange: its
// dividends are paid in USD with 0% withholding at source despite the .PL
// suffix.
const USListedInPoland = "ASB.PL"

// eurozoneSuffixes are the exchange suffixes that resolve to EUR when a
// comment names no currency.
var eurozoneSuffixes = []string{".FR", ".DE", ".IE", ".NL", ".ES", ".IT", ".BE", ".AT", ".FI", ".PT"}

// defaultWithholdingRates encodes double-taxation-treaty withholding defaults
// by exchange suffix. It is the silent fallback whenever a comment lacks
// explicit withholding info, so the values must match the treaty rates:
// US 15% (with W8BEN), PL 19% (Belka), DK 15%, UK 0%, IE 15%, FR 0%.
var defaultWithholdingRates = []struct {
	suffix string
	rate   float64
}{
	{".US", 0.15},
	{".PL", 0.19},
	{".DK", 0.15},
	{".UK", 0.0},
	{".IE", 0.15},
	{".FR", 0.0},
}

// DetermineCurrency resolves the dividend currency for an instrument. An
// explicitly extracted currency always wins; otherwise the exchange suffix
// decides, defaulting to USD for unrecognized suffixes.
func DetermineCurrency(instrument, extractedCurrency string) string {
	if extractedCurrency != "" {
		return extractedCurrency
	}

	if strings.Contains(instrument, USListedInPoland) {
		return "USD"
	}

	switch {
	case strings.Contains(instrument, ".US"):
		return "USD"
	case strings.Contains(instrument, ".PL"):
		return "PLN"
	case strings.Contains(instrument, ".DK"):
		return "DKK"
	case strings.Contains(instrument, ".UK"):
		return "GBP"
	}

	for _, suffix := range eurozoneSuffixes {
		if strings.Contains(instrument, suffix) {
			return "EUR"
		}
	}

	return "USD"
}

// DefaultWithholdingRate returns the treaty withholding rate applied at
// source for an instrument when no explicit percentage was annotated.
func DefaultWithholdingRate(instrument string) float64 {
	if strings.Contains(instrument, USListedInPoland) {
		return 0.0
	}
	for _, entry := range defaultWithholdingRates {
		if strings.Contains(instrument, entry.suffix) {
			return entry.rate
		}
	}
	return 0.0
}
