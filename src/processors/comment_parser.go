package processors

import (
	"regexp"
	"strconv"
	"strings"
)

// Comment parsing for XTB dividend annotations. Two line shapes occur per
// corporate action, e.g.:
//
//	"SBUX.US USD 0.5700/ SHR"   (payment line)
//	"SBUX.US USD WHT 15%"       (withholding line)
//
// Polish statements also use "0.57 USD/SHR" and "PLN WHT 19%" variants.
var (
	whtCurrencyRe  = regexp.MustCompile(`([A-Z]{3})\s+WHT`)
	whtPerShareRe  = regexp.MustCompile(`([\d.]+)\s*/\s*SHR`)
	ccyAmountShrRe = regexp.MustCompile(`([A-Z]{3}) ([\d.]+)/ SHR`)
	amountCcyShrRe = regexp.MustCompile(`([\d.]+) ([A-Z]{3})/SHR`)
	bareNumberRe   = regexp.MustCompile(`([\d.]+)`)
	whtPctRe       = regexp.MustCompile(`WHT\s*(\d+(?:\.\d+)?)%`)
	anyPctRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// ParseDividendComment extracts the per-share dividend amount and currency
// from a comment string. Either part may be absent: hasAmount reports whether
// a usable amount was found, currency is "" when none was extracted. The
// function is pure and never fails; absence is the result, not an error.
func ParseDividendComment(comment string) (amount float64, currency string, hasAmount bool) {
	// Withholding lines name the currency but usually carry no amount.
	if m := whtCurrencyRe.FindStringSubmatch(comment); m != nil {
		currency = m[1]
		if dm := whtPerShareRe.FindStringSubmatch(comment); dm != nil {
			if v, err := strconv.ParseFloat(dm[1], 64); err == nil {
				return v, currency, true
			}
		}
		return 0, currency, false
	}

	if m := ccyAmountShrRe.FindStringSubmatch(comment); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			return v, m[1], true
		}
	}

	if m := amountCcyShrRe.FindStringSubmatch(comment); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, m[2], true
		}
	}

	// Fall back to the first numeric token; currency is left for the
	// ticker-suffix default. A lone "." or a run of dots is not a number.
	if m := bareNumberRe.FindStringSubmatch(comment); m != nil {
		numStr := m[1]
		if numStr == "." || strings.ReplaceAll(numStr, ".", "") == "" {
			return 0, "", false
		}
		if v, err := strconv.ParseFloat(numStr, 64); err == nil {
			return v, "", true
		}
	}

	return 0, "", false
}

// ParseWithholdingPct extracts a withholding tax percentage from a comment
// string and returns it as a fraction (e.g. 0.15 for "WHT 15%"). The "WHT N%"
// form is preferred over any bare "N%" token. Pure; returns ok=false when no
// percentage is present.
func ParseWithholdingPct(comment string) (float64, bool) {
	if m := whtPctRe.FindStringSubmatch(comment); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v / 100, true
		}
	}
	if m := anyPctRe.FindStringSubmatch(comment); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v / 100, true
		}
	}
	return 0, false
}
