package models

import "time"

// TransactionKind is the closed set of transaction types the pipeline cares
// about. Localized statement labels are mapped onto it at the import boundary
// so downstream logic never branches on raw locale strings.
type TransactionKind int

const (
	KindOther TransactionKind = iota
	KindDividend
	KindWithholdingTax
)

func (k TransactionKind) String() string {
	switch k {
	case KindDividend:
		return "DIVIDEND"
	case KindWithholdingTax:
		return "WITHHOLDING_TAX"
	default:
		return "OTHER"
	}
}

var kindLabels = map[string]TransactionKind{
	"Dividend":            KindDividend,
	"Dywidenda":           KindDividend,
	"DIVIDENT":            KindDividend,
	"Withholding Tax":     KindWithholdingTax,
	"Podatek od dywidend": KindWithholdingTax,
}

// KindFromLabel maps a statement type label (English or Polish) to a
// TransactionKind. Unknown or empty labels map to KindOther.
func KindFromLabel(label string) TransactionKind {
	if kind, ok := kindLabels[label]; ok {
		return kind
	}
	return KindOther
}

// RawTransaction represents a single cash-operation row from the broker
// statement after import. Immutable once produced by the parser.
type RawTransaction struct {
	Date       time.Time `json:"date"`
	Instrument string    `json:"instrument"`
	Kind       TransactionKind
	Amount     float64 `json:"amount"`
	Comment    string  `json:"comment"`
}

// TransactionGroup collects all dividend-related rows for one
// (date, instrument) pair. Both the payment and the withholding comment lines
// survive into the group because reconciliation searches all comments for
// tax-rate annotations.
type TransactionGroup struct {
	Date           time.Time
	Instrument     string
	NetAmount      float64 // sum of positive dividend amounts
	WithholdingRaw float64 // sum of withholding rows as reported (usually negative)
	Comments       []string
}

// DividendEvent is the central pipeline entity: one record per
// (date, instrument) pair, enriched progressively by each stage.
type DividendEvent struct {
	Date           time.Time `json:"date"`
	Instrument     string    `json:"instrument"`
	Shares         int       `json:"shares"`
	PerShareAmount float64   `json:"perShareAmount"`
	NetDividend    float64   `json:"netDividend"`
	Currency       string    `json:"currency"`
	WithholdingPct float64   `json:"withholdingPct"`
	// WithholdingAmount is expressed in the dividend currency.
	WithholdingAmount float64   `json:"withholdingAmount"`
	DateDMinus1       time.Time `json:"dateDMinus1"`
	// FxRateDMinus1 converts the dividend currency to the home currency on
	// the D-1 date; 1.0 when the dividend is already in the home currency.
	FxRateDMinus1 float64 `json:"fxRateDMinus1"`
	// FxMasked marks events whose foreign withholding already satisfies the
	// home obligation; D-1 display columns render "-" for them.
	FxMasked  bool    `json:"fxMasked"`
	TaxDue    float64 `json:"taxDue"`
	TaxDueNil bool    `json:"taxDueNil"` // true when no residual home tax is owed
	// Degraded marks events where no group comment yielded a usable
	// per-share amount; shares and per-share columns render "-".
	Degraded bool `json:"degraded"`
}

// ReportRow is one fully formatted output row. All monetary columns carry
// their currency suffix ("6.84 USD"); absent values render as "-".
type ReportRow struct {
	Date                string `json:"date"`
	Instrument          string `json:"instrument"`
	Shares              string `json:"shares"`
	NetDividend         string `json:"netDividend"`
	TaxCollectedAmount  string `json:"taxCollectedAmount"`
	TaxCollectedPct     string `json:"taxCollectedPct"`
	DateDMinus1         string `json:"dateDMinus1"`
	ExchangeRateDMinus1 string `json:"exchangeRateDMinus1"`
	TaxDueHome          string `json:"taxDueHome"`
}

// DividendReport is the assembled final table plus run totals.
type DividendReport struct {
	StatementCurrency string      `json:"statementCurrency"`
	HomeCurrency      string      `json:"homeCurrency"`
	Rows              []ReportRow `json:"rows"`
	// TotalTaxDue is the sum of all non-"-" per-row tax values, in the home
	// currency.
	TotalTaxDue float64 `json:"totalTaxDue"`
	// TotalNetHome is the sum of gross dividends converted to the home
	// currency minus TotalTaxDue.
	TotalNetHome float64   `json:"totalNetHome"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
