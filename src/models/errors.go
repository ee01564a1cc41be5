package models

import (
	"fmt"
	"time"
)

// MissingFieldError reports a required field absent from grouped or
// reconciled data. Fatal: the run aborts without writing output.
type MissingFieldError struct {
	Field      string
	Instrument string
	Date       time.Time
}

func (e *MissingFieldError) Error() string {
	if e.Instrument == "" {
		return fmt.Sprintf("required field '%s' is missing", e.Field)
	}
	return fmt.Sprintf("required field '%s' is missing for instrument '%s' on %s",
		e.Field, e.Instrument, e.Date.Format("2006-01-02"))
}

// RateNotFoundError reports an exhausted exchange-rate lookback window.
// Fatal for the run: a silently wrong rate would corrupt tax liability.
type RateNotFoundError struct {
	Currency     string
	Date         time.Time
	LookbackDays int
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no exchange rate found for %s on %s or the previous %d business days",
		e.Currency, e.Date.Format("2006-01-02"), e.LookbackDays)
}

// Remediation names the external action that would resolve the failure.
func (e *RateNotFoundError) Remediation() string {
	return fmt.Sprintf("download the NBP archive file 'archiwum_tab_a_%d.csv' covering %s",
		e.Date.Year(), e.Date.Format("2006-01-02"))
}

// MalformedAmountError reports a numeric field that failed to parse.
type MalformedAmountError struct {
	Value      string
	Instrument string
	Date       time.Time
	Err        error
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount '%s' for instrument '%s' on %s: %v",
		e.Value, e.Instrument, e.Date.Format("2006-01-02"), e.Err)
}

func (e *MalformedAmountError) Unwrap() error { return e.Err }

// ShareCountMismatchError reports a reconstructed share count that deviates
// from an integer by more than the accepted tolerance. This indicates either
// a parsing bug or inconsistent source data, so the run fails loudly instead
// of rounding.
type ShareCountMismatchError struct {
	Instrument string
	Date       time.Time
	Shares     float64
}

func (e *ShareCountMismatchError) Error() string {
	return fmt.Sprintf("reconstructed share count %.4f for instrument '%s' on %s does not round to an integer",
		e.Shares, e.Instrument, e.Date.Format("2006-01-02"))
}
