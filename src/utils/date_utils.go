package utils

import (
	"log"
	"time"
)

// StatementDateFormat is the timestamp layout used by XTB cash-operation
// exports ("02.01.2006 15:04:05").
const StatementDateFormat = "02.01.2006 15:04:05"

// ParseStatementDate parses an XTB statement timestamp and truncates it to a
// date. Logs an error and returns zero time if parsing fails.
func ParseStatementDate(dateStr string) time.Time {
	t, err := time.Parse(StatementDateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing date '%s' with format '%s': %v. Returning zero time.", dateStr, StatementDateFormat, err)
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PreviousBusinessDay subtracts one calendar day, then keeps subtracting
// while the result falls on Saturday or Sunday.
func PreviousBusinessDay(date time.Time) time.Time {
	prev := date.AddDate(0, 0, -1)
	for prev.Weekday() == time.Saturday || prev.Weekday() == time.Sunday {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}
