package domain

import (
	"time"
)

// DateFormat is the wire and cache representation of rate dates.
const DateFormat = "2006-01-02"

// SentinelDate is returned as the boundary date when the store holds no rates
// at all. It formats as "0000-01-01".
var SentinelDate = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)

// RateRecord is one stored fact: the value of one unit of the base currency
// expressed in CurrencyCode on DateRecorded.
type RateRecord struct {
	DateRecorded time.Time
	CurrencyCode string
	Rate         float64
}

func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}
