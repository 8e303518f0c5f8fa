package simulation

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts used for every date and timestamp column of the bronze tables
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"
)

func ts(t time.Time) string   { return t.Format(TimestampLayout) }
func date(t time.Time) string { return t.Format(DateLayout) }

// fixed formats x with exactly prec decimals
func fixed(x float64, prec int) string {
	return strconv.FormatFloat(x, 'f', prec, 64)
}

// short formats x with the fewest digits that round-trip
func short(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// money rounds a currency amount to cents
func money(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

func itoa(n int) string { return strconv.Itoa(n) }
