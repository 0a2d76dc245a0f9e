package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order. Month-first is preferred for slash dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"2.1.2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"20060102",
	"2006-01",
}

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// parseDate parses a cell into a timestamp. Values without a zone are UTC.
// Plain numbers are read as Excel serial dates.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 1 && v < maxExcelSerial+1 {
		days := math.Floor(v)
		frac := v - days
		t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(math.Round(frac*86400)) * time.Second)
		return t, true
	}
	return time.Time{}, false
}

// Money cells outside these bounds are treated as unparseable. Arithmetic
// rescales operands to a common exponent, so an unbounded exponent costs
// unbounded memory.
const (
	maxMoneyScale  = 30
	maxMoneyDigits = 30
)

// maxQuantity keeps summed units of a full-size input within int64.
const maxQuantity = 1_000_000_000

// parseMoney parses a decimal amount, returning zero when the cell is empty,
// unparseable or out of range. Negative amounts are kept.
func parseMoney(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp < -maxMoneyScale || exp > maxMoneyScale || d.NumDigits() > maxMoneyDigits {
		return decimal.Zero
	}
	return d
}

// parseQuantity parses a unit count. Fractional values are truncated; empty,
// unparseable, non-positive or out-of-range values become 1.
func parseQuantity(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return atLeastOne(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxQuantity {
		return 1
	}
	return atLeastOne(int64(f))
}

func atLeastOne(v int64) int64 {
	if v < 1 || v > maxQuantity {
		return 1
	}
	return v
}
