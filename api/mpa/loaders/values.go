package loaders

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MarginSight/api/constants"
)

// cleanAmount strips thousands separators and surrounding whitespace so the
// remainder parses as a plain decimal.
func cleanAmount(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	return strings.TrimSpace(s)
}

// parseAmount parses a currency or hours cell. Blank cells parse to zero;
// parentheses denote negatives in accounting exports.
func parseAmount(s string) (decimal.Decimal, bool) {
	v := cleanAmount(normalizeCell(s))
	if v == "" || v == "-" {
		return decimal.Zero, true
	}
	neg := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		neg = true
		v = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

var dateLayouts = []string{
	constants.DateFormat, "2006/01/02",
	"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006",
	"02-Jan-06", "02-Jan-2006", "2-Jan-2006",
	constants.DateFormatISO, "2006-01-02 15:04:05",
	"01/02/06", "1/2/06",
}

// parseDate tries the known date layouts, then falls back to Excel serial
// dates (days since 1899-12-30 with the 1900 leap-year bug).
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date string")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return parseExcelSerialDate(s)
}

// parseExcelSerialDate converts an Excel serial date (possibly with fractional
// day time) into a time.Time. The 1899-12-30 epoch already accounts for
// Excel's phantom 1900-02-29 on modern serials.
func parseExcelSerialDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty excel serial")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	days := int(f)
	frac := f - float64(days)
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	d := base.AddDate(0, 0, days)
	d = d.Add(time.Duration(frac * float64(24*time.Hour)))
	return d, nil
}

// monthRange resolves a period identifier like "November2025" into the first
// and last day of that month.
func monthRange(month string) (time.Time, time.Time, error) {
	name, year := splitMonthName(month)
	if name == "" || year == 0 {
		return time.Time{}, time.Time{}, errors.New("invalid month format, expected e.g. 'November2025'")
	}
	var t time.Time
	var err error
	if t, err = time.Parse("January", name); err != nil {
		if t, err = time.Parse("Jan", name); err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid month name: " + name)
		}
	}
	start := time.Date(year, t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

func splitMonthName(month string) (string, int) {
	month = strings.TrimSpace(month)
	i := 0
	for i < len(month) && !isDigit(month[i]) {
		i++
	}
	if i == 0 || i == len(month) {
		return "", 0
	}
	year, err := strconv.Atoi(month[i:])
	if err != nil {
		return "", 0
	}
	return month[:i], year
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
