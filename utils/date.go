package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string. Empty input means "today".
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return Today(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Today returns the current calendar date truncated to midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateToDate drops the time-of-day component.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatAmount renders a currency amount with thousand separators,
// e.g. 1250500.50 -> "1.250.500,50". Used in notification messages.
func FormatAmount(amount decimal.Decimal) string {
	formatted := amount.StringFixed(2)

	neg := strings.HasPrefix(formatted, "-")
	formatted = strings.TrimPrefix(formatted, "-")

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	out := strings.Join(result, ".") + "," + decimalPart
	if neg {
		out = "-" + out
	}
	return out
}
