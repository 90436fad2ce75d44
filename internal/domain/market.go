package domain

import "strings"

// DefaultPrecision is the display precision used when a market does not
// declare one of its own.
const DefaultPrecision = 6

// MarketRow is the display record for one tracked trading pair.
// Price and ChangePercent are display-formatted strings, not raw floats,
// so trailing zeros render identically across repeated updates.
type MarketRow struct {
	Symbol        string `json:"symbol"`
	Precision     int    `json:"precision"`
	Price         string `json:"price"`
	ChangePercent string `json:"change_percent"`
}

// PrecisionOrDefault returns the row's display precision, falling back to
// DefaultPrecision for unset or negative values.
func (r *MarketRow) PrecisionOrDefault() int {
	if r.Precision <= 0 {
		return DefaultPrecision
	}
	return r.Precision
}

// ChangeDirection returns "positive", "negative", or "neutral" based on the
// formatted change percent.
func (r *MarketRow) ChangeDirection() string {
	s := strings.TrimSpace(r.ChangePercent)
	switch {
	case s == "" || isZeroDecimal(s):
		return "neutral"
	case strings.HasPrefix(s, "-"):
		return "negative"
	default:
		return "positive"
	}
}

func isZeroDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0', '.', '-', '+':
		default:
			return false
		}
	}
	return true
}
