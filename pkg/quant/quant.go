package quant

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PriceMicros represents price multiplied by 1,000,000 (10^6).
// E.g., 1.23 USD = 1,230,000 PriceMicros.
type PriceMicros int64

// QtySats represents quantity multiplied by 100,000,000 (10^8).
// E.g., 1.0 BTC = 100,000,000 QtySats.
type QtySats int64

const (
	PriceScale = 1000000
	QtyScale   = 100000000

	// PercentScale expresses percentages in micros: 1% = 1,000,000.
	PercentScale = PriceScale
)

func (p PriceMicros) String() string {
	return formatScaled(int64(p), 6)
}

func (q QtySats) String() string {
	return formatScaled(int64(q), 8)
}

// ParsePriceMicros parses a decimal string (e.g. "42000.12") into PriceMicros.
// No float64 on the parse path.
func ParsePriceMicros(s string) (PriceMicros, error) {
	v, err := parseFixedPoint(s, 6)
	return PriceMicros(v), err
}

// ParseQtySats parses a decimal string (e.g. "0.00123") into QtySats.
func ParseQtySats(s string) (QtySats, error) {
	v, err := parseFixedPoint(s, 8)
	return QtySats(v), err
}

// FormatPercentMicros renders a percent-micros value with two decimal places,
// e.g. 30,000,000 -> "30.00". Truncates extra precision.
func FormatPercentMicros(m int64) string {
	s := formatScaled(m, 6)
	return s[:len(s)-4]
}

// formatScaled renders an integer scaled by 10^decimals as a decimal string
// with exactly `decimals` fractional digits.
func formatScaled(v int64, decimals int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	scale := int64(1)
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return fmt.Sprintf("%s%d.%0*d", sign, v/scale, decimals, v%scale)
}

// parseFixedPoint parses a string representation of a decimal into an integer
// scaled by 10^decimals. Example: "1.23", decimals=6 -> 1230000.
// Extra fractional precision is truncated (floor toward zero).
func parseFixedPoint(s string, decimals int) (int64, error) {
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, errors.New("invalid decimal format: multiple dots")
	}

	integerPart := parts[0]
	fractionalPart := ""
	if len(parts) == 2 {
		fractionalPart = parts[1]
	}

	sign := int64(1)
	if strings.HasPrefix(integerPart, "-") {
		sign = -1
		integerPart = integerPart[1:]
	}

	intVal, err := strconv.ParseInt(integerPart, 10, 64)
	if err != nil {
		if integerPart == "" {
			intVal = 0 // ".5" case
		} else {
			return 0, err
		}
	}

	if len(fractionalPart) > decimals {
		fractionalPart = fractionalPart[:decimals]
	} else {
		fractionalPart = fractionalPart + strings.Repeat("0", decimals-len(fractionalPart))
	}

	fracVal, err := strconv.ParseInt(fractionalPart, 10, 64)
	if err != nil {
		return 0, err
	}

	multiplier := int64(1)
	for i := 0; i < decimals; i++ {
		multiplier *= 10
	}

	return (intVal*multiplier + fracVal) * sign, nil
}
