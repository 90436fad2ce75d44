package market

import (
	"strings"

	"marketpulse/internal/domain"
)

// FilterRows returns the rows whose symbol contains query, case-insensitive,
// preserving order. An empty query returns the input slice itself: identity
// passthrough, no allocation. Pure and stateless; re-evaluated on every
// store read.
func FilterRows(rows []*domain.MarketRow, query string) []*domain.MarketRow {
	if query == "" {
		return rows
	}

	needle := strings.ToLower(query)
	out := make([]*domain.MarketRow, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Symbol), needle) {
			out = append(out, r)
		}
	}
	return out
}
