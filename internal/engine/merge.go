package engine

import (
	"marketpulse/internal/domain"
)

// Merge refreshes market rows from the latest ticker map.
//
// For each row with a matching ticker, a new row is produced with Price
// formatted at the row's precision and ChangePercent at two decimals.
// Rows without a matching ticker are passed through pointer-identical so
// downstream equality checks stay cheap. Order and length are always
// preserved; the engine never reorders, inserts, or deletes — listing and
// delisting happen on the store, not here. A ticker for a symbol not
// present in rows is discarded.
//
// Pure and synchronous: the caller owns dispatching this off the
// consumption goroutine (see Worker).
func Merge(rows []*domain.MarketRow, tickers domain.TickerMap) []*domain.MarketRow {
	if len(tickers) == 0 {
		return rows
	}

	out := make([]*domain.MarketRow, len(rows))
	for i, row := range rows {
		tick, ok := tickers[row.Symbol]
		if !ok {
			out[i] = row
			continue
		}

		updated := *row
		updated.Price = tick.Last.StringFixed(int32(row.PrecisionOrDefault()))
		updated.ChangePercent = tick.Change.StringFixed(2)
		out[i] = &updated
	}
	return out
}
