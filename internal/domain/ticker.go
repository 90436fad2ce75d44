package domain

import (
	"github.com/shopspring/decimal"
)

// RawTick is one inbound quote payload as delivered by a feed adapter.
// Fields are strings because external feeds are loosely typed; validation
// happens in Normalize, never downstream.
type RawTick struct {
	Symbol string `json:"symbol"`
	Last   string `json:"last"`
	Change string `json:"change"`
}

// TickerUpdate is one validated quote event. Ephemeral: consumed once per
// merge cycle, never stored beyond the current cycle's map.
type TickerUpdate struct {
	Symbol string
	Last   decimal.Decimal
	Change decimal.Decimal
}

// TickerMap holds the most recent update per symbol since the last merge.
// Repeated updates for the same symbol overwrite (last-write-wins).
type TickerMap map[string]TickerUpdate

// Put records an update, replacing any earlier one for the same symbol.
func (m TickerMap) Put(t TickerUpdate) {
	m[t.Symbol] = t
}

// Absorb folds another map into this one, keeping other's values on
// collision. Used when coalescing pending batches.
func (m TickerMap) Absorb(other TickerMap) {
	for sym, t := range other {
		m[sym] = t
	}
}

// Normalize converts a raw quote payload into a TickerUpdate.
// A missing symbol or non-numeric last price drops the tick (ok=false);
// a malformed single tick must never abort the rest of the batch.
// An unparsable change field coerces to zero so a price-only update still
// lands.
func Normalize(raw RawTick) (TickerUpdate, bool) {
	if raw.Symbol == "" {
		return TickerUpdate{}, false
	}

	last, err := decimal.NewFromString(raw.Last)
	if err != nil {
		return TickerUpdate{}, false
	}

	change, err := decimal.NewFromString(raw.Change)
	if err != nil {
		change = decimal.Zero
	}

	return TickerUpdate{Symbol: raw.Symbol, Last: last, Change: change}, true
}
