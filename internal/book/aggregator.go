package book

import (
	"math"

	"marketpulse/internal/domain"
	"marketpulse/pkg/quant"
	"marketpulse/pkg/safe"
)

const fullPercentMicros = 100 * quant.PercentScale

// Aggregate computes the visibility-filtered, depth-limited view of one
// order book update.
//
// Input levels are assumed pre-sorted per side (bids descending, asks
// ascending, closest-to-mid first) per the feed collaborator's contract;
// no validation happens here. A hidden side is dropped entirely. Each
// visible side is truncated to view.VisibleDepth levels (non-positive
// depth means unlimited). Cumulative sizes and the percentage split are
// computed over the filtered, truncated set only, so toggling visibility
// changes the split deterministically.
//
// Rounding policy: the bid share rounds half-up; when both sides are
// non-empty the ask share is the exact remainder, so the pair always sums
// to 100%. One empty side yields 0/100, both empty 0/0.
//
// Full recompute per update. Depth is bounded by VisibleDepth, so no
// incremental algorithm is warranted.
func Aggregate(levels []domain.BookLevel, view domain.BookView) domain.BookSnapshot {
	var snap domain.BookSnapshot

	for _, lv := range levels {
		switch lv.Side {
		case domain.Bid:
			if !view.ShowBids || truncated(len(snap.Bids), view.VisibleDepth) {
				continue
			}
			snap.Bids = append(snap.Bids, lv)
			snap.BidTotalSats = quant.QtySats(safe.SafeAdd(int64(snap.BidTotalSats), int64(lv.SizeSats)))
		case domain.Ask:
			if !view.ShowAsks || truncated(len(snap.Asks), view.VisibleDepth) {
				continue
			}
			snap.Asks = append(snap.Asks, lv)
			snap.AskTotalSats = quant.QtySats(safe.SafeAdd(int64(snap.AskTotalSats), int64(lv.SizeSats)))
		}
	}

	bid := int64(snap.BidTotalSats)
	ask := int64(snap.AskTotalSats)

	switch {
	case bid == 0 && ask == 0:
		// Both sides empty (or hidden): 0/0, never a division by zero.
	case ask == 0:
		snap.BidPercentMicros = fullPercentMicros
	case bid == 0:
		snap.AskPercentMicros = fullPercentMicros
	default:
		snap.BidPercentMicros = shareHalfUp(bid, safe.SafeAdd(bid, ask))
		snap.AskPercentMicros = fullPercentMicros - snap.BidPercentMicros
	}

	return snap
}

func truncated(have, depth int) bool {
	return depth > 0 && have >= depth
}

// shareHalfUp returns part/total as percent-micros, rounded half-up.
// Both operands are scaled down together when the multiply would
// overflow; total >= part > 0 keeps the divisor positive throughout.
func shareHalfUp(part, total int64) int64 {
	for part > math.MaxInt64/fullPercentMicros {
		part >>= 1
		total >>= 1
	}
	return (part*fullPercentMicros + total/2) / total
}
