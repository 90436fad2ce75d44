package domain

import (
	"marketpulse/pkg/quant"
)

// Side marks which half of the book a level belongs to.
type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// BookLevel is one price level of an order book. Fixed-point throughout:
// no float64 on the depth math path.
type BookLevel struct {
	PriceMicros quant.PriceMicros `json:"price"`
	SizeSats    quant.QtySats     `json:"size"`
	Side        Side              `json:"side"`
}

// BookView is the UI-supplied visibility configuration for the aggregator.
type BookView struct {
	VisibleDepth int  `json:"visible_depth"`
	ShowBids     bool `json:"show_bids"`
	ShowAsks     bool `json:"show_asks"`
}

// BookSnapshot is the aggregated, visibility-filtered view of one book
// update. Bids keep descending price order, asks ascending, as delivered.
// Percentages reflect only the visible levels and sum to exactly 100%
// (in micros) whenever both sides are non-empty.
type BookSnapshot struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`

	BidTotalSats quant.QtySats `json:"bid_total"`
	AskTotalSats quant.QtySats `json:"ask_total"`

	BidPercentMicros int64 `json:"bid_percent"`
	AskPercentMicros int64 `json:"ask_percent"`
}

// BidPercent renders the bid share with two decimals, e.g. "30.00".
func (s *BookSnapshot) BidPercent() string {
	return quant.FormatPercentMicros(s.BidPercentMicros)
}

// AskPercent renders the ask share with two decimals.
func (s *BookSnapshot) AskPercent() string {
	return quant.FormatPercentMicros(s.AskPercentMicros)
}
