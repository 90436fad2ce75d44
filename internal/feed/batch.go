package feed

import (
	"sync"

	"marketpulse/internal/domain"
)

// TickerBatch carries one feed delivery of normalized ticker updates to the
// merge worker. Batches are pooled: ticker bursts can reach hundreds of
// symbols per second and the ingest path must stay allocation-flat.
type TickerBatch struct {
	Tickers domain.TickerMap
}

var batchPool = sync.Pool{
	New: func() any {
		return &TickerBatch{Tickers: make(domain.TickerMap, 64)}
	},
}

// AcquireBatch returns an empty batch from the pool.
func AcquireBatch() *TickerBatch {
	return batchPool.Get().(*TickerBatch)
}

// ReleaseBatch resets a batch and returns it to the pool.
// The caller must not touch the batch or its map afterwards.
func ReleaseBatch(b *TickerBatch) {
	clear(b.Tickers)
	batchPool.Put(b)
}

// Warmup pre-populates the pool so the first burst does not pay the
// allocation cost.
func Warmup() {
	warm := make([]*TickerBatch, 0, 16)
	for i := 0; i < 16; i++ {
		warm = append(warm, AcquireBatch())
	}
	for _, b := range warm {
		ReleaseBatch(b)
	}
}
