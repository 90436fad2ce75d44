package engine

import (
	"context"
	"log/slog"
	"sync"

	"marketpulse/internal/domain"
	"marketpulse/internal/feed"
)

// RowStore is the slice of the market store the worker needs: a rows
// snapshot to merge against and a single mutation entry point for results.
type RowStore interface {
	Rows() []*domain.MarketRow
	ApplyMergeResult(rows []*domain.MarketRow)
}

// Worker owns merge dispatch for one market domain. It is the pipeline's
// one concurrency boundary: feed adapters submit batches, the worker's
// single goroutine coalesces whatever is pending, merges against a rows
// snapshot, and applies the result. One merge in flight by construction;
// batches apply in arrival order; a dispatched merge always completes and
// its result is always applied.
type Worker struct {
	name  string
	inbox chan *feed.TickerBatch
	store RowStore

	dropped uint64 // batches shed on a full inbox, for observability only
	mu      sync.Mutex

	wg sync.WaitGroup
}

// NewWorker creates a merge worker for one store.
func NewWorker(name string, inboxSize int, store RowStore) *Worker {
	return &Worker{
		name:  name,
		inbox: make(chan *feed.TickerBatch, inboxSize),
		store: store,
	}
}

// Submit hands a batch to the worker without blocking. If the inbox is
// full the batch is released and dropped: staleness is preferred over
// unbounded queueing, and the next delivery supersedes it anyway.
// Returns false when the batch was shed.
func (w *Worker) Submit(b *feed.TickerBatch) bool {
	if len(b.Tickers) == 0 {
		feed.ReleaseBatch(b)
		return true
	}

	select {
	case w.inbox <- b:
		return true
	default:
		feed.ReleaseBatch(b)
		w.mu.Lock()
		w.dropped++
		n := w.dropped
		w.mu.Unlock()
		if n%100 == 1 {
			slog.Warn("Merge inbox full, shedding batch",
				slog.String("worker", w.name),
				slog.Uint64("dropped_total", n))
		}
		return false
	}
}

// Dropped reports how many batches have been shed so far.
func (w *Worker) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Start launches the run loop. Call once.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Wait blocks until the run loop has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// run is the single-goroutine merge loop.
func (w *Worker) run(ctx context.Context) {
	slog.Info("Merge worker started", slog.String("worker", w.name))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Merge worker stopping", slog.String("worker", w.name))
			return
		case b := <-w.inbox:
			w.consume(b)
		}
	}
}

// consume coalesces all queued batches into one ticker map and applies a
// single merge. Coalescing keeps the latest value per symbol, which bounds
// both memory and latency when the feed outruns merge application.
func (w *Worker) consume(b *feed.TickerBatch) {
	pending := b.Tickers

drain:
	for {
		select {
		case next := <-w.inbox:
			pending.Absorb(next.Tickers)
			feed.ReleaseBatch(next)
		default:
			break drain
		}
	}

	rows := w.store.Rows()
	merged := Merge(rows, pending)
	w.store.ApplyMergeResult(merged)

	feed.ReleaseBatch(b)
}
