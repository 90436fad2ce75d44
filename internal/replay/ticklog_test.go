package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"marketpulse/internal/domain"
	"marketpulse/internal/feed"
)

func openTestLog(t *testing.T) *TickLog {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ticks.db")
	log, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		log.Close()
		os.Remove(dbPath)
	})
	return log
}

type collectSink struct {
	batches []domain.TickerMap
}

func (s *collectSink) Submit(b *feed.TickerBatch) bool {
	m := make(domain.TickerMap, len(b.Tickers))
	m.Absorb(b.Tickers)
	s.batches = append(s.batches, m)
	feed.ReleaseBatch(b)
	return true
}

func TestTickLog_AppendAndReplay(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	ticks := []domain.RawTick{
		{Symbol: "BTCUSDT", Last: "67000.5", Change: "1.25"},
		{Symbol: "ETHUSDT", Last: "3500", Change: "-0.40"},
		{Symbol: "BTCUSDT", Last: "67010.0", Change: "1.30"},
	}
	for _, tick := range ticks {
		if err := log.Append(ctx, tick); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	n, err := log.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}

	sink := &collectSink{}
	if err := log.Replay(ctx, sink); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	if len(sink.batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(sink.batches))
	}

	// Insertion order: the last BTCUSDT tick must arrive last.
	last, ok := sink.batches[2]["BTCUSDT"]
	if !ok {
		t.Fatal("final batch missing BTCUSDT")
	}
	if got := last.Last.String(); got != "67010" {
		t.Errorf("final BTCUSDT last = %s, want 67010", got)
	}
}

func TestTickLog_ReplaySkipsMalformed(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	if err := log.Append(ctx, domain.RawTick{Symbol: "BTCUSDT", Last: "not-a-price", Change: "1"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := log.Append(ctx, domain.RawTick{Symbol: "ETHUSDT", Last: "3500", Change: "0.5"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	sink := &collectSink{}
	if err := log.Replay(ctx, sink); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	if len(sink.batches) != 1 {
		t.Fatalf("got %d batches, want 1 (malformed tick skipped)", len(sink.batches))
	}
	if _, ok := sink.batches[0]["ETHUSDT"]; !ok {
		t.Error("surviving batch missing ETHUSDT")
	}
}

func TestTickLog_EmptyReplay(t *testing.T) {
	log := openTestLog(t)

	sink := &collectSink{}
	if err := log.Replay(context.Background(), sink); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(sink.batches) != 0 {
		t.Errorf("got %d batches from empty log, want 0", len(sink.batches))
	}
}
