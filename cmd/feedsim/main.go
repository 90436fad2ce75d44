package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"marketpulse/internal/book"
	"marketpulse/internal/domain"
	"marketpulse/internal/engine"
	"marketpulse/internal/feed"
	"marketpulse/internal/market"
	"marketpulse/internal/replay"
	"marketpulse/pkg/quant"
)

// feedsim drives the full merge pipeline with synthetic data, no
// network needed. Useful for eyeballing the output format and for
// profiling the hotpath under load. With -record the generated ticks
// are written to a tick log; with -replay a previous log is fed
// through the worker instead of fresh random data.
func main() {
	recordPath := flag.String("record", "", "record generated ticks to this sqlite file")
	replayPath := flag.String("replay", "", "replay ticks from this sqlite file instead of generating")
	flag.Parse()

	fmt.Println("=== MarketPulse Feed Simulator ===")
	fmt.Println()

	feed.Warmup()

	store := market.NewStore("spot")
	store.SetRows([]*domain.MarketRow{
		{Symbol: "BTCUSDT", Precision: 2},
		{Symbol: "ETHUSDT", Precision: 2},
		{Symbol: "SOLUSDT", Precision: 3},
	})

	updates := make(chan uint64, 16)
	unsubscribe := store.Subscribe(func(version uint64) {
		select {
		case updates <- version:
		default:
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := engine.NewWorker("sim", 64, store)
	worker.Start(ctx)

	if *replayPath != "" {
		runReplay(ctx, *replayPath, worker)
	} else {
		rng := rand.New(rand.NewSource(42))
		go produceTicks(ctx, worker, rng, *recordPath)
	}

	fmt.Println("📈 Streaming ticks through the merge worker...")
	fmt.Println()

	deadline := time.After(3 * time.Second)
	applied := 0
loop:
	for {
		select {
		case v := <-updates:
			applied++
			fmt.Printf("--- version %d ---\n", v)
			for _, row := range store.VisibleRows() {
				fmt.Printf("  %-8s  %12s  %6s%%  (%s)\n",
					row.Symbol, row.Price, row.ChangePercent, row.ChangeDirection())
			}
		case <-deadline:
			break loop
		}
	}

	cancel()
	worker.Wait()

	fmt.Println()
	fmt.Printf("✅ %d merge(s) applied, %d batch(es) shed\n", applied, worker.Dropped())
	fmt.Println()

	printBookDemo(rand.New(rand.NewSource(7)))
}

func runReplay(ctx context.Context, path string, worker *engine.Worker) {
	log, err := replay.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open tick log: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	n, _ := log.Count(ctx)
	fmt.Printf("⏪ Replaying %d recorded tick(s) from %s\n", n, path)

	if err := log.Replay(ctx, worker); err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		os.Exit(1)
	}
}

func produceTicks(ctx context.Context, worker *engine.Worker, rng *rand.Rand, recordPath string) {
	var log *replay.TickLog
	if recordPath != "" {
		var err error
		log, err = replay.Open(recordPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open tick log: %v\n", err)
			os.Exit(1)
		}
		defer log.Close()
		fmt.Printf("⏺  Recording ticks to %s\n", recordPath)
	}

	symbols := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	bases := []float64{67000, 3500, 150}

	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b := feed.AcquireBatch()
			for i, sym := range symbols {
				price := bases[i] * (1 + (rng.Float64()-0.5)/100)
				change := (rng.Float64() - 0.5) * 10
				raw := domain.RawTick{
					Symbol: sym,
					Last:   strconv.FormatFloat(price, 'f', 4, 64),
					Change: strconv.FormatFloat(change, 'f', 2, 64),
				}
				if log != nil {
					if err := log.Append(ctx, raw); err != nil {
						fmt.Fprintf(os.Stderr, "record failed: %v\n", err)
					}
				}
				if up, ok := domain.Normalize(raw); ok {
					b.Tickers.Put(up)
				}
			}
			worker.Submit(b)
		}
	}
}

// printBookDemo aggregates one synthetic depth snapshot so the
// bid/ask pressure output is visible without a live depth stream.
func printBookDemo(rng *rand.Rand) {
	fmt.Println("=== Order Book Pressure Demo ===")

	var levels []domain.BookLevel
	mid := int64(67_000 * quant.PriceScale)
	for i := int64(1); i <= 20; i++ {
		levels = append(levels,
			domain.BookLevel{
				PriceMicros: quant.PriceMicros(mid - i*quant.PriceScale),
				SizeSats:    quant.QtySats(rng.Int63n(5*quant.QtyScale) + 1),
				Side:        domain.Bid,
			},
			domain.BookLevel{
				PriceMicros: quant.PriceMicros(mid + i*quant.PriceScale),
				SizeSats:    quant.QtySats(rng.Int63n(5*quant.QtyScale) + 1),
				Side:        domain.Ask,
			})
	}

	tracker := book.NewTracker("BTCUSDT", domain.BookView{
		VisibleDepth: 15,
		ShowBids:     true,
		ShowAsks:     true,
	})
	snap := tracker.Update(levels)

	fmt.Printf("  visible bids: %d  visible asks: %d\n", len(snap.Bids), len(snap.Asks))
	fmt.Printf("  buy pressure:  %s%%\n", snap.BidPercent())
	fmt.Printf("  sell pressure: %s%%\n", snap.AskPercent())
}
