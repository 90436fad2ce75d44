package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketpulse/internal/app"
	"marketpulse/internal/book"
	"marketpulse/internal/domain"
	"marketpulse/internal/engine"
	"marketpulse/internal/infra"
	"marketpulse/internal/infra/binance"
	"marketpulse/internal/market"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.PreloadFavorites(ctx); err != nil {
		slog.Error("Failed to restore favorites", slog.Any("error", err))
	}

	cfg := bootstrap.Config

	// 4. Initial Listings (REST)
	listing := binance.NewListingClient(cfg.Feed.API.Key, cfg.Feed.API.Secret)
	loadListings(ctx, listing, bootstrap)

	// 5. Merge Workers (one hotpath goroutine per domain)
	domains := []struct {
		store *market.Store
		feed  infra.DomainFeed
	}{
		{bootstrap.Spot, cfg.Feed.Spot},
		{bootstrap.Futures, cfg.Feed.Futures},
	}

	for _, d := range domains {
		if len(d.feed.Symbols) == 0 {
			continue
		}

		worker := engine.NewWorker(d.store.Name(), 256, d.store)
		worker.Start(ctx)
		slog.InfoContext(ctx, "✅ Merge worker started", slog.String("domain", d.store.Name()))

		tickerWorker := binance.NewTickerWorker(
			"TICKER_"+d.store.Name(), d.feed.WSURL, d.feed.Symbols, worker)
		if err := tickerWorker.Connect(ctx); err != nil {
			slog.Error("Failed to connect ticker feed",
				slog.String("domain", d.store.Name()), slog.Any("error", err))
		}
		defer tickerWorker.Disconnect()
		slog.InfoContext(ctx, "✅ Ticker feed started",
			slog.String("domain", d.store.Name()),
			slog.Int("symbols", len(d.feed.Symbols)))
	}

	// 6. Order Book Tracker (Gateway)
	if cfg.Feed.Depth.Symbol != "" {
		view := domain.BookView{
			VisibleDepth: cfg.UI.VisibleDepth,
			ShowBids:     cfg.UI.ShowBids,
			ShowAsks:     cfg.UI.ShowAsks,
		}
		view, err := bootstrap.Prefs.LoadBookView(ctx, view)
		if err != nil {
			slog.Warn("Failed to load book view, using defaults", slog.Any("error", err))
		}

		tracker := book.NewTracker(cfg.Feed.Depth.Symbol, view)
		depthWorker := binance.NewDepthWorker(
			cfg.Feed.Depth.WSURL, cfg.Feed.Depth.Symbol, cfg.Feed.Depth.Levels,
			func(levels []domain.BookLevel) {
				snap := tracker.Update(levels)
				slog.Debug("Book updated",
					slog.String("symbol", tracker.Symbol()),
					slog.String("bid_pct", snap.BidPercent()),
					slog.String("ask_pct", snap.AskPercent()))
			})
		if err := depthWorker.Connect(ctx); err != nil {
			slog.Error("Failed to connect depth feed", slog.Any("error", err))
		}
		defer depthWorker.Disconnect()
		slog.InfoContext(ctx, "✅ Depth feed started",
			slog.String("symbol", cfg.Feed.Depth.Symbol))
	}

	// 7. Periodic state log so headless runs stay observable
	go logStoreVersions(ctx, cfg.UI.UpdateIntervalMS, bootstrap.Spot, bootstrap.Futures)

	slog.InfoContext(ctx, "✨ MarketPulse fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}

// loadListings fetches the initial market rows for each enabled domain.
// A failed fetch leaves the domain empty; the stream alone cannot name
// listings, so the operator sees the error and restarts.
func loadListings(ctx context.Context, listing *binance.ListingClient, bootstrap *app.Bootstrap) {
	cfg := bootstrap.Config

	if len(cfg.Feed.Spot.Symbols) > 0 {
		rows, err := listing.SpotMarkets(ctx, cfg.Feed.Spot.Symbols)
		if err != nil {
			slog.Error("Failed to load spot listings", slog.Any("error", err))
		} else {
			bootstrap.Spot.SetRows(rows)
			slog.Info("Spot listings loaded", slog.Int("count", len(rows)))
		}
	}

	if len(cfg.Feed.Futures.Symbols) > 0 {
		rows, err := listing.FuturesMarkets(ctx, cfg.Feed.Futures.Symbols)
		if err != nil {
			slog.Error("Failed to load futures listings", slog.Any("error", err))
		} else {
			bootstrap.Futures.SetRows(rows)
			slog.Info("Futures listings loaded", slog.Int("count", len(rows)))
		}
	}
}

func logStoreVersions(ctx context.Context, intervalMS int, stores ...*market.Store) {
	ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range stores {
				slog.Debug("Store state",
					slog.String("domain", s.Name()),
					slog.Uint64("version", s.Version()),
					slog.Int("visible_rows", len(s.VisibleRows())))
			}
		}
	}
}
