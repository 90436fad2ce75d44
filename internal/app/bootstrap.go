package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"marketpulse/internal/feed"
	"marketpulse/internal/infra"
	"marketpulse/internal/market"
	"marketpulse/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Prefs   *storage.PrefsStore
	Spot    *market.Store
	Futures *market.Store

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logger,
// preference storage, and one market store per domain.
func (b *Bootstrap) Initialize() error {
	slog.Info("Bootstrapping marketpulse...")

	// Runtime warmup so the first ticker burst stays allocation-flat.
	feed.Warmup()

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// One process per workspace: a second writer would corrupt the
	// preferences database.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := filepath.Join(dataDir, "prefs.db")
	prefs, err := storage.NewPrefsStore(dbPath)
	if err != nil {
		return err
	}
	b.Prefs = prefs
	slog.Info("Preferences store initialized", "path", dbPath)

	b.Spot = market.NewStore("spot")
	b.Futures = market.NewStore("futures")

	return nil
}

// PreloadFavorites restores persisted favorites into both domain stores.
func (b *Bootstrap) PreloadFavorites(ctx context.Context) error {
	for _, store := range []*market.Store{b.Spot, b.Futures} {
		favs, err := b.Prefs.Favorites(ctx, store.Name())
		if err != nil {
			return fmt.Errorf("failed to load %s favorites: %w", store.Name(), err)
		}
		for _, sym := range favs {
			store.SetFavorite(sym, true)
		}
		slog.Info("Favorites restored",
			slog.String("domain", store.Name()),
			slog.Int("count", len(favs)))
	}
	return nil
}

// SetFavorite updates a favorite flag in both the live store and the
// preference storage. The UI boundary calls this, never the two halves
// separately.
func (b *Bootstrap) SetFavorite(ctx context.Context, store *market.Store, symbol string, fav bool) error {
	store.SetFavorite(symbol, fav)
	return b.Prefs.SetFavorite(ctx, store.Name(), symbol, fav)
}

// Shutdown releases bootstrap-owned resources.
func (b *Bootstrap) Shutdown() {
	if b.Prefs != nil {
		b.Prefs.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}
