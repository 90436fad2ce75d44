package storage

import (
	"context"
	"os"
	"testing"

	"marketpulse/internal/domain"
)

func openTestStore(t *testing.T, name string) *PrefsStore {
	t.Helper()
	dbPath := name
	t.Cleanup(func() {
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	})

	store, err := NewPrefsStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPrefsStore_Favorites(t *testing.T) {
	store := openTestStore(t, "test_favorites.db")
	ctx := context.Background()

	if err := store.SetFavorite(ctx, "spot", "BTCUSDT", true); err != nil {
		t.Fatalf("SetFavorite failed: %v", err)
	}
	if err := store.SetFavorite(ctx, "spot", "ETHUSDT", true); err != nil {
		t.Fatalf("SetFavorite failed: %v", err)
	}
	// Re-flagging must be a no-op, not an error.
	if err := store.SetFavorite(ctx, "spot", "BTCUSDT", true); err != nil {
		t.Fatalf("Duplicate SetFavorite failed: %v", err)
	}
	// Same symbol in another domain stays independent.
	if err := store.SetFavorite(ctx, "futures", "BTCUSDT", true); err != nil {
		t.Fatalf("SetFavorite failed: %v", err)
	}

	favs, err := store.Favorites(ctx, "spot")
	if err != nil {
		t.Fatalf("Favorites failed: %v", err)
	}
	if len(favs) != 2 || favs[0] != "BTCUSDT" || favs[1] != "ETHUSDT" {
		t.Errorf("Favorites = %v; want [BTCUSDT ETHUSDT]", favs)
	}

	if err := store.SetFavorite(ctx, "spot", "BTCUSDT", false); err != nil {
		t.Fatalf("Unflag failed: %v", err)
	}
	favs, _ = store.Favorites(ctx, "spot")
	if len(favs) != 1 || favs[0] != "ETHUSDT" {
		t.Errorf("Favorites after unflag = %v; want [ETHUSDT]", favs)
	}

	futFavs, _ := store.Favorites(ctx, "futures")
	if len(futFavs) != 1 {
		t.Errorf("Futures favorites = %v; must be untouched", futFavs)
	}
}

func TestPrefsStore_Metadata(t *testing.T) {
	store := openTestStore(t, "test_metadata.db")
	ctx := context.Background()

	// Missing key reads as empty, not as an error.
	val, err := store.GetMetadata(ctx, "missing")
	if err != nil || val != "" {
		t.Fatalf("GetMetadata(missing) = %q, %v; want \"\", nil", val, err)
	}

	if err := store.UpsertMetadata(ctx, "k", "v1"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.UpsertMetadata(ctx, "k", "v2"); err != nil {
		t.Fatalf("Upsert overwrite failed: %v", err)
	}

	val, err = store.GetMetadata(ctx, "k")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if val != "v2" {
		t.Errorf("GetMetadata = %q; want v2", val)
	}
}

func TestPrefsStore_BookView(t *testing.T) {
	store := openTestStore(t, "test_bookview.db")
	ctx := context.Background()

	fallback := domain.BookView{VisibleDepth: 15, ShowBids: true, ShowAsks: true}

	// Nothing stored yet: fallback wins.
	view, err := store.LoadBookView(ctx, fallback)
	if err != nil {
		t.Fatalf("LoadBookView failed: %v", err)
	}
	if view != fallback {
		t.Errorf("LoadBookView = %+v; want fallback", view)
	}

	saved := domain.BookView{VisibleDepth: 5, ShowBids: true, ShowAsks: false}
	if err := store.SaveBookView(ctx, saved); err != nil {
		t.Fatalf("SaveBookView failed: %v", err)
	}

	view, err = store.LoadBookView(ctx, fallback)
	if err != nil {
		t.Fatalf("LoadBookView failed: %v", err)
	}
	if view != saved {
		t.Errorf("LoadBookView = %+v; want %+v", view, saved)
	}
}
