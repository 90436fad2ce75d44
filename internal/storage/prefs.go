package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"marketpulse/internal/domain"

	_ "github.com/glebarez/go-sqlite"
)

// PrefsStore persists user preferences (favorites, book view) in SQLite.
// Tick data is never stored here; preferences are the only state that
// must survive a restart.
type PrefsStore struct {
	db *sql.DB
}

// NewPrefsStore opens (or creates) the preferences database with WAL
// mode enabled.
func NewPrefsStore(dbPath string) (*PrefsStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			domain TEXT NOT NULL,
			symbol TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (domain, symbol)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create favorites table: %w", err)
	}

	return &PrefsStore{db: db}, nil
}

// SetFavorite flags or unflags a symbol within a market domain.
func (s *PrefsStore) SetFavorite(ctx context.Context, marketDomain, symbol string, fav bool) error {
	var err error
	if fav {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO favorites (domain, symbol, created_at) VALUES (?, ?, ?) ON CONFLICT(domain, symbol) DO NOTHING",
			marketDomain, symbol, time.Now().UnixMicro(),
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM favorites WHERE domain = ? AND symbol = ?",
			marketDomain, symbol,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	return nil
}

// Favorites returns the flagged symbols for one market domain.
func (s *PrefsStore) Favorites(ctx context.Context, marketDomain string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT symbol FROM favorites WHERE domain = ? ORDER BY symbol ASC",
		marketDomain,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *PrefsStore) UpsertMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, time.Now().UnixMicro(),
	)
	return err
}

// GetMetadata retrieves a value from the metadata table.
// Returns "" when the key does not exist.
func (s *PrefsStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SaveBookView persists the order book view configuration.
func (s *PrefsStore) SaveBookView(ctx context.Context, view domain.BookView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal book view: %w", err)
	}
	return s.UpsertMetadata(ctx, "book_view", string(data))
}

// LoadBookView restores the order book view configuration, falling back
// to the given default when none is stored.
func (s *PrefsStore) LoadBookView(ctx context.Context, fallback domain.BookView) (domain.BookView, error) {
	raw, err := s.GetMetadata(ctx, "book_view")
	if err != nil {
		return fallback, err
	}
	if raw == "" {
		return fallback, nil
	}

	var view domain.BookView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return fallback, fmt.Errorf("failed to unmarshal book view: %w", err)
	}
	return view, nil
}

// Close closes the database connection.
func (s *PrefsStore) Close() error {
	return s.db.Close()
}
