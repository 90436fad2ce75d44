package replay

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"

	"marketpulse/internal/domain"
	"marketpulse/internal/feed"
)

// BatchSink accepts ticker batches; the merge worker satisfies it.
type BatchSink interface {
	Submit(b *feed.TickerBatch) bool
}

// TickLog records raw ticks to SQLite and replays them later in arrival
// order. Raw strings are stored as received so a replay exercises the
// same normalization path as a live stream.
type TickLog struct {
	db *sql.DB
}

func Open(dbPath string) (*TickLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tick log: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ticks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			last TEXT NOT NULL,
			change TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ticks table: %w", err)
	}

	return &TickLog{db: db}, nil
}

// Append stores one raw tick.
func (l *TickLog) Append(ctx context.Context, tick domain.RawTick) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO ticks (symbol, last, change) VALUES (?, ?, ?)",
		tick.Symbol, tick.Last, tick.Change)
	return err
}

// Count returns the number of recorded ticks.
func (l *TickLog) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ticks").Scan(&n)
	return n, err
}

// Replay feeds every recorded tick into the sink in insertion order,
// one batch per tick for deterministic merge sequencing. Ticks that
// fail normalization are skipped, same as on the live path.
func (l *TickLog) Replay(ctx context.Context, sink BatchSink) error {
	rows, err := l.db.QueryContext(ctx,
		"SELECT symbol, last, change FROM ticks ORDER BY id ASC")
	if err != nil {
		return fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var replayed, dropped int
	for rows.Next() {
		var tick domain.RawTick
		if err := rows.Scan(&tick.Symbol, &tick.Last, &tick.Change); err != nil {
			return err
		}

		update, ok := domain.Normalize(tick)
		if !ok {
			slog.Warn("Skipping malformed recorded tick", slog.String("symbol", tick.Symbol))
			continue
		}

		b := feed.AcquireBatch()
		b.Tickers.Put(update)
		if sink.Submit(b) {
			replayed++
		} else {
			dropped++
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	slog.Info("Replay finished",
		slog.Int("replayed", replayed),
		slog.Int("dropped", dropped))
	return nil
}

func (l *TickLog) Close() error {
	return l.db.Close()
}
