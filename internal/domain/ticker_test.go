package domain

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Run("Valid Tick", func(t *testing.T) {
		tick, ok := Normalize(RawTick{Symbol: "BTCUSDT", Last: "42000.1234", Change: "1.5"})
		if !ok {
			t.Fatal("Valid tick should not be dropped")
		}
		if tick.Symbol != "BTCUSDT" {
			t.Errorf("Symbol = %s; want BTCUSDT", tick.Symbol)
		}
		if tick.Last.String() != "42000.1234" {
			t.Errorf("Last = %s; want 42000.1234", tick.Last.String())
		}
		if tick.Change.String() != "1.5" {
			t.Errorf("Change = %s; want 1.5", tick.Change.String())
		}
	})

	t.Run("Missing Symbol", func(t *testing.T) {
		if _, ok := Normalize(RawTick{Last: "100"}); ok {
			t.Error("Tick without symbol should be dropped")
		}
	})

	t.Run("Invalid Last Price", func(t *testing.T) {
		if _, ok := Normalize(RawTick{Symbol: "BTCUSDT", Last: "not-a-number"}); ok {
			t.Error("Tick with invalid price should be dropped")
		}
		if _, ok := Normalize(RawTick{Symbol: "BTCUSDT"}); ok {
			t.Error("Tick with empty price should be dropped")
		}
	})

	t.Run("Invalid Change Coerces To Zero", func(t *testing.T) {
		tick, ok := Normalize(RawTick{Symbol: "ETHUSDT", Last: "2000", Change: "??"})
		if !ok {
			t.Fatal("Price-only update should still land")
		}
		if !tick.Change.IsZero() {
			t.Errorf("Change = %s; want 0", tick.Change.String())
		}
	})
}

func TestTickerMap_LastWriteWins(t *testing.T) {
	m := make(TickerMap)

	first, _ := Normalize(RawTick{Symbol: "BTCUSDT", Last: "100", Change: "1"})
	second, _ := Normalize(RawTick{Symbol: "BTCUSDT", Last: "101", Change: "2"})
	m.Put(first)
	m.Put(second)

	if len(m) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(m))
	}
	if m["BTCUSDT"].Last.String() != "101" {
		t.Errorf("Last = %s; want 101 (latest value)", m["BTCUSDT"].Last.String())
	}
}

func TestTickerMap_Absorb(t *testing.T) {
	older := make(TickerMap)
	newer := make(TickerMap)

	a, _ := Normalize(RawTick{Symbol: "BTCUSDT", Last: "100", Change: "0"})
	b, _ := Normalize(RawTick{Symbol: "BTCUSDT", Last: "105", Change: "0"})
	c, _ := Normalize(RawTick{Symbol: "ETHUSDT", Last: "2000", Change: "0"})
	older.Put(a)
	newer.Put(b)
	newer.Put(c)

	older.Absorb(newer)

	if len(older) != 2 {
		t.Fatalf("Expected 2 entries after absorb, got %d", len(older))
	}
	if older["BTCUSDT"].Last.String() != "105" {
		t.Errorf("Absorb should keep the newer value, got %s", older["BTCUSDT"].Last.String())
	}
}

func TestMarketRow_ChangeDirection(t *testing.T) {
	tests := []struct {
		change string
		want   string
	}{
		{"1.50", "positive"},
		{"-0.25", "negative"},
		{"0.00", "neutral"},
		{"", "neutral"},
	}

	for _, tt := range tests {
		row := MarketRow{Symbol: "BTCUSDT", ChangePercent: tt.change}
		if got := row.ChangeDirection(); got != tt.want {
			t.Errorf("ChangeDirection(%q) = %s; want %s", tt.change, got, tt.want)
		}
	}
}

func TestMarketRow_PrecisionOrDefault(t *testing.T) {
	row := MarketRow{Symbol: "BTCUSDT"}
	if row.PrecisionOrDefault() != DefaultPrecision {
		t.Errorf("Unset precision should default to %d", DefaultPrecision)
	}

	row.Precision = 2
	if row.PrecisionOrDefault() != 2 {
		t.Error("Explicit precision should be kept")
	}
}
