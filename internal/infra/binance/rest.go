package binance

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/infra"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
)

// ListingClient resolves the tracked market list (the external
// "listing/delisting" collaborator) from exchange info REST endpoints.
// Calls go through the shared listing rate limiter and a circuit breaker
// so a flapping endpoint cannot hammer the API.
type ListingClient struct {
	spot    *gbinance.Client
	futures *futures.Client
	breaker *infra.CircuitBreaker
}

// NewListingClient creates a listing client. Credentials may be empty;
// exchange info is a public endpoint.
func NewListingClient(apiKey, apiSecret string) *ListingClient {
	spot := gbinance.NewClient(apiKey, apiSecret)
	spot.HTTPClient = &http.Client{Timeout: 7 * time.Second}

	fut := futures.NewClient(apiKey, apiSecret)
	fut.HTTPClient = &http.Client{Timeout: 7 * time.Second}

	return &ListingClient{
		spot:    spot,
		futures: fut,
		breaker: infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("listing")),
	}
}

// SpotMarkets returns rows for the tracked spot symbols, in the order
// given. Symbols that are unknown or not trading are skipped.
func (c *ListingClient) SpotMarkets(ctx context.Context, symbols []string) ([]*domain.MarketRow, error) {
	if err := c.admit(); err != nil {
		return nil, err
	}

	info, err := c.spot.NewExchangeInfoService().Do(ctx)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("spot exchange info: %w", err)
	}
	c.breaker.RecordSuccess()

	precisions := make(map[string]int, len(info.Symbols))
	for i := range info.Symbols {
		s := &info.Symbols[i]
		if s.Status != "TRADING" {
			continue
		}
		prec := domain.DefaultPrecision
		if pf := s.PriceFilter(); pf != nil {
			prec = tickSizePrecision(pf.TickSize)
		}
		precisions[s.Symbol] = prec
	}

	return buildRows(symbols, precisions), nil
}

// FuturesMarkets returns rows for the tracked futures symbols.
func (c *ListingClient) FuturesMarkets(ctx context.Context, symbols []string) ([]*domain.MarketRow, error) {
	if err := c.admit(); err != nil {
		return nil, err
	}

	info, err := c.futures.NewExchangeInfoService().Do(ctx)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, fmt.Errorf("futures exchange info: %w", err)
	}
	c.breaker.RecordSuccess()

	precisions := make(map[string]int, len(info.Symbols))
	for i := range info.Symbols {
		s := &info.Symbols[i]
		if s.Status != "TRADING" {
			continue
		}
		precisions[s.Symbol] = s.PricePrecision
	}

	return buildRows(symbols, precisions), nil
}

func (c *ListingClient) admit() error {
	if !c.breaker.Allow() {
		return fmt.Errorf("listing circuit open")
	}
	infra.GetListingLimiter().Wait()
	return nil
}

func buildRows(symbols []string, precisions map[string]int) []*domain.MarketRow {
	rows := make([]*domain.MarketRow, 0, len(symbols))
	for _, sym := range symbols {
		prec, ok := precisions[sym]
		if !ok {
			continue
		}
		rows = append(rows, &domain.MarketRow{Symbol: sym, Precision: prec})
	}
	return rows
}

// tickSizePrecision derives display precision from a tick size string:
// "0.01000000" -> 2, "1.00000000" -> 0.
func tickSizePrecision(tickSize string) int {
	dot := strings.IndexByte(tickSize, '.')
	if dot < 0 {
		return 0
	}
	frac := tickSize[dot+1:]
	for i := 0; i < len(frac); i++ {
		if frac[i] != '0' {
			return i + 1
		}
	}
	return 0
}
