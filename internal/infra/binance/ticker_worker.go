package binance

import (
	"context"
	"encoding/json"
	"strings"

	"marketpulse/internal/domain"
	"marketpulse/internal/feed"
	"marketpulse/internal/infra"

	"github.com/gorilla/websocket"
)

// BatchSink accepts normalized ticker batches. Satisfied by the merge
// worker; Submit must never block the read loop.
type BatchSink interface {
	Submit(b *feed.TickerBatch) bool
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// tickerEvent is the Binance 24hr ticker stream payload (single symbol).
type tickerEvent struct {
	EventType     string `json:"e"`
	Symbol        string `json:"s"`
	LastPrice     string `json:"c"`
	ChangePercent string `json:"P"`
}

// TickerWorker subscribes to per-symbol ticker streams for one market
// domain and feeds normalized batches to the merge worker. One instance
// per domain (spot, futures); they share nothing but the sink type.
type TickerWorker struct {
	base    *infra.WSWorker
	id      string
	url     string
	symbols []string
	sink    BatchSink
}

// NewTickerWorker factory.
func NewTickerWorker(id, url string, symbols []string, sink BatchSink) *TickerWorker {
	w := &TickerWorker{
		id:      id,
		url:     url,
		symbols: symbols,
		sink:    sink,
	}
	w.base = infra.NewWSWorker(w)
	return w
}

func (w *TickerWorker) ID() string     { return w.id }
func (w *TickerWorker) GetURL() string { return w.url }

// Connect starts the connection loop.
func (w *TickerWorker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect stops the worker.
func (w *TickerWorker) Disconnect() {
	w.base.Stop()
}

func (w *TickerWorker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	params := make([]string, 0, len(w.symbols))
	for _, s := range w.symbols {
		params = append(params, strings.ToLower(s)+"@ticker")
	}
	req := subscribeRequest{Method: "SUBSCRIBE", Params: params, ID: 1}
	b, _ := json.Marshal(req)
	return w.base.Write(websocket.TextMessage, b)
}

// OnMessage parses one ticker frame into a single-entry batch.
// Subscription acks, unknown event types, and malformed frames are
// dropped without touching the rest of the stream.
func (w *TickerWorker) OnMessage(ctx context.Context, msg []byte) {
	var ev tickerEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}
	if ev.EventType != "24hrTicker" {
		return
	}

	tick, ok := domain.Normalize(domain.RawTick{
		Symbol: ev.Symbol,
		Last:   ev.LastPrice,
		Change: ev.ChangePercent,
	})
	if !ok {
		return
	}

	b := feed.AcquireBatch()
	b.Tickers.Put(tick)
	w.sink.Submit(b)
}

func (w *TickerWorker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return w.base.Write(websocket.PingMessage, nil)
}
