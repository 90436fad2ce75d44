package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketpulse/internal/domain"
	"marketpulse/internal/infra"
	"marketpulse/pkg/quant"

	"github.com/gorilla/websocket"
)

// depthEvent is the Binance partial depth stream payload: full snapshots,
// not deltas. Levels arrive as ["price","qty"] string pairs, bids sorted
// descending and asks ascending.
type depthEvent struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// DepthWorker subscribes to the partial depth stream for one symbol and
// delivers parsed levels to the order book tracker.
type DepthWorker struct {
	base    *infra.WSWorker
	url     string
	symbol  string
	levels  int
	deliver func([]domain.BookLevel)
}

// NewDepthWorker factory. levels picks the stream depth (5, 10 or 20 on
// Binance); deliver receives each parsed snapshot.
func NewDepthWorker(url, symbol string, levels int, deliver func([]domain.BookLevel)) *DepthWorker {
	w := &DepthWorker{
		url:     url,
		symbol:  symbol,
		levels:  levels,
		deliver: deliver,
	}
	w.base = infra.NewWSWorker(w)
	return w
}

func (w *DepthWorker) ID() string     { return "DEPTH_" + w.symbol }
func (w *DepthWorker) GetURL() string { return w.url }

// Connect starts the connection loop.
func (w *DepthWorker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect stops the worker.
func (w *DepthWorker) Disconnect() {
	w.base.Stop()
}

func (w *DepthWorker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	stream := fmt.Sprintf("%s@depth%d@100ms", strings.ToLower(w.symbol), w.levels)
	req := subscribeRequest{Method: "SUBSCRIBE", Params: []string{stream}, ID: 1}
	b, _ := json.Marshal(req)
	return w.base.Write(websocket.TextMessage, b)
}

func (w *DepthWorker) OnMessage(ctx context.Context, msg []byte) {
	var ev depthEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}
	if len(ev.Bids) == 0 && len(ev.Asks) == 0 {
		return // subscription ack or empty frame
	}

	levels := make([]domain.BookLevel, 0, len(ev.Bids)+len(ev.Asks))
	levels = appendSide(levels, ev.Bids, domain.Bid)
	levels = appendSide(levels, ev.Asks, domain.Ask)

	w.deliver(levels)
}

func (w *DepthWorker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return w.base.Write(websocket.PingMessage, nil)
}

// appendSide converts ["price","qty"] pairs, keeping stream order.
// A malformed pair is skipped, never fatal.
func appendSide(dst []domain.BookLevel, pairs [][]string, side domain.Side) []domain.BookLevel {
	for _, p := range pairs {
		if len(p) < 2 {
			continue
		}
		price, err := quant.ParsePriceMicros(p[0])
		if err != nil {
			continue
		}
		size, err := quant.ParseQtySats(p[1])
		if err != nil {
			continue
		}
		dst = append(dst, domain.BookLevel{PriceMicros: price, SizeSats: size, Side: side})
	}
	return dst
}
