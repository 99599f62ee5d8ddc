package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"solsniper/internal/domain"
	"solsniper/internal/state"
)

// GeyserSourceName identifies the push listener in pool snapshots and logs.
const GeyserSourceName = "geyser"

// poolUpdate is one push message from the stream: a single pool's new state.
type poolUpdate struct {
	PoolID     string  `json:"pool_id"`
	TokenA     string  `json:"token_a"`
	TokenB     string  `json:"token_b"`
	LiquidityA float64 `json:"liquidity_a"`
	LiquidityB float64 `json:"liquidity_b"`
	Price      float64 `json:"price"`
	Volume24h  float64 `json:"volume_24h"`
	Timestamp  int64   `json:"timestamp"`
}

// WSListener subscribes to a websocket stream of pool updates and upserts
// each one into the shared store. The connection is re-established after
// reconnectDelay on any read failure.
type WSListener struct {
	url            string
	store          *state.PoolStore
	reconnectDelay time.Duration
	logger         *slog.Logger
}

// NewWSListener creates a WSListener for the given stream URL.
func NewWSListener(url string, store *state.PoolStore, reconnectDelay time.Duration, logger *slog.Logger) *WSListener {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &WSListener{
		url:            url,
		store:          store,
		reconnectDelay: reconnectDelay,
		logger:         logger.With(slog.String("component", "ws_listener"), slog.String("source", GeyserSourceName)),
	}
}

// RunLoop connects and consumes updates until the context is cancelled,
// reconnecting after transient failures.
func (l *WSListener) RunLoop(ctx context.Context) error {
	l.logger.Info("listener started", slog.String("url", l.url))

	for {
		if err := l.consume(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("listener stopped")
				return nil
			}
			l.logger.Error("stream disconnected",
				slog.Any("error", err),
				slog.Duration("reconnect_delay", l.reconnectDelay),
			)
		}

		select {
		case <-ctx.Done():
			l.logger.Info("listener stopped")
			return nil
		case <-time.After(l.reconnectDelay):
		}
	}
}

// consume holds one connection open and applies every update it delivers.
func (l *WSListener) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return fmt.Errorf("source: dial %s: %w", l.url, err)
	}
	defer conn.Close()

	// Unblock the blocking read when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	l.logger.Info("stream connected")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("source: %w: %v", domain.ErrWSDisconnect, err)
		}

		var upd poolUpdate
		if err := json.Unmarshal(msg, &upd); err != nil {
			l.logger.Warn("malformed update dropped", slog.Any("error", err))
			continue
		}
		if upd.PoolID == "" {
			continue
		}

		at := time.Now()
		if upd.Timestamp > 0 {
			at = time.Unix(upd.Timestamp, 0)
		}

		l.store.Upsert(domain.PoolState{
			PoolID:      upd.PoolID,
			Source:      GeyserSourceName,
			TokenA:      upd.TokenA,
			TokenB:      upd.TokenB,
			LiquidityA:  upd.LiquidityA,
			LiquidityB:  upd.LiquidityB,
			Price:       upd.Price,
			Volume24h:   upd.Volume24h,
			LastUpdated: at,
		})
	}
}
