package ws

import (
	"context"
	"encoding/json"
	"time"

	"twq_coin/internal/domain"
	"twq_coin/internal/logger"

	"github.com/gorilla/websocket"
)

// ProgressSource is the pull-based query the stream samples. There is no
// server-side countdown task; every tick re-reads wall-clock progress.
type ProgressSource interface {
	MiningProgress(ctx context.Context, playerID string, now time.Time) (domain.MiningProgress, error)
}

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

// StreamProgress pushes mining progress to one connection until the client
// disconnects. Blocks; run it in its own goroutine.
func StreamProgress(conn *websocket.Conn, src ProgressSource, playerID string, interval time.Duration) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// read pump only to notice the close
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, err := src.MiningProgress(ctx, playerID, time.Now())
			if err != nil {
				logger.Warn("mining progress read failed", "player_id", playerID, "error", err)
				return
			}
			b, err := json.Marshal(p)
			if err != nil {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
