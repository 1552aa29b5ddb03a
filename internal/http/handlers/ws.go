package handlers

import (
	"net/http"
	"os"
	"time"

	"twq_coin/internal/logger"
	"twq_coin/internal/service"
	"twq_coin/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// MiningWS streams mining progress over a websocket. The token comes in the
// query string because browsers cannot set headers on the upgrade request.
func (h *Handler) MiningWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	playerID, err := service.ParseJWT(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err)
		return
	}

	go ws.StreamProgress(conn, h.Svc, playerID, time.Second)
}
