package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Transactions returns the player's recent balance movements, newest first.
// Needs the Postgres transaction log.
func (h *Handler) Transactions(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transaction history unavailable"})
		return
	}

	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	txs, err := h.History.GetByPlayerID(c.Request.Context(), playerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
