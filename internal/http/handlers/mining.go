package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StartMining opens a new cycle. Fails while one is running or waiting to be
// claimed.
func (h *Handler) StartMining(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cycle, err := h.Svc.StartMining(c.Request.Context(), playerID, time.Now())
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start_time":       cycle.StartTime,
		"duration_seconds": cycle.Duration,
		"matures_at":       cycle.MaturesAt(),
	})
}

// MiningProgress reports the cycle at the current wall-clock instant. The
// client polls this at its own cadence.
func (h *Handler) MiningProgress(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.Svc.MiningProgress(c.Request.Context(), playerID, time.Now())
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// ClaimMining awards the matured cycle and frees the slot.
func (h *Handler) ClaimMining(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	award, err := h.Svc.ClaimMining(c.Request.Context(), playerID, time.Now())
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points_awarded": award})
}
