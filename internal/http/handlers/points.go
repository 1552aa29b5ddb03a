package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AddPointsRequest struct {
	Amount int64 `json:"amount"`
}

// AddPoints credits tap/game points to the account. Zero is a no-op success,
// negative amounts are rejected.
func (h *Handler) AddPoints(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AddPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	total, err := h.Svc.AddPoints(c.Request.Context(), playerID, req.Amount)
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_points": total})
}

// ClaimDailyLogin claims today's login reward.
func (h *Handler) ClaimDailyLogin(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Svc.ClaimDailyLogin(c.Request.Context(), playerID, time.Now())
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streak_day":     res.StreakDay,
		"points_awarded": res.PointsAwarded,
	})
}
