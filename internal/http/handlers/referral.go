package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReferralLink returns the share link carrying this player's stable id.
func (h *Handler) ReferralLink(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"link":      fmt.Sprintf("https://t.me/%s?start=%s", h.BotUsername, playerID),
	})
}

type RegisterReferralRequest struct {
	ReferredID string `json:"referred_id" binding:"required"`
}

// RegisterReferral counts a referred player for the authenticated referrer.
// Duplicates are a no-op success with accepted=false.
func (h *Handler) RegisterReferral(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RegisterReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referred_id is required"})
		return
	}

	res, err := h.Svc.RegisterReferral(c.Request.Context(), playerID, req.ReferredID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
