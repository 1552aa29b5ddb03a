package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acc, err := h.Svc.Get(c.Request.Context(), playerID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountView(acc))
}

// ResetProgress clears streak and referral state. Balances are preserved.
func (h *Handler) ResetProgress(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acc, err := h.Svc.Reset(c.Request.Context(), playerID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountView(acc))
}
