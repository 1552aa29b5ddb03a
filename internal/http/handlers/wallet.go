package handlers

import (
	"net/http"

	"twq_coin/internal/domain"

	"github.com/gin-gonic/gin"
)

// Wallet returns the simulated TON balance.
func (h *Handler) Wallet(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"ton_balance":  domain.FormatTON(acc.TonBalance),
		"code_claimed": acc.CodeClaimed,
	})
}

type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyCode checks the verification code and credits the one-time TON
// reward.
func (h *Handler) VerifyCode(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	nano, err := h.Svc.ClaimCodeReward(c.Request.Context(), playerID, req.Code)
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ton_awarded": domain.FormatTON(nano)})
}

// Withdraw zeroes the balance once it reaches the threshold. Local
// accounting only, no transfer leaves the system.
func (h *Handler) Withdraw(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Svc.Withdraw(c.Request.Context(), playerID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"amount_ton":  res.AmountTON,
		"amount_nano": res.AmountNano,
	})
}
