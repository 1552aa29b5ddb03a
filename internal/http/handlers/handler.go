package handlers

import (
	"context"
	"errors"
	"net/http"

	"twq_coin/internal/domain"
	"twq_coin/internal/ledger"
	"twq_coin/internal/repository"
	"twq_coin/internal/service"

	"github.com/gin-gonic/gin"
)

// TxHistory lists recent audited balance movements for a player.
type TxHistory interface {
	GetByPlayerID(ctx context.Context, playerID string, limit int) ([]*domain.Transaction, error)
}

// Handler wires the reward ledger service into the HTTP surface. Accounts
// and History are Postgres-backed and may be nil when the server runs on
// file snapshots; endpoints that need them answer 503.
type Handler struct {
	Svc         *service.LedgerService
	Accounts    *repository.AccountRepository
	History     TxHistory
	BotToken    string
	BotUsername string
}

func NewHandler(svc *service.LedgerService, accounts *repository.AccountRepository, history TxHistory, botToken, botUsername string) *Handler {
	return &Handler{
		Svc:         svc,
		Accounts:    accounts,
		History:     history,
		BotToken:    botToken,
		BotUsername: botUsername,
	}
}

// getPlayerID reads the player id set by the JWT middleware.
func getPlayerID(c *gin.Context) (string, bool) {
	v, ok := c.Get("player_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// ledgerError maps a rejected operation to a status code. Every rejection
// leaves the account unchanged, so the client is free to retry.
func ledgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
	case errors.Is(err, ledger.ErrBelowThreshold):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
	case errors.Is(err, ledger.ErrIncorrectCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect code"})
	case errors.Is(err, ledger.ErrAlreadyClaimedToday):
		c.JSON(http.StatusConflict, gin.H{"error": "already claimed today"})
	case errors.Is(err, ledger.ErrCycleAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": "mining already active"})
	case errors.Is(err, ledger.ErrNotMatured):
		c.JSON(http.StatusConflict, gin.H{"error": "mining not finished"})
	case errors.Is(err, ledger.ErrCodeAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "reward already claimed"})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// accountView is the account state as rendered to the client.
func accountView(acc *domain.PlayerAccount) gin.H {
	return gin.H{
		"player_id":      acc.PlayerID,
		"username":       acc.Username,
		"first_name":     acc.FirstName,
		"total_points":   acc.TotalPoints,
		"ton_balance":    domain.FormatTON(acc.TonBalance),
		"login_streak":   acc.LoginStreak,
		"last_login":     acc.LastLogin,
		"referral_count": acc.ReferralCount(),
		"is_mining":      acc.Mining != nil,
		"created_at":     acc.CreatedAt,
	}
}
