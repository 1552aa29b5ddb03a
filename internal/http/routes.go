package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"twq_coin/internal/config"
	"twq_coin/internal/http/handlers"
	"twq_coin/internal/http/middleware"
	"twq_coin/internal/repository"
	"twq_coin/internal/service"
)

// RegisterRoutes mounts the full API surface. db and accounts may be nil when
// the server runs on the file or Redis snapshot store; the leaderboard and the
// deep health check then report accordingly.
func RegisterRoutes(r *gin.Engine, svc *service.LedgerService, db *pgxpool.Pool, accounts *repository.AccountRepository, version string, cfg *config.Config) {
	var history handlers.TxHistory
	if db != nil {
		history = repository.NewTransactionRepository(db)
	}
	h := handlers.NewHandler(svc, accounts, history, cfg.BotToken, cfg.BotUsername)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth gets its own, tighter limit on top of the group limit.
	v1.POST("/auth", middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow), h.Auth)

	// Taps arrive in bursts from the client, so the per-player budget is
	// generous compared to the rest of the write endpoints.
	tapRL := middleware.PlayerRateLimit("tap", 120, time.Minute)
	walletRL := middleware.PlayerRateLimit("wallet", 10, time.Minute)

	authed := v1.Group("")
	authed.Use(middleware.JWT())
	{
		authed.GET("/me", h.Me)
		authed.GET("/me/transactions", h.Transactions)
		authed.POST("/profile/reset", h.ResetProgress)

		authed.POST("/points", tapRL, h.AddPoints)
		authed.POST("/daily/claim", h.ClaimDailyLogin)

		authed.POST("/mining/start", h.StartMining)
		authed.GET("/mining/progress", h.MiningProgress)
		authed.POST("/mining/claim", h.ClaimMining)

		authed.GET("/referral/link", h.ReferralLink)
		authed.POST("/referral/register", h.RegisterReferral)

		authed.GET("/wallet", h.Wallet)
		authed.POST("/wallet/verify", walletRL, h.VerifyCode)
		authed.POST("/wallet/withdraw", walletRL, h.Withdraw)
	}

	v1.GET("/leaderboard", h.Leaderboard)

	// WebSocket auth happens in the handler (token query param) because
	// browser WebSocket clients cannot set an Authorization header. The
	// in-memory limiter keeps upgrade storms out even with no Redis.
	r.GET("/ws/mining", middleware.SimpleRateLimit(30, time.Minute), h.MiningWS)
}
