package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"twq_coin/internal/bot"
	"twq_coin/internal/config"
	"twq_coin/internal/db"
	httpServer "twq_coin/internal/http"
	"twq_coin/internal/http/middleware"
	"twq_coin/internal/logger"
	"twq_coin/internal/repository"
	"twq_coin/internal/service"
	"twq_coin/internal/snapshot"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	service.InitJWT()

	var (
		dbPool   *pgxpool.Pool
		accounts *repository.AccountRepository
		store    snapshot.Store
		dir      service.Directory
		txLog    service.TxLog
	)

	switch {
	case cfg.DatabaseURL != "":
		dbPool = db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()
		accounts = repository.NewAccountRepository(dbPool)
		store = accounts
		dir = accounts
		txLog = repository.NewTransactionRepository(dbPool)
		logger.Info("using postgres account store")
	case os.Getenv("SNAPSHOT_BACKEND") == "redis" && cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       cfg.RedisDB,
		})
		rs := snapshot.NewRedisStore(client)
		store = rs
		dir = rs
		logger.Info("using redis account store", "addr", cfg.RedisAddr)
	default:
		fs, err := snapshot.NewFileStore(cfg.SnapshotDir)
		if err != nil {
			logger.Fatal("failed to open snapshot directory", "error", err)
		}
		store = fs
		dir = fs
		logger.Info("using file account store", "dir", cfg.SnapshotDir)
	}

	svc := service.NewLedgerService(cfg.Ledger, store, dir, txLog)

	r := gin.Default()

	// CORS for production (web app on a different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, svc, dbPool, accounts, version, cfg)

	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && cfg.BotToken != "" && accounts != nil {
		var err error
		adminBot, err = bot.NewAdminBot(cfg.BotToken, accounts, cfg.AdminTelegramIDs)
		if err != nil {
			logger.Error("failed to start admin bot", "error", err)
		} else {
			go adminBot.Start()
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	if adminBot != nil {
		adminBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
