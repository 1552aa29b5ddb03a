package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"twq_coin/internal/ledger"
	"twq_coin/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	SnapshotDir string // file store fallback when no database is configured
	RedisAddr   string
	RedisDB     int

	BotToken         string
	BotUsername      string
	JWTSecret        string
	AdminTelegramIDs []int64
	AdminBotEnabled  bool

	// Economy
	Ledger ledger.Config

	// Rate limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Load reads .env and the environment. The database is optional: without
// DATABASE_URL the server falls back to file snapshots under SNAPSHOT_DIR.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "twq_coin_bot"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	snapshotDir := os.Getenv("SNAPSHOT_DIR")
	if snapshotDir == "" {
		snapshotDir = "data/snapshots"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	// admin tg ids, comma separated
	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SnapshotDir:      snapshotDir,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisDB:          redisDB,
		BotToken:         botToken,
		BotUsername:      botUsername,
		JWTSecret:        jwtSecret,
		AdminTelegramIDs: adminIDs,
		AdminBotEnabled:  os.Getenv("ADMIN_BOT_ENABLED") == "true",
		Ledger:           loadLedgerConfig(),
		APIRateLimit:     envInt("API_RATE_LIMIT", 10),
		APIRateWindow:    envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		AuthRateLimit:    envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:   envSeconds("AUTH_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func loadLedgerConfig() ledger.Config {
	cfg := ledger.DefaultConfig()

	if n := envInt("MINING_DURATION_SECONDS", 0); n > 0 {
		cfg.MiningDuration = time.Duration(n) * time.Second
	}
	if n := envInt("MINING_REWARD", 0); n > 0 {
		cfg.MiningReward = int64(n)
	}
	if n := envInt("STREAK_RESET_HOURS", 0); n > 0 {
		cfg.ResetThresholdHours = n
	}
	if n := envInt("REFERRAL_BASE_REWARD", 0); n > 0 {
		cfg.ReferralBaseReward = int64(n)
	}
	if n := envInt("REFERRAL_BONUS_PERCENT", 0); n > 0 {
		cfg.ReferralBonusPercent = int64(n)
	}
	if n := envInt64("CODE_REWARD_NANO", 0); n > 0 {
		cfg.CodeRewardNano = n
	}
	if n := envInt64("WITHDRAW_THRESHOLD_NANO", 0); n > 0 {
		cfg.WithdrawThresholdNano = n
	}
	if s := os.Getenv("DAILY_SCHEDULE"); s != "" {
		if sched := parseSchedule(s); len(sched) > 0 {
			cfg.DailySchedule = sched
		}
	}
	if v := os.Getenv("VERIFICATION_CODE"); v != "" {
		cfg.VerificationCode = v
	}
	return cfg
}

// parseSchedule reads a comma separated reward list, e.g. "10,20,30". Any
// malformed or negative entry rejects the whole list so a typo cannot
// silently shrink the schedule.
func parseSchedule(s string) []int64 {
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
