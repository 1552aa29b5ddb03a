package config

import (
	"testing"
	"time"

	"twq_coin/internal/ledger"
)

func TestLoadLedgerConfig_Overrides(t *testing.T) {
	t.Setenv("MINING_DURATION_SECONDS", "60")
	t.Setenv("MINING_REWARD", "7")
	t.Setenv("CODE_REWARD_NANO", "50000000")
	t.Setenv("WITHDRAW_THRESHOLD_NANO", "2000000000")
	t.Setenv("DAILY_SCHEDULE", "5, 10, 15")

	cfg := loadLedgerConfig()

	if cfg.MiningDuration != time.Minute {
		t.Fatalf("mining duration = %v; want 1m", cfg.MiningDuration)
	}
	if cfg.MiningReward != 7 {
		t.Fatalf("mining reward = %d; want 7", cfg.MiningReward)
	}
	if cfg.CodeRewardNano != 50_000_000 {
		t.Fatalf("code reward = %d; want 50000000", cfg.CodeRewardNano)
	}
	if cfg.WithdrawThresholdNano != 2_000_000_000 {
		t.Fatalf("withdraw threshold = %d; want 2000000000", cfg.WithdrawThresholdNano)
	}
	if len(cfg.DailySchedule) != 3 || cfg.DailySchedule[2] != 15 {
		t.Fatalf("schedule = %v; want [5 10 15]", cfg.DailySchedule)
	}
}

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	for _, key := range []string{"CODE_REWARD_NANO", "WITHDRAW_THRESHOLD_NANO", "DAILY_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := loadLedgerConfig()
	def := ledger.DefaultConfig()

	if cfg.CodeRewardNano != def.CodeRewardNano {
		t.Fatalf("code reward = %d; want default %d", cfg.CodeRewardNano, def.CodeRewardNano)
	}
	if cfg.WithdrawThresholdNano != def.WithdrawThresholdNano {
		t.Fatalf("withdraw threshold = %d; want default %d", cfg.WithdrawThresholdNano, def.WithdrawThresholdNano)
	}
	if len(cfg.DailySchedule) != len(ledger.DefaultDailySchedule) {
		t.Fatalf("schedule length = %d; want %d", len(cfg.DailySchedule), len(ledger.DefaultDailySchedule))
	}
}

func TestParseSchedule_RejectsMalformed(t *testing.T) {
	cases := []string{"5,x,15", "5,-1", "", ","}
	for _, in := range cases {
		if got := parseSchedule(in); got != nil {
			t.Fatalf("parseSchedule(%q) = %v; want nil", in, got)
		}
	}
}
