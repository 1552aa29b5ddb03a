package ledger

import "time"

// Config holds the economy constants. Defaults mirror the production client.
type Config struct {
	MiningDuration time.Duration // full cycle length
	MiningReward   int64         // points per claimed cycle

	DailySchedule       []int64 // cyclic reward table indexed by (streak-1) % len
	ResetThresholdHours int     // grace window; a longer gap resets the streak

	ReferralBaseReward   int64 // base the registration bonus is computed from
	ReferralBonusPercent int64 // integer percent, floored

	CodeRewardNano        int64  // TON credited for a correct verification code
	WithdrawThresholdNano int64  // minimum balance for a withdrawal
	VerificationCode      string
}

// DefaultDailySchedule is the 30-day login reward table. Day 31 cycles back
// to day 1.
var DefaultDailySchedule = []int64{
	10, 20, 30, 40, 50, 60, 70, 80, 90, 100,
	110, 120, 130, 140, 150, 160, 170, 180, 190, 200,
	210, 220, 230, 240, 250, 260, 270, 280, 290, 300,
}

func DefaultConfig() Config {
	return Config{
		MiningDuration:        21600 * time.Second, // 6 hours
		MiningReward:          5,
		DailySchedule:         DefaultDailySchedule,
		ResetThresholdHours:   24,
		ReferralBaseReward:    100,
		ReferralBonusPercent:  2,
		CodeRewardNano:        29_900_000,    // 0.0299 TON
		WithdrawThresholdNano: 1_000_000_000, // 1 TON
		VerificationCode:      "1234",
	}
}
