package domain

import (
	"fmt"
	"time"
)

// NanoTON is the fixed-point unit for TON balances (1 TON = 1e9 nano).
// Balances are rendered with 4 decimal places.
const NanoPerTON int64 = 1_000_000_000

// PlayerAccount is the single source of truth for one player's progression.
// It is mutated only through ledger operations.
type PlayerAccount struct {
	PlayerID    string       `json:"player_id"`
	TgID        int64        `json:"tg_id"`
	Username    string       `json:"username"`
	FirstName   string       `json:"first_name"`
	TotalPoints int64        `json:"total_points"`
	TonBalance  int64        `json:"ton_balance_nano"`
	LoginStreak int          `json:"login_streak"`
	LastLogin   string       `json:"last_login_date,omitempty"` // YYYY-MM-DD, empty if never
	Mining      *MiningCycle `json:"mining,omitempty"`
	ReferredIDs []string     `json:"referred_ids,omitempty"`
	CodeClaimed bool         `json:"code_claimed"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ReferralCount derives the referral counter from the referred id set.
func (a *PlayerAccount) ReferralCount() int {
	return len(a.ReferredIDs)
}

// HasReferred reports whether the given id was already counted.
func (a *PlayerAccount) HasReferred(id string) bool {
	for _, r := range a.ReferredIDs {
		if r == id {
			return true
		}
	}
	return false
}

// MiningCycle is the single-slot timed cycle. At most one exists per account;
// a claimed cycle is removed rather than kept around.
type MiningCycle struct {
	StartTime time.Time `json:"start_time"`
	Duration  int64     `json:"duration_seconds"`
}

// CycleState describes where the cycle is on its
// Idle -> Running -> Matured -> Idle path.
type CycleState string

const (
	CycleIdle    CycleState = "idle"
	CycleRunning CycleState = "running"
	CycleMatured CycleState = "matured"
)

// State returns the cycle state at the given instant. A nil cycle is Idle.
func (m *MiningCycle) State(now time.Time) CycleState {
	if m == nil {
		return CycleIdle
	}
	if now.Before(m.MaturesAt()) {
		return CycleRunning
	}
	return CycleMatured
}

func (m *MiningCycle) MaturesAt() time.Time {
	return m.StartTime.Add(time.Duration(m.Duration) * time.Second)
}

// LoginResult is returned by a successful daily login claim.
type LoginResult struct {
	StreakDay     int   `json:"streak_day"`
	PointsAwarded int64 `json:"points_awarded"`
}

// ReferralResult is returned by referral registration. Accepted is false for
// a duplicate id, which is a no-op rather than an error.
type ReferralResult struct {
	Accepted      bool  `json:"accepted"`
	BonusPoints   int64 `json:"bonus_points"`
	ReferralCount int   `json:"referral_count"`
}

// MiningProgress is a pure read of the cycle at a point in time.
type MiningProgress struct {
	Fraction         float64 `json:"fraction"`
	RemainingSeconds int64   `json:"remaining_seconds"`
	Matured          bool    `json:"matured"`
	Active           bool    `json:"active"`
}

// WithdrawResult reports a completed local withdrawal.
type WithdrawResult struct {
	AmountNano int64  `json:"amount_nano"`
	AmountTON  string `json:"amount_ton"`
}

// FormatTON renders a nanoTON amount with the 4 decimal places the client
// displays.
func FormatTON(nano int64) string {
	whole := nano / NanoPerTON
	frac := (nano % NanoPerTON) / 100_000 // 0.0001 TON units
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%04d", whole, frac)
}
