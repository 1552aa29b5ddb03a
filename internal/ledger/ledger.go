package ledger

import (
	"errors"
	"time"

	"twq_coin/internal/domain"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAlreadyClaimedToday = errors.New("daily reward already claimed today")
	ErrCycleAlreadyActive  = errors.New("mining cycle already active")
	ErrNotMatured          = errors.New("mining cycle not matured")
	ErrBelowThreshold      = errors.New("balance below withdrawal threshold")
	ErrIncorrectCode       = errors.New("incorrect code")
	ErrCodeAlreadyClaimed  = errors.New("code reward already claimed")
)

const dateLayout = "2006-01-02"

// Ledger is the single authority over a PlayerAccount. Operations validate
// first and mutate only on success, so a rejected operation leaves the
// account untouched. The ledger performs no I/O; time is always passed in.
type Ledger struct {
	cfg Config
	acc *domain.PlayerAccount
}

func New(cfg Config, acc *domain.PlayerAccount) *Ledger {
	return &Ledger{cfg: cfg, acc: acc}
}

func (l *Ledger) Account() *domain.PlayerAccount {
	return l.acc
}

// AddPoints credits a non-negative amount and returns the new total.
// Zero is accepted, negative amounts are rejected.
func (l *Ledger) AddPoints(amount int64) (int64, error) {
	if amount < 0 {
		return l.acc.TotalPoints, ErrInvalidAmount
	}
	l.acc.TotalPoints += amount
	return l.acc.TotalPoints, nil
}

// ClaimDailyLogin accepts at most one claim per calendar day. A gap longer
// than the grace window resets the streak to 1 before applying the reward;
// otherwise the streak increments. The reward table cycles indefinitely.
func (l *Ledger) ClaimDailyLogin(today time.Time) (domain.LoginResult, error) {
	day := dateOf(today)

	if l.acc.LastLogin != "" {
		last, err := time.Parse(dateLayout, l.acc.LastLogin)
		if err == nil {
			if !day.After(last) {
				return domain.LoginResult{}, ErrAlreadyClaimedToday
			}
			gapHours := day.Sub(last).Hours()
			if gapHours > float64(l.cfg.ResetThresholdHours) {
				// missed the grace window, streak starts over
				l.acc.LoginStreak = 0
			}
		}
	}

	l.acc.LoginStreak++
	reward := l.cfg.DailySchedule[(l.acc.LoginStreak-1)%len(l.cfg.DailySchedule)]
	l.acc.TotalPoints += reward
	l.acc.LastLogin = day.Format(dateLayout)

	return domain.LoginResult{StreakDay: l.acc.LoginStreak, PointsAwarded: reward}, nil
}

// StartMiningCycle opens a new cycle. Fails while one is running or sits
// matured-unclaimed.
func (l *Ledger) StartMiningCycle(now time.Time) (*domain.MiningCycle, error) {
	if l.acc.Mining.State(now) != domain.CycleIdle {
		return nil, ErrCycleAlreadyActive
	}
	l.acc.Mining = &domain.MiningCycle{
		StartTime: now.UTC(),
		Duration:  int64(l.cfg.MiningDuration.Seconds()),
	}
	return l.acc.Mining, nil
}

// MiningProgress is a pure read; callers poll it at their own cadence.
func (l *Ledger) MiningProgress(now time.Time) domain.MiningProgress {
	m := l.acc.Mining
	if m == nil {
		return domain.MiningProgress{}
	}
	elapsed := now.Sub(m.StartTime).Seconds()
	total := float64(m.Duration)
	fraction := elapsed / total
	if fraction > 1 {
		fraction = 1
	}
	if fraction < 0 {
		fraction = 0
	}
	remaining := int64(total - elapsed)
	if remaining < 0 {
		remaining = 0
	}
	return domain.MiningProgress{
		Fraction:         fraction,
		RemainingSeconds: remaining,
		Matured:          m.State(now) == domain.CycleMatured,
		Active:           true,
	}
}

// ClaimMiningReward awards the cycle reward plus the referral-derived bonus
// and returns the cycle to idle so a fresh one may start. Claiming early or
// with no cycle fails NotMatured.
func (l *Ledger) ClaimMiningReward(now time.Time) (int64, error) {
	if l.acc.Mining.State(now) != domain.CycleMatured {
		return 0, ErrNotMatured
	}
	award := l.cfg.MiningReward
	award += l.cfg.MiningReward * l.cfg.ReferralBonusPercent * int64(l.acc.ReferralCount()) / 100

	l.acc.Mining = nil
	l.acc.TotalPoints += award
	return award, nil
}

// RegisterReferral counts the referred id once. A duplicate or self referral
// is a no-op success, not an error. The bonus is a fixed percentage of the
// referral base reward, floored.
func (l *Ledger) RegisterReferral(referredID string) (domain.ReferralResult, error) {
	if referredID == "" || referredID == l.acc.PlayerID || l.acc.HasReferred(referredID) {
		return domain.ReferralResult{ReferralCount: l.acc.ReferralCount()}, nil
	}

	bonus := l.cfg.ReferralBaseReward * l.cfg.ReferralBonusPercent / 100
	l.acc.ReferredIDs = append(l.acc.ReferredIDs, referredID)
	if _, err := l.AddPoints(bonus); err != nil {
		return domain.ReferralResult{}, err
	}

	return domain.ReferralResult{
		Accepted:      true,
		BonusPoints:   bonus,
		ReferralCount: l.acc.ReferralCount(),
	}, nil
}

// ClaimCodeReward credits the TON code reward once per account.
func (l *Ledger) ClaimCodeReward(code string) (int64, error) {
	if code != l.cfg.VerificationCode {
		return 0, ErrIncorrectCode
	}
	if l.acc.CodeClaimed {
		return 0, ErrCodeAlreadyClaimed
	}
	l.acc.CodeClaimed = true
	l.acc.TonBalance += l.cfg.CodeRewardNano
	return l.cfg.CodeRewardNano, nil
}

// WithdrawTon zeroes the TON balance and reports the withdrawn amount.
// This is local accounting only; no transfer is performed.
func (l *Ledger) WithdrawTon() (domain.WithdrawResult, error) {
	if l.acc.TonBalance < l.cfg.WithdrawThresholdNano {
		return domain.WithdrawResult{}, ErrBelowThreshold
	}
	amount := l.acc.TonBalance
	l.acc.TonBalance = 0
	return domain.WithdrawResult{
		AmountNano: amount,
		AmountTON:  domain.FormatTON(amount),
	}, nil
}

// ResetProgress clears streak and referral state. Earned balances stay.
func (l *Ledger) ResetProgress() {
	l.acc.LoginStreak = 0
	l.acc.LastLogin = ""
	l.acc.ReferredIDs = nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
