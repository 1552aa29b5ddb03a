package snapshot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"twq_coin/internal/domain"
)

// Version is the current snapshot envelope version. Older snapshots decode
// into the same struct with missing fields as zero values.
const Version = 1

// Snapshot is the complete persisted representation of one PlayerAccount.
// It is always written as one unit so a crash cannot leave partial state.
type Snapshot struct {
	Version       int       `json:"version"`
	PlayerID      string    `json:"player_id"`
	TgID          int64     `json:"tg_id,omitempty"`
	Username      string    `json:"username,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	TotalPoints   int64     `json:"total_points"`
	TonBalance    string    `json:"ton_balance"` // decimal string, 4+ places
	LoginStreak   int       `json:"login_streak"`
	LastLoginDate string    `json:"last_login_date,omitempty"`
	MiningStart   int64     `json:"mining_start_time,omitempty"` // unix seconds
	MiningSeconds int64     `json:"mining_duration_seconds,omitempty"`
	IsMining      bool      `json:"is_mining"`
	ReferralCount int       `json:"referral_count"`
	ReferredIDs   []string  `json:"referred_ids,omitempty"`
	CodeClaimed   bool      `json:"code_claimed"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromAccount builds the persisted form of an account.
func FromAccount(acc *domain.PlayerAccount) *Snapshot {
	s := &Snapshot{
		Version:       Version,
		PlayerID:      acc.PlayerID,
		TgID:          acc.TgID,
		Username:      acc.Username,
		FirstName:     acc.FirstName,
		TotalPoints:   acc.TotalPoints,
		TonBalance:    formatTON(acc.TonBalance),
		LoginStreak:   acc.LoginStreak,
		LastLoginDate: acc.LastLogin,
		ReferralCount: acc.ReferralCount(),
		ReferredIDs:   append([]string(nil), acc.ReferredIDs...),
		CodeClaimed:   acc.CodeClaimed,
		CreatedAt:     acc.CreatedAt,
	}
	if acc.Mining != nil {
		s.IsMining = true
		s.MiningStart = acc.Mining.StartTime.Unix()
		s.MiningSeconds = acc.Mining.Duration
	}
	return s
}

// Account restores the in-memory form. Fails only on a malformed balance.
func (s *Snapshot) Account() (*domain.PlayerAccount, error) {
	nano, err := parseTON(s.TonBalance)
	if err != nil {
		return nil, fmt.Errorf("snapshot ton balance: %w", err)
	}
	acc := &domain.PlayerAccount{
		PlayerID:    s.PlayerID,
		TgID:        s.TgID,
		Username:    s.Username,
		FirstName:   s.FirstName,
		TotalPoints: s.TotalPoints,
		TonBalance:  nano,
		LoginStreak: s.LoginStreak,
		LastLogin:   s.LastLoginDate,
		ReferredIDs: append([]string(nil), s.ReferredIDs...),
		CodeClaimed: s.CodeClaimed,
		CreatedAt:   s.CreatedAt,
	}
	if s.IsMining {
		acc.Mining = &domain.MiningCycle{
			StartTime: time.Unix(s.MiningStart, 0).UTC(),
			Duration:  s.MiningSeconds,
		}
	}
	return acc, nil
}

// formatTON renders nanoTON as a decimal string with at least 4 fraction
// digits, extending to 9 only when sub-0.0001 precision is present so the
// round trip is lossless.
func formatTON(nano int64) string {
	whole := nano / domain.NanoPerTON
	frac := nano % domain.NanoPerTON
	if frac < 0 {
		frac = -frac
	}
	out := fmt.Sprintf("%d.%09d", whole, frac)
	// trim trailing zeros but keep the 4 display places
	for strings.HasSuffix(out, "0") && len(out)-strings.IndexByte(out, '.') > 5 {
		out = out[:len(out)-1]
	}
	return out
}

func parseTON(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 9 {
		return 0, errors.New("too many fraction digits")
	}
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("malformed decimal %q", s)
		}
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed decimal %q", s)
	}
	if w < 0 {
		return 0, errors.New("negative balance")
	}
	var f int64
	if frac != "" {
		for len(frac) < 9 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed decimal %q", s)
		}
	}
	return w*domain.NanoPerTON + f, nil
}
