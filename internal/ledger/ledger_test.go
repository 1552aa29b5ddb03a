package ledger

import (
	"errors"
	"testing"
	"time"

	"twq_coin/internal/domain"
)

func newTestLedger() *Ledger {
	return New(DefaultConfig(), &domain.PlayerAccount{PlayerID: "p-1"})
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAddPoints(t *testing.T) {
	l := newTestLedger()

	total, err := l.AddPoints(42)
	if err != nil || total != 42 {
		t.Fatalf("AddPoints(42) = %d, %v; want 42, nil", total, err)
	}

	// zero is accepted
	total, err = l.AddPoints(0)
	if err != nil || total != 42 {
		t.Fatalf("AddPoints(0) = %d, %v; want 42, nil", total, err)
	}

	// negative is rejected and leaves the total unchanged
	total, err = l.AddPoints(-1)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("AddPoints(-1) err = %v; want ErrInvalidAmount", err)
	}
	if total != 42 || l.Account().TotalPoints != 42 {
		t.Fatalf("total changed after rejected add: %d", l.Account().TotalPoints)
	}
}

func TestClaimDailyLogin_OncePerDay(t *testing.T) {
	l := newTestLedger()

	res, err := l.ClaimDailyLogin(date("2025-03-01"))
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if res.StreakDay != 1 || res.PointsAwarded != DefaultDailySchedule[0] {
		t.Fatalf("first claim = %+v", res)
	}

	if _, err := l.ClaimDailyLogin(date("2025-03-01")); !errors.Is(err, ErrAlreadyClaimedToday) {
		t.Fatalf("second claim err = %v; want ErrAlreadyClaimedToday", err)
	}
	if l.Account().LoginStreak != 1 {
		t.Fatalf("streak moved on rejected claim: %d", l.Account().LoginStreak)
	}
}

func TestClaimDailyLogin_StreakAndReset(t *testing.T) {
	l := newTestLedger()

	if _, err := l.ClaimDailyLogin(date("2025-03-01")); err != nil {
		t.Fatal(err)
	}
	res, err := l.ClaimDailyLogin(date("2025-03-02"))
	if err != nil || res.StreakDay != 2 {
		t.Fatalf("consecutive day: %+v, %v", res, err)
	}

	// two missed days exceed the 24h grace window
	res, err = l.ClaimDailyLogin(date("2025-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if res.StreakDay != 1 || res.PointsAwarded != DefaultDailySchedule[0] {
		t.Fatalf("streak not reset after gap: %+v", res)
	}
}

func TestClaimDailyLogin_ScheduleCycles(t *testing.T) {
	l := newTestLedger()

	day := date("2025-01-01")
	var last domain.LoginResult
	for i := 0; i < 31; i++ {
		res, err := l.ClaimDailyLogin(day.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
		last = res
	}

	if last.StreakDay != 31 {
		t.Fatalf("streak = %d; want 31", last.StreakDay)
	}
	if last.PointsAwarded != DefaultDailySchedule[0] {
		t.Fatalf("day 31 award = %d; want day 1 award %d", last.PointsAwarded, DefaultDailySchedule[0])
	}
}

func TestMiningCycle_FullPath(t *testing.T) {
	l := newTestLedger()
	t0 := time.Unix(1_700_000_000, 0)

	if _, err := l.StartMiningCycle(t0); err != nil {
		t.Fatalf("start: %v", err)
	}

	// second start while running
	if _, err := l.StartMiningCycle(t0.Add(time.Minute)); !errors.Is(err, ErrCycleAlreadyActive) {
		t.Fatalf("start while running err = %v; want ErrCycleAlreadyActive", err)
	}

	// halfway through
	p := l.MiningProgress(t0.Add(10800 * time.Second))
	if p.Fraction != 0.5 || p.Matured || !p.Active {
		t.Fatalf("progress at half = %+v", p)
	}
	if p.RemainingSeconds != 10800 {
		t.Fatalf("remaining = %d; want 10800", p.RemainingSeconds)
	}

	// early claim
	if _, err := l.ClaimMiningReward(t0.Add(10800 * time.Second)); !errors.Is(err, ErrNotMatured) {
		t.Fatalf("early claim err = %v; want ErrNotMatured", err)
	}

	// start while matured-unclaimed is still blocked
	if _, err := l.StartMiningCycle(t0.Add(21600 * time.Second)); !errors.Is(err, ErrCycleAlreadyActive) {
		t.Fatalf("start while matured err = %v; want ErrCycleAlreadyActive", err)
	}

	award, err := l.ClaimMiningReward(t0.Add(21600 * time.Second))
	if err != nil {
		t.Fatalf("claim at maturity: %v", err)
	}
	if award != 5 || l.Account().TotalPoints != 5 {
		t.Fatalf("award = %d, total = %d; want 5, 5", award, l.Account().TotalPoints)
	}

	// cycle is gone, a repeat claim fails and a fresh start succeeds
	if _, err := l.ClaimMiningReward(t0.Add(21601 * time.Second)); !errors.Is(err, ErrNotMatured) {
		t.Fatalf("repeat claim err = %v; want ErrNotMatured", err)
	}
	if _, err := l.StartMiningCycle(t0.Add(21700 * time.Second)); err != nil {
		t.Fatalf("restart: %v", err)
	}
}

func TestMiningProgress_NoCycle(t *testing.T) {
	l := newTestLedger()
	p := l.MiningProgress(time.Now())
	if p.Active || p.Matured || p.Fraction != 0 {
		t.Fatalf("idle progress = %+v", p)
	}
}

func TestClaimMiningReward_ReferralBonus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MiningReward = 100
	cfg.ReferralBonusPercent = 2
	l := New(cfg, &domain.PlayerAccount{PlayerID: "p-1"})

	for _, id := range []string{"a", "b", "c"} {
		if _, err := l.RegisterReferral(id); err != nil {
			t.Fatal(err)
		}
	}
	base := l.Account().TotalPoints

	t0 := time.Unix(0, 0)
	if _, err := l.StartMiningCycle(t0); err != nil {
		t.Fatal(err)
	}
	award, err := l.ClaimMiningReward(t0.Add(cfg.MiningDuration))
	if err != nil {
		t.Fatal(err)
	}

	// 100 + floor(100*2*3/100) = 106
	if award != 106 {
		t.Fatalf("award = %d; want 106", award)
	}
	if l.Account().TotalPoints != base+106 {
		t.Fatalf("total = %d; want %d", l.Account().TotalPoints, base+106)
	}
}

func TestRegisterReferral_Idempotent(t *testing.T) {
	l := newTestLedger()

	res, err := l.RegisterReferral("friend-1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Accepted || res.ReferralCount != 1 {
		t.Fatalf("first registration = %+v", res)
	}
	wantBonus := DefaultConfig().ReferralBaseReward * DefaultConfig().ReferralBonusPercent / 100
	if res.BonusPoints != wantBonus || l.Account().TotalPoints != wantBonus {
		t.Fatalf("bonus = %d, total = %d; want %d", res.BonusPoints, l.Account().TotalPoints, wantBonus)
	}

	res, err = l.RegisterReferral("friend-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted || res.BonusPoints != 0 || res.ReferralCount != 1 {
		t.Fatalf("duplicate registration = %+v", res)
	}
	if l.Account().TotalPoints != wantBonus {
		t.Fatalf("duplicate credited points: %d", l.Account().TotalPoints)
	}
}

func TestRegisterReferral_Self(t *testing.T) {
	l := newTestLedger()
	res, err := l.RegisterReferral(l.Account().PlayerID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted || l.Account().ReferralCount() != 0 {
		t.Fatalf("self referral accepted: %+v", res)
	}
}

func TestClaimCodeReward(t *testing.T) {
	l := newTestLedger()

	if _, err := l.ClaimCodeReward("0000"); !errors.Is(err, ErrIncorrectCode) {
		t.Fatalf("wrong code err = %v; want ErrIncorrectCode", err)
	}
	if l.Account().TonBalance != 0 {
		t.Fatalf("balance moved on wrong code: %d", l.Account().TonBalance)
	}

	nano, err := l.ClaimCodeReward("1234")
	if err != nil {
		t.Fatal(err)
	}
	if nano != 29_900_000 || l.Account().TonBalance != 29_900_000 {
		t.Fatalf("credited %d, balance %d", nano, l.Account().TonBalance)
	}

	if _, err := l.ClaimCodeReward("1234"); !errors.Is(err, ErrCodeAlreadyClaimed) {
		t.Fatalf("repeat claim err = %v; want ErrCodeAlreadyClaimed", err)
	}
}

func TestWithdrawTon(t *testing.T) {
	l := newTestLedger()
	l.Account().TonBalance = 999_999_999 // just under 1 TON

	if _, err := l.WithdrawTon(); !errors.Is(err, ErrBelowThreshold) {
		t.Fatalf("below threshold err = %v; want ErrBelowThreshold", err)
	}
	if l.Account().TonBalance != 999_999_999 {
		t.Fatalf("balance changed on rejected withdrawal: %d", l.Account().TonBalance)
	}

	l.Account().TonBalance = 1_234_500_000
	res, err := l.WithdrawTon()
	if err != nil {
		t.Fatal(err)
	}
	if res.AmountNano != 1_234_500_000 || res.AmountTON != "1.2345" {
		t.Fatalf("withdrawal = %+v", res)
	}
	if l.Account().TonBalance != 0 {
		t.Fatalf("balance after withdrawal = %d; want 0", l.Account().TonBalance)
	}
}

func TestResetProgress_KeepsBalances(t *testing.T) {
	l := newTestLedger()

	if _, err := l.AddPoints(500); err != nil {
		t.Fatal(err)
	}
	l.Account().TonBalance = 42
	if _, err := l.ClaimDailyLogin(date("2025-06-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := l.RegisterReferral("x"); err != nil {
		t.Fatal(err)
	}

	before := l.Account().TotalPoints
	l.ResetProgress()

	acc := l.Account()
	if acc.LoginStreak != 0 || acc.LastLogin != "" || acc.ReferralCount() != 0 {
		t.Fatalf("progress not cleared: %+v", acc)
	}
	if acc.TotalPoints != before || acc.TonBalance != 42 {
		t.Fatalf("balances touched by reset: points=%d ton=%d", acc.TotalPoints, acc.TonBalance)
	}

	// streak starts from day 1 again
	res, err := l.ClaimDailyLogin(date("2025-06-02"))
	if err != nil || res.StreakDay != 1 {
		t.Fatalf("claim after reset = %+v, %v", res, err)
	}
}

func TestFormatTON(t *testing.T) {
	cases := []struct {
		nano int64
		want string
	}{
		{0, "0.0000"},
		{29_900_000, "0.0299"},
		{1_000_000_000, "1.0000"},
		{1_234_500_000, "1.2345"},
		{10_000_100_000, "10.0001"},
	}
	for _, tc := range cases {
		if got := domain.FormatTON(tc.nano); got != tc.want {
			t.Fatalf("FormatTON(%d) = %s; want %s", tc.nano, got, tc.want)
		}
	}
}
