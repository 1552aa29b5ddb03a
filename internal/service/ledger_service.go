package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"twq_coin/internal/domain"
	"twq_coin/internal/ledger"
	"twq_coin/internal/logger"
	"twq_coin/internal/snapshot"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrPersistence marks a failed snapshot read or write. The operation it
	// wraps was not applied.
	ErrPersistence = errors.New("persistence failure")
)

// Directory resolves external identities to the stable player id.
type Directory interface {
	FindByTgID(ctx context.Context, tgID int64) (string, error)
}

// TxLog records balance movements for audit. Optional.
type TxLog interface {
	Create(ctx context.Context, tx *domain.Transaction) error
}

// LedgerService serializes all mutations of one account behind a per-player
// lock and makes every mutation durable before it becomes visible: the
// snapshot is written first, and only a successful write commits the change.
type LedgerService struct {
	cfg   ledger.Config
	store snapshot.Store
	dir   Directory
	txLog TxLog

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedgerService(cfg ledger.Config, store snapshot.Store, dir Directory, txLog TxLog) *LedgerService {
	return &LedgerService{
		cfg:   cfg,
		store: store,
		dir:   dir,
		txLog: txLog,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *LedgerService) lock(playerID string) func() {
	s.mu.Lock()
	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// update loads the snapshot, applies op to a fresh in-memory account and
// persists the result. If either the load, the op or the durable write
// fails, no mutation survives.
func (s *LedgerService) update(ctx context.Context, playerID string, op func(*ledger.Ledger) error) (*domain.PlayerAccount, error) {
	unlock := s.lock(playerID)
	defer unlock()

	acc, err := s.load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	l := ledger.New(s.cfg, acc)
	if err := op(l); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, playerID, snapshot.FromAccount(acc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return acc, nil
}

func (s *LedgerService) load(ctx context.Context, playerID string) (*domain.PlayerAccount, error) {
	snap, err := s.store.Load(ctx, playerID)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	acc, err := snap.Account()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return acc, nil
}

func (s *LedgerService) record(ctx context.Context, playerID, txType string, amount int64, meta map[string]interface{}) {
	if s.txLog == nil {
		return
	}
	tx := &domain.Transaction{PlayerID: playerID, Type: txType, Amount: amount, Meta: meta}
	if err := s.txLog.Create(ctx, tx); err != nil {
		logger.Warn("transaction log write failed", "player_id", playerID, "type", txType, "error", err)
	}
}

// TgUser is the identity extracted from validated Telegram init data.
type TgUser struct {
	ID        int64
	Username  string
	FirstName string
}

// Authenticate finds or creates the account for a Telegram user and performs
// the automatic daily login claim the client used to do on launch. The
// returned LoginResult is nil when today was already claimed.
func (s *LedgerService) Authenticate(ctx context.Context, tg TgUser, now time.Time) (*domain.PlayerAccount, *domain.LoginResult, error) {
	playerID, err := s.dir.FindByTgID(ctx, tg.ID)
	if errors.Is(err, snapshot.ErrNotFound) {
		playerID, err = s.createAccount(ctx, tg, now)
	}
	if err != nil {
		return nil, nil, err
	}

	var login *domain.LoginResult
	acc, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		res, err := l.ClaimDailyLogin(now)
		if errors.Is(err, ledger.ErrAlreadyClaimedToday) {
			return nil
		}
		if err != nil {
			return err
		}
		login = &res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if login != nil {
		s.record(ctx, playerID, domain.TxDailyLogin, login.PointsAwarded,
			map[string]interface{}{"streak_day": login.StreakDay, "auto": true})
	}
	return acc, login, nil
}

func (s *LedgerService) createAccount(ctx context.Context, tg TgUser, now time.Time) (string, error) {
	acc := &domain.PlayerAccount{
		PlayerID:  uuid.NewString(),
		TgID:      tg.ID,
		Username:  tg.Username,
		FirstName: tg.FirstName,
		CreatedAt: now.UTC(),
	}
	if err := s.store.Save(ctx, acc.PlayerID, snapshot.FromAccount(acc)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	logger.Info("player account created", "player_id", acc.PlayerID, "tg_id", tg.ID)
	return acc.PlayerID, nil
}

// Get returns the current account state without mutating it.
func (s *LedgerService) Get(ctx context.Context, playerID string) (*domain.PlayerAccount, error) {
	unlock := s.lock(playerID)
	defer unlock()
	return s.load(ctx, playerID)
}

func (s *LedgerService) AddPoints(ctx context.Context, playerID string, amount int64) (int64, error) {
	var total int64
	_, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		var err error
		total, err = l.AddPoints(amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	if amount != 0 {
		s.record(ctx, playerID, domain.TxTap, amount, nil)
	}
	return total, nil
}

func (s *LedgerService) ClaimDailyLogin(ctx context.Context, playerID string, today time.Time) (domain.LoginResult, error) {
	var res domain.LoginResult
	_, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		var err error
		res, err = l.ClaimDailyLogin(today)
		return err
	})
	if err != nil {
		return domain.LoginResult{}, err
	}
	s.record(ctx, playerID, domain.TxDailyLogin, res.PointsAwarded,
		map[string]interface{}{"streak_day": res.StreakDay})
	return res, nil
}

func (s *LedgerService) StartMining(ctx context.Context, playerID string, now time.Time) (*domain.MiningCycle, error) {
	var cycle *domain.MiningCycle
	_, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		var err error
		cycle, err = l.StartMiningCycle(now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// MiningProgress is a pure read computed from wall-clock time.
func (s *LedgerService) MiningProgress(ctx context.Context, playerID string, now time.Time) (domain.MiningProgress, error) {
	acc, err := s.Get(ctx, playerID)
	if err != nil {
		return domain.MiningProgress{}, err
	}
	return ledger.New(s.cfg, acc).MiningProgress(now), nil
}

func (s *LedgerService) ClaimMining(ctx context.Context, playerID string, now time.Time) (int64, error) {
	var award int64
	_, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		var err error
		award, err = l.ClaimMiningReward(now)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.record(ctx, playerID, domain.TxMiningClaim, award, nil)
	return award, nil
}

// RegisterReferral credits the referrer for a newly referred player. The
// referred id is the joining player's stable id, counted once.
func (s *LedgerService) RegisterReferral(ctx context.Context, referrerID, referredID string) (domain.ReferralResult, error) {
	var res domain.ReferralResult
	_, err := s.update(ctx, referrerID, func(l *ledger.Ledger) error {
		var err error
		res, err = l.RegisterReferral(referredID)
		return err
	})
	if err != nil {
		return domain.ReferralResult{}, err
	}
	if res.Accepted {
		s.record(ctx, referrerID, domain.TxReferralBonus, res.BonusPoints,
			map[string]interface{}{"referred_id": referredID})
	}
	return res, nil
}

func (s *LedgerService) ClaimCodeReward(ctx context.Context, playerID, code string) (int64, error) {
	var nano int64
	_, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		var err error
		nano, err = l.ClaimCodeReward(code)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.record(ctx, playerID, domain.TxCodeReward, nano, nil)
	return nano, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, playerID string) (domain.WithdrawResult, error) {
	var res domain.WithdrawResult
	_, err := s.update(ctx, playerID, func(l *ledger.Ledger) error {
		var err error
		res, err = l.WithdrawTon()
		return err
	})
	if err != nil {
		return domain.WithdrawResult{}, err
	}
	s.record(ctx, playerID, domain.TxWithdraw, -res.AmountNano, nil)
	return res, nil
}

// Reset clears streak and referral progress, keeping earned balances.
func (s *LedgerService) Reset(ctx context.Context, playerID string) (*domain.PlayerAccount, error) {
	return s.update(ctx, playerID, func(l *ledger.Ledger) error {
		l.ResetProgress()
		return nil
	})
}
