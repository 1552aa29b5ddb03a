package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"twq_coin/internal/snapshot"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository persists player snapshots in Postgres. It is the
// server-side snapshot.Store: the full envelope goes into a jsonb column,
// with a few columns extracted for lookup and the leaderboard.
type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Load(ctx context.Context, playerID string) (*snapshot.Snapshot, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM players WHERE player_id = $1`,
		playerID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, snapshot.ErrNotFound
		}
		return nil, fmt.Errorf("load player %s: %w", playerID, err)
	}

	var s snapshot.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode player %s: %w", playerID, err)
	}
	return &s, nil
}

func (r *AccountRepository) Save(ctx context.Context, playerID string, snap *snapshot.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", playerID, err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO players (player_id, tg_id, username, total_points, ton_balance_nano, snapshot, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (player_id) DO UPDATE
		 SET username = $3, total_points = $4, ton_balance_nano = $5, snapshot = $6, updated_at = now()`,
		playerID, snap.TgID, snap.Username, snap.TotalPoints, tonNano(snap), raw,
	)
	if err != nil {
		return fmt.Errorf("save player %s: %w", playerID, err)
	}
	return nil
}

// FindByTgID maps a Telegram id to the stable player id.
func (r *AccountRepository) FindByTgID(ctx context.Context, tgID int64) (string, error) {
	var playerID string
	err := r.db.QueryRow(ctx,
		`SELECT player_id FROM players WHERE tg_id = $1`,
		tgID,
	).Scan(&playerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", snapshot.ErrNotFound
		}
		return "", fmt.Errorf("find tg %d: %w", tgID, err)
	}
	return playerID, nil
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	TotalPoints int64  `json:"total_points"`
}

// Top returns players ordered by total points.
func (r *AccountRepository) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT player_id, COALESCE(username, ''), total_points
		 FROM players
		 ORDER BY total_points DESC, player_id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Username, &e.TotalPoints); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		res = append(res, e)
	}
	return res, rows.Err()
}

// Stats aggregates totals for the admin bot.
type Stats struct {
	Players     int64
	TotalPoints int64
	TotalTonNano int64
}

func (r *AccountRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_points), 0), COALESCE(SUM(ton_balance_nano), 0) FROM players`,
	).Scan(&s.Players, &s.TotalPoints, &s.TotalTonNano)
	return s, err
}

// tonNano extracts the indexed nano balance from the envelope; a malformed
// balance indexes as zero, the jsonb stays authoritative.
func tonNano(snap *snapshot.Snapshot) int64 {
	acc, err := snap.Account()
	if err != nil {
		return 0
	}
	return acc.TonBalance
}
