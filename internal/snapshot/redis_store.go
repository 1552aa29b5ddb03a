package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot JSON under one key per player. A SET is
// atomic on the Redis side, satisfying the same all-or-nothing guarantee as
// the file store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(playerID string) string {
	return "acct:" + playerID
}

func tgKey(tgID int64) string {
	return fmt.Sprintf("acct_tg:%d", tgID)
}

func (r *RedisStore) Load(ctx context.Context, playerID string) (*Snapshot, error) {
	b, err := r.client.Get(ctx, key(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, playerID string, snap *Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, key(playerID), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	// Secondary index for Telegram id lookup. Written after the snapshot so
	// a crash between the two leaves at worst a re-creatable mapping gap.
	if snap.TgID != 0 {
		if err := r.client.Set(ctx, tgKey(snap.TgID), playerID, 0).Err(); err != nil {
			return fmt.Errorf("redis set tg index: %w", err)
		}
	}
	return nil
}

// FindByTgID resolves a Telegram id through the secondary index key.
func (r *RedisStore) FindByTgID(ctx context.Context, tgID int64) (string, error) {
	playerID, err := r.client.Get(ctx, tgKey(tgID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get tg index: %w", err)
	}
	return playerID, nil
}
