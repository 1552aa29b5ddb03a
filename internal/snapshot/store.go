package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no snapshot exists for the player.
var ErrNotFound = errors.New("snapshot not found")

// Store persists complete snapshots, one record per player. Save must be
// atomic: a crash mid-write may lose the new snapshot but never corrupt the
// previous one.
type Store interface {
	Load(ctx context.Context, playerID string) (*Snapshot, error)
	Save(ctx context.Context, playerID string, snap *Snapshot) error
}
