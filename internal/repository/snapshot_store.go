package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stratushr/stratus-backend/internal/config"
	"github.com/stratushr/stratus-backend/internal/model"
)

// SnapshotStore persists attempt progress snapshots in Redis under
// "exam-progress-{employeeID}-{examID}". It implements the session package's
// SnapshotStore interface.
type SnapshotStore struct {
	rdb *redis.Client
}

// NewSnapshotStore creates a Redis-backed snapshot store.
func NewSnapshotStore(rdb *redis.Client) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

// Load fetches a snapshot, returning (nil, nil) when none exists.
func (s *SnapshotStore) Load(ctx context.Context, employeeID int, examID uuid.UUID) (*model.AttemptSnapshot, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.AttemptSnapshotKey(employeeID, examID.String())).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &model.AttemptSnapshot{}
	if err := json.Unmarshal([]byte(raw), snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Save writes a snapshot. Snapshots have no TTL: an abandoned attempt must
// still resume (with zero remaining time) weeks later.
func (s *SnapshotStore) Save(ctx context.Context, employeeID int, examID uuid.UUID, snap *model.AttemptSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptSnapshotKey(employeeID, examID.String()), raw, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot after a successful submission.
func (s *SnapshotStore) Delete(ctx context.Context, employeeID int, examID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.AttemptSnapshotKey(employeeID, examID.String())).Err()
}
