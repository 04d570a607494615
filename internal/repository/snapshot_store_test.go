package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stratushr/stratus-backend/internal/model"
)

// Integration test against a live Redis. Set REDIS_ADDR to run it, e.g.
// REDIS_ADDR=localhost:6379 go test ./internal/repository/...
func testSnapshotStore(t *testing.T) *SnapshotStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		rdb.FlushDB(context.Background())
		rdb.Close()
	})
	return NewSnapshotStore(rdb)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store := testSnapshotStore(t)
	ctx := context.Background()
	examID := uuid.New()

	snap := &model.AttemptSnapshot{
		Answers:   map[string]int{uuid.NewString(): 2},
		TimeLeft:  1800,
		StartTime: 1700000000000,
	}
	if err := store.Save(ctx, 42, examID, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, 42, examID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("snapshot missing after save")
	}
	if loaded.TimeLeft != snap.TimeLeft || loaded.StartTime != snap.StartTime {
		t.Fatalf("loaded = %+v, want %+v", loaded, snap)
	}
	if len(loaded.Answers) != 1 {
		t.Fatalf("answers = %v", loaded.Answers)
	}
}

func TestSnapshotStoreLoadMissing(t *testing.T) {
	store := testSnapshotStore(t)

	snap, err := store.Load(context.Background(), 42, uuid.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestSnapshotStoreDelete(t *testing.T) {
	store := testSnapshotStore(t)
	ctx := context.Background()
	examID := uuid.New()

	snap := &model.AttemptSnapshot{Answers: map[string]int{}, TimeLeft: 60, StartTime: 1}
	if err := store.Save(ctx, 7, examID, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, 7, examID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	loaded, err := store.Load(ctx, 7, examID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatal("snapshot still present after delete")
	}
}
