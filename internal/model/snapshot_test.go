package model

import (
	"testing"
	"time"
)

func TestSnapshotRemaining(t *testing.T) {
	now := time.Now().UnixMilli()

	tests := []struct {
		name       string
		timeLeft   int
		writtenAgo time.Duration
		want       int
	}{
		{"just written", 600, 0, 600},
		{"one minute away", 600, time.Minute, 540},
		{"exactly expired", 60, time.Minute, 0},
		{"long expired", 60, time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &AttemptSnapshot{
				TimeLeft:  tt.timeLeft,
				StartTime: now - tt.writtenAgo.Milliseconds(),
			}
			if got := snap.Remaining(now); got != tt.want {
				t.Fatalf("Remaining = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSnapshotRemainingNeverNegative(t *testing.T) {
	snap := &AttemptSnapshot{TimeLeft: 10, StartTime: 0}
	if got := snap.Remaining(time.Now().UnixMilli()); got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}
}
