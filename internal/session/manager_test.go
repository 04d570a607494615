package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestAttachSupersedesPreviousController(t *testing.T) {
	f := newFixture(30, 3)
	m := NewManager(f.deps, zerolog.Nop())
	examID := uuid.New()

	first, err := m.Attach(context.Background(), 1, examID)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	second, err := m.Attach(context.Background(), 1, examID)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer second.Close()

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("first controller not closed by the superseding attach")
	}

	if got := m.Get(1, examID); got != second {
		t.Fatal("manager does not track the superseding controller")
	}
}

func TestReleaseIgnoresSupersededController(t *testing.T) {
	f := newFixture(30, 3)
	m := NewManager(f.deps, zerolog.Nop())
	examID := uuid.New()

	first, err := m.Attach(context.Background(), 1, examID)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	second, err := m.Attach(context.Background(), 1, examID)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer second.Close()

	// The superseded socket disconnecting must not tear down its successor.
	m.Release(1, examID, first)

	if got := m.Get(1, examID); got != second {
		t.Fatal("release of a stale controller removed the live one")
	}

	m.Release(1, examID, second)
	if got := m.Get(1, examID); got != nil {
		t.Fatal("release of the live controller left it registered")
	}
}

func TestControllersAreIsolatedPerAttempt(t *testing.T) {
	f := newFixture(30, 3)
	m := NewManager(f.deps, zerolog.Nop())
	examID := uuid.New()

	a, err := m.Attach(context.Background(), 1, examID)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer a.Close()

	b, err := m.Attach(context.Background(), 2, examID)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer b.Close()

	if a == b {
		t.Fatal("distinct employees share a controller")
	}
	if m.Get(1, examID) != a || m.Get(2, examID) != b {
		t.Fatal("manager mixed up controllers across employees")
	}
}

func TestShutdownClosesEverything(t *testing.T) {
	f := newFixture(30, 3)
	m := NewManager(f.deps, zerolog.Nop())

	a, _ := m.Attach(context.Background(), 1, uuid.New())
	b, _ := m.Attach(context.Background(), 2, uuid.New())

	m.Shutdown()

	for _, ctrl := range []*Controller{a, b} {
		select {
		case <-ctrl.Done():
		case <-time.After(time.Second):
			t.Fatal("controller still running after shutdown")
		}
	}
}
