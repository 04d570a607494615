package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type attemptKey struct {
	employeeID int
	examID     uuid.UUID
}

// Manager tracks the live controller for each (employee, exam) pair. At most
// one controller exists per pair: attaching from a second tab or device
// supersedes the first, which is closed and later resumes nothing (the new
// controller restored its snapshot).
type Manager struct {
	deps Deps
	log  zerolog.Logger

	mu       sync.Mutex
	sessions map[attemptKey]*Controller
}

// NewManager creates a session manager using deps for every controller it
// spawns.
func NewManager(deps Deps, log zerolog.Logger) *Manager {
	return &Manager{
		deps:     deps,
		log:      log.With().Str("component", "session_manager").Logger(),
		sessions: make(map[attemptKey]*Controller),
	}
}

// Attach creates and starts a controller for the pair, superseding any live
// one. The previous controller is closed first so its last snapshot is the
// one the new controller resumes from.
func (m *Manager) Attach(ctx context.Context, employeeID int, examID uuid.UUID) (*Controller, error) {
	key := attemptKey{employeeID: employeeID, examID: examID}

	m.mu.Lock()
	if prev, ok := m.sessions[key]; ok {
		prev.Close()
		delete(m.sessions, key)
		m.log.Info().Int("employee_id", employeeID).Str("exam_id", examID.String()).Msg("Superseding existing session")
	}
	m.mu.Unlock()

	ctrl := NewController(employeeID, examID, m.deps, m.log)
	if err := ctrl.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[key] = ctrl
	m.mu.Unlock()

	return ctrl, nil
}

// Release closes and forgets the controller, but only if ctrl is still the
// registered one; a superseded controller releasing itself must not tear
// down its successor.
func (m *Manager) Release(employeeID int, examID uuid.UUID, ctrl *Controller) {
	key := attemptKey{employeeID: employeeID, examID: examID}

	m.mu.Lock()
	if current, ok := m.sessions[key]; ok && current == ctrl {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	ctrl.Close()
}

// Get returns the live controller for the pair, or nil.
func (m *Manager) Get(employeeID int, examID uuid.UUID) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[attemptKey{employeeID: employeeID, examID: examID}]
}

// Shutdown closes every live controller. Snapshots stay in the store, so
// candidates resume where they left off after a restart.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, ctrl := range m.sessions {
		ctrl.Close()
		delete(m.sessions, key)
	}
}
