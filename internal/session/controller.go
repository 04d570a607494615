package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/model"
)

// Interval defaults. Tests override these through Deps.
const (
	DefaultTickInterval    = 1 * time.Second
	DefaultPersistInterval = 5 * time.Second
	DefaultProctorInterval = 20 * time.Second
)

// ErrAttemptClosed is returned when an operation arrives after submission
// has begun.
var ErrAttemptClosed = errors.New("attempt is already submitting or submitted")

// Deps bundles the collaborators and tunables a Controller needs.
type Deps struct {
	Store      SnapshotStore
	Exams      ExamSource
	Grader     Grader
	Analyzer   FrameAnalyzer
	Answers    AnswerSink
	Violations ViolationSink

	// Zero values fall back to the package defaults.
	TickInterval    time.Duration
	PersistInterval time.Duration
	ProctorInterval time.Duration
	MaxViolations   int
}

// Controller manages one live exam attempt. All mutable state is guarded by
// mu; the three periodic activities (countdown, snapshot persistence,
// proctoring) run on a single goroutine and interleave with calls arriving
// from the transport layer.
type Controller struct {
	examID     uuid.UUID
	employeeID int
	deps       Deps
	log        zerolog.Logger

	tickEvery    time.Duration
	persistEvery time.Duration
	proctorEvery time.Duration

	mu             sync.Mutex
	paper          *model.ExamPaper
	answers        map[string]int
	remaining      int
	violationCount int
	maxViolations  int
	submitting     bool
	submitted      bool
	analyzing      bool
	timeUpFired    bool
	latestFrame    string

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewController creates a controller for one (employee, exam) attempt.
// Call Start before using it.
func NewController(employeeID int, examID uuid.UUID, deps Deps, log zerolog.Logger) *Controller {
	c := &Controller{
		examID:       examID,
		employeeID:   employeeID,
		deps:         deps,
		log:          log.With().Str("component", "session_controller").Int("employee_id", employeeID).Str("exam_id", examID.String()).Logger(),
		tickEvery:    deps.TickInterval,
		persistEvery: deps.PersistInterval,
		proctorEvery: deps.ProctorInterval,
		answers:      make(map[string]int),
		events:       make(chan Event, 32),
		done:         make(chan struct{}),
	}
	if c.tickEvery <= 0 {
		c.tickEvery = DefaultTickInterval
	}
	if c.persistEvery <= 0 {
		c.persistEvery = DefaultPersistInterval
	}
	if c.proctorEvery <= 0 {
		c.proctorEvery = DefaultProctorInterval
	}
	return c
}

// Events exposes the controller-to-client notification stream. The channel
// is never closed; listen on Done to know when the controller stops.
func (c *Controller) Events() <-chan Event { return c.events }

// Done is closed when the controller has torn down its timers.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Start fetches the exam paper, restores or initializes the attempt
// snapshot, and launches the periodic loop. A paper fetch failure is fatal
// and leaves the controller unstarted.
func (c *Controller) Start(ctx context.Context) error {
	paper, err := c.deps.Exams.ExamPaper(ctx, c.examID)
	if err != nil {
		return fmt.Errorf("fetch exam paper: %w", err)
	}

	c.mu.Lock()
	c.paper = paper
	c.maxViolations = paper.MaxViolations
	if c.maxViolations <= 0 {
		c.maxViolations = c.deps.MaxViolations
	}

	snap, err := c.deps.Store.Load(ctx, c.employeeID, c.examID)
	if err != nil {
		// A broken store must not strand the candidate; start fresh.
		c.log.Warn().Err(err).Msg("Snapshot load failed, starting fresh")
		snap = nil
	}

	expired := false
	if snap != nil {
		for qid, idx := range snap.Answers {
			c.answers[qid] = idx
		}
		c.remaining = snap.Remaining(time.Now().UnixMilli())
		expired = c.remaining == 0
	} else {
		c.remaining = paper.DurationMinutes * 60
	}
	c.mu.Unlock()

	if snap == nil {
		// Establishes the start_time baseline for future resume math.
		if err := c.persistSnapshot(ctx); err != nil {
			c.log.Warn().Err(err).Msg("Initial snapshot persist failed")
		}
	} else {
		c.emit(Event{Type: EventResumed, Remaining: c.Remaining()})
	}

	go c.run(ctx)

	if expired {
		// Restored with no time left: answers are kept, and the attempt is
		// submitted immediately instead of entering a dead countdown.
		go c.submit(ctx, model.SubmitReasonTimeUp)
	}

	c.log.Info().Int("remaining", c.Remaining()).Bool("resumed", snap != nil).Msg("Attempt session started")
	return nil
}

func (c *Controller) run(ctx context.Context) {
	countdown := time.NewTicker(c.tickEvery)
	persist := time.NewTicker(c.persistEvery)
	proctor := time.NewTicker(c.proctorEvery)
	defer countdown.Stop()
	defer persist.Stop()
	defer proctor.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-countdown.C:
			c.onCountdownTick(ctx)
		case <-persist.C:
			if err := c.persistSnapshot(ctx); err != nil {
				c.log.Warn().Err(err).Msg("Snapshot persist failed")
			}
		case <-proctor.C:
			c.onProctorTick(ctx)
		}
	}
}

// onCountdownTick decrements the remaining time and fires the one and only
// time-up submission once zero is reached.
func (c *Controller) onCountdownTick(ctx context.Context) {
	c.mu.Lock()
	if c.submitting || c.submitted {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	fire := remaining == 0 && !c.timeUpFired
	if fire {
		c.timeUpFired = true
	}
	c.mu.Unlock()

	c.emit(Event{Type: EventTime, Remaining: remaining})

	if fire {
		go c.submit(ctx, model.SubmitReasonTimeUp)
	}
}

// persistSnapshot writes the current in-memory state together with a
// wall-clock timestamp. Resume always re-derives remaining time from that
// timestamp rather than counting ticks, so a suspended client cannot gain
// time. Skipped once submission begins: a save racing the final snapshot
// delete would resurrect an already-graded attempt.
func (c *Controller) persistSnapshot(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting || c.submitted {
		c.mu.Unlock()
		return nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	return c.deps.Store.Save(ctx, c.employeeID, c.examID, snap)
}

// snapshotLocked builds a snapshot of the current state. Caller holds mu.
func (c *Controller) snapshotLocked() *model.AttemptSnapshot {
	answers := make(map[string]int, len(c.answers))
	for qid, idx := range c.answers {
		answers[qid] = idx
	}
	return &model.AttemptSnapshot{
		Answers:   answers,
		TimeLeft:  c.remaining,
		StartTime: time.Now().UnixMilli(),
	}
}

// SetAnswer records a selection and persists the snapshot synchronously so
// a reload immediately afterwards never loses the answer. The answer is
// additionally queued for durable persistence.
func (c *Controller) SetAnswer(ctx context.Context, questionID string, optionIndex int) error {
	c.mu.Lock()
	if c.submitting || c.submitted {
		c.mu.Unlock()
		return ErrAttemptClosed
	}
	c.answers[questionID] = optionIndex
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.deps.Store.Save(ctx, c.employeeID, c.examID, snap); err != nil {
		return fmt.Errorf("persist answer snapshot: %w", err)
	}

	if err := c.deps.Answers.QueueAnswer(ctx, c.employeeID, c.examID, questionID, optionIndex); err != nil {
		c.log.Warn().Err(err).Str("question_id", questionID).Msg("Answer queue failed")
	}

	c.emit(Event{Type: EventSaved})
	return nil
}

// ReportViolation counts one integrity breach. Below the maximum the
// candidate receives a warning and may continue; at the maximum the attempt
// is force-submitted exactly once. A violation arriving after submission
// has begun is written to the audit log but not counted.
func (c *Controller) ReportViolation(ctx context.Context, kind model.ViolationKind, reason string) {
	c.mu.Lock()
	closed := c.submitting || c.submitted
	if !closed {
		c.violationCount++
	}
	count := c.violationCount
	max := c.maxViolations
	c.mu.Unlock()

	if err := c.deps.Violations.RecordViolation(ctx, &model.Violation{
		ExamID:     c.examID,
		EmployeeID: c.employeeID,
		Kind:       kind,
		Reason:     reason,
		Counted:    !closed,
		RecordedAt: time.Now(),
	}); err != nil {
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("Violation record failed")
	}

	if closed {
		c.log.Info().Str("kind", string(kind)).Msg("Late violation kept for audit only")
		return
	}

	c.log.Info().Str("kind", string(kind)).Int("count", count).Int("max", max).Msg("Violation recorded")

	if count >= max {
		c.submit(ctx, model.SubmitReasonViolation)
		return
	}

	c.emit(Event{Type: EventWarning, Reason: reason, Count: count, Max: max})
}

// SubmitFrame hands the latest webcam frame to the controller. Frames are
// analyzed on the proctoring tick, never more than one at a time; a newer
// frame simply replaces an unanalyzed older one.
func (c *Controller) SubmitFrame(frameBase64 string) {
	c.mu.Lock()
	if !c.submitting && !c.submitted {
		c.latestFrame = frameBase64
	}
	c.mu.Unlock()
}

// onProctorTick analyzes the most recent frame. Analysis is serial: it is
// skipped while a prior analysis or a submission is in flight. Analyzer
// errors are fail-open and leave the proctoring status "secure".
func (c *Controller) onProctorTick(ctx context.Context) {
	c.mu.Lock()
	if c.submitting || c.submitted || c.analyzing || c.latestFrame == "" {
		c.mu.Unlock()
		return
	}
	frame := c.latestFrame
	c.latestFrame = ""
	c.analyzing = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.analyzing = false
			c.mu.Unlock()
		}()

		flagged, reason, err := c.deps.Analyzer.AnalyzeFrame(ctx, frame)
		if err != nil {
			// A transient AI failure must never cost the candidate a penalty.
			c.log.Warn().Err(err).Msg("Frame analysis failed, ignoring")
			c.emit(Event{Type: EventSecure})
			return
		}

		if flagged {
			c.ReportViolation(ctx, model.ViolationWebcamFlag, reason)
			return
		}

		c.emit(Event{Type: EventSecure})
	}()
}

// Submit performs a user-initiated submission.
func (c *Controller) Submit(ctx context.Context) error {
	return c.submit(ctx, model.SubmitReasonUser)
}

// submit grades and finalizes the attempt. Exactly one submission can be in
// flight; re-entrant calls are no-ops. On grader failure the controller
// returns to an answerable state and keeps the snapshot so nothing is lost.
func (c *Controller) submit(ctx context.Context, reason model.SubmitReason) error {
	c.mu.Lock()
	if c.submitting || c.submitted {
		c.mu.Unlock()
		return nil
	}
	c.submitting = true
	answers := make(map[string]int, len(c.answers))
	for qid, idx := range c.answers {
		answers[qid] = idx
	}
	c.mu.Unlock()

	result, err := c.deps.Grader.Grade(ctx, c.employeeID, c.examID, answers, reason)
	if err != nil {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.log.Error().Err(err).Str("reason", string(reason)).Msg("Submission failed, retry allowed")
		c.emit(Event{Type: EventError, Reason: "submission failed, please try again"})
		return fmt.Errorf("grade attempt: %w", err)
	}

	if err := c.deps.Store.Delete(ctx, c.employeeID, c.examID); err != nil {
		c.log.Warn().Err(err).Msg("Snapshot delete failed")
	}

	c.mu.Lock()
	c.submitted = true
	c.mu.Unlock()

	c.log.Info().Float64("score", result.Score).Str("status", string(result.Status)).Str("reason", string(reason)).Msg("Attempt submitted")

	switch reason {
	case model.SubmitReasonTimeUp:
		c.emit(Event{Type: EventTimeUp, Result: result})
	case model.SubmitReasonViolation:
		c.emit(Event{Type: EventTerminated, Reason: "maximum violations reached", Result: result})
	default:
		c.emit(Event{Type: EventGraded, Result: result})
	}

	c.Close()
	return nil
}

// Close tears down the timers deterministically. Safe to call repeatedly.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Remaining returns the current countdown value, never negative.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// ViolationCount returns the number of counted violations so far.
func (c *Controller) ViolationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violationCount
}

// Submitted reports whether the attempt has been finalized.
func (c *Controller) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

// emit pushes an event without ever blocking the controller; a slow or
// absent consumer loses events rather than stalling the timers.
func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Debug().Str("event", string(ev.Type)).Msg("Event dropped, consumer too slow")
	}
}
