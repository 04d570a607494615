package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/model"
)

// ─── Test fakes ──────────────────────────────────────────────────────

type memStore struct {
	mu          sync.Mutex
	snaps       map[string]*model.AttemptSnapshot
	saves       int
	deletes     int
	saveErr     error
	deleteDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string]*model.AttemptSnapshot)}
}

func storeKey(employeeID int, examID uuid.UUID) string {
	return examID.String() + "/" + uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(employeeID)}).String()
}

func (s *memStore) Load(_ context.Context, employeeID int, examID uuid.UUID) (*model.AttemptSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[storeKey(employeeID, examID)]
	if !ok {
		return nil, nil
	}
	copied := *snap
	copied.Answers = make(map[string]int, len(snap.Answers))
	for k, v := range snap.Answers {
		copied.Answers[k] = v
	}
	return &copied, nil
}

func (s *memStore) Save(_ context.Context, employeeID int, examID uuid.UUID, snap *model.AttemptSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.snaps[storeKey(employeeID, examID)] = snap
	return nil
}

func (s *memStore) Delete(_ context.Context, employeeID int, examID uuid.UUID) error {
	s.mu.Lock()
	s.deletes++
	delete(s.snaps, storeKey(employeeID, examID))
	delay := s.deleteDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return nil
}

func (s *memStore) has(employeeID int, examID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snaps[storeKey(employeeID, examID)]
	return ok
}

func (s *memStore) put(employeeID int, examID uuid.UUID, snap *model.AttemptSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[storeKey(employeeID, examID)] = snap
}

type stubExams struct {
	paper *model.ExamPaper
	err   error
}

func (s *stubExams) ExamPaper(context.Context, uuid.UUID) (*model.ExamPaper, error) {
	return s.paper, s.err
}

type stubGrader struct {
	mu      sync.Mutex
	calls   int
	reasons []model.SubmitReason
	answers []map[string]int
	err     error
	result  *model.SubmissionResult
}

func (g *stubGrader) Grade(_ context.Context, _ int, _ uuid.UUID, answers map[string]int, reason model.SubmitReason) (*model.SubmissionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.reasons = append(g.reasons, reason)
	g.answers = append(g.answers, answers)
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &model.SubmissionResult{Score: 100, Status: model.ResultPassed}, nil
}

func (g *stubGrader) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *stubGrader) lastReason() model.SubmitReason {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.reasons) == 0 {
		return ""
	}
	return g.reasons[len(g.reasons)-1]
}

type stubAnalyzer struct {
	mu      sync.Mutex
	calls   int
	flagged bool
	reason  string
	err     error
}

func (a *stubAnalyzer) AnalyzeFrame(context.Context, string) (bool, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.flagged, a.reason, a.err
}

func (a *stubAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type recordSink struct {
	mu         sync.Mutex
	answers    []string
	violations []model.Violation
	err        error
}

func (s *recordSink) QueueAnswer(_ context.Context, _ int, _ uuid.UUID, questionID string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, questionID)
	return s.err
}

func (s *recordSink) RecordViolation(_ context.Context, v *model.Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations = append(s.violations, *v)
	return s.err
}

func (s *recordSink) recorded() []model.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Violation, len(s.violations))
	copy(out, s.violations)
	return out
}

type fixture struct {
	store    *memStore
	grader   *stubGrader
	analyzer *stubAnalyzer
	sink     *recordSink
	deps     Deps
}

func newFixture(durationMinutes, maxViolations int) *fixture {
	f := &fixture{
		store:    newMemStore(),
		grader:   &stubGrader{},
		analyzer: &stubAnalyzer{},
		sink:     &recordSink{},
	}
	f.deps = Deps{
		Store: f.store,
		Exams: &stubExams{paper: &model.ExamPaper{
			ExamID:          uuid.New(),
			Title:           "Compliance Basics",
			DurationMinutes: durationMinutes,
			MaxViolations:   maxViolations,
		}},
		Grader:     f.grader,
		Analyzer:   f.analyzer,
		Answers:    f.sink,
		Violations: f.sink,
		// Long intervals keep timers out of the way unless a test
		// overrides them.
		TickInterval:    time.Hour,
		PersistInterval: time.Hour,
		ProctorInterval: time.Hour,
	}
	return f
}

func startController(t *testing.T, f *fixture, employeeID int, examID uuid.UUID) *Controller {
	t.Helper()
	c := NewController(employeeID, examID, f.deps, zerolog.Nop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func drainEvents(c *Controller) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

// ─── Countdown ───────────────────────────────────────────────────────

func TestCountdownDecrementsAndEmitsTime(t *testing.T) {
	f := newFixture(10, 3)
	f.deps.TickInterval = 5 * time.Millisecond

	c := startController(t, f, 1, uuid.New())

	start := c.Remaining()
	if start != 600 {
		t.Fatalf("initial remaining = %d, want 600", start)
	}

	waitFor(t, "countdown to advance", func() bool { return c.Remaining() < start })

	sawTime := false
	for _, ev := range drainEvents(c) {
		if ev.Type == EventTime {
			sawTime = true
			if ev.Remaining >= start {
				t.Fatalf("time event remaining = %d, want < %d", ev.Remaining, start)
			}
		}
	}
	if !sawTime {
		t.Fatal("no time event emitted")
	}
}

func TestTimeUpSubmitsExactlyOnce(t *testing.T) {
	f := newFixture(10, 3)
	f.deps.TickInterval = time.Millisecond

	examID := uuid.New()
	// Preload a nearly expired snapshot so the countdown reaches zero
	// after a few ticks.
	f.store.put(7, examID, &model.AttemptSnapshot{
		Answers:   map[string]int{"q1": 2},
		TimeLeft:  3,
		StartTime: time.Now().UnixMilli(),
	})

	c := startController(t, f, 7, examID)

	waitFor(t, "time-up submission", c.Submitted)

	// Let any duplicate ticks land before asserting.
	time.Sleep(20 * time.Millisecond)

	if got := f.grader.callCount(); got != 1 {
		t.Fatalf("grader called %d times, want 1", got)
	}
	if got := f.grader.lastReason(); got != model.SubmitReasonTimeUp {
		t.Fatalf("submit reason = %q, want %q", got, model.SubmitReasonTimeUp)
	}
	if f.grader.answers[0]["q1"] != 2 {
		t.Fatal("answers restored from snapshot were not graded")
	}
	if f.store.has(7, examID) {
		t.Fatal("snapshot should be deleted after submission")
	}
}

// ─── Answer persistence ──────────────────────────────────────────────

func TestSetAnswerPersistsSynchronously(t *testing.T) {
	f := newFixture(30, 3)
	examID := uuid.New()
	c := startController(t, f, 5, examID)

	if err := c.SetAnswer(context.Background(), "q1", 1); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := c.SetAnswer(context.Background(), "q2", 3); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	// Changing an answer overwrites, never appends.
	if err := c.SetAnswer(context.Background(), "q1", 0); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	snap, err := f.store.Load(context.Background(), 5, examID)
	if err != nil || snap == nil {
		t.Fatalf("Load: snap=%v err=%v", snap, err)
	}
	if snap.Answers["q1"] != 0 || snap.Answers["q2"] != 3 {
		t.Fatalf("snapshot answers = %v, want q1=0 q2=3", snap.Answers)
	}

	f.sink.mu.Lock()
	queued := len(f.sink.answers)
	f.sink.mu.Unlock()
	if queued != 3 {
		t.Fatalf("queued %d answers, want 3", queued)
	}
}

func TestSetAnswerFailsWhenStoreIsDown(t *testing.T) {
	f := newFixture(30, 3)
	c := startController(t, f, 5, uuid.New())

	f.store.mu.Lock()
	f.store.saveErr = errors.New("redis down")
	f.store.mu.Unlock()

	if err := c.SetAnswer(context.Background(), "q1", 1); err == nil {
		t.Fatal("SetAnswer should surface the store failure")
	}
}

func TestSetAnswerRejectedAfterSubmission(t *testing.T) {
	f := newFixture(30, 3)
	c := startController(t, f, 5, uuid.New())

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := c.SetAnswer(context.Background(), "q1", 1); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("SetAnswer after submit = %v, want ErrAttemptClosed", err)
	}
}

// ─── Resume ──────────────────────────────────────────────────────────

func TestResumeDerivesRemainingFromWallClock(t *testing.T) {
	f := newFixture(30, 3)
	examID := uuid.New()

	// Snapshot written 100 seconds ago with 600 left: the client was away
	// the whole time, so only ~500 remain.
	f.store.put(9, examID, &model.AttemptSnapshot{
		Answers:   map[string]int{"q1": 1},
		TimeLeft:  600,
		StartTime: time.Now().Add(-100 * time.Second).UnixMilli(),
	})

	c := startController(t, f, 9, examID)

	got := c.Remaining()
	if got < 498 || got > 501 {
		t.Fatalf("resumed remaining = %d, want ~500", got)
	}

	sawResumed := false
	for _, ev := range drainEvents(c) {
		if ev.Type == EventResumed {
			sawResumed = true
		}
	}
	if !sawResumed {
		t.Fatal("no resumed event emitted")
	}
}

func TestResumeExpiredSnapshotSubmitsImmediately(t *testing.T) {
	f := newFixture(30, 3)
	examID := uuid.New()

	f.store.put(9, examID, &model.AttemptSnapshot{
		Answers:   map[string]int{"q1": 1, "q2": 0},
		TimeLeft:  60,
		StartTime: time.Now().Add(-10 * time.Minute).UnixMilli(),
	})

	c := startController(t, f, 9, examID)

	waitFor(t, "expired resume submission", c.Submitted)

	if got := f.grader.lastReason(); got != model.SubmitReasonTimeUp {
		t.Fatalf("submit reason = %q, want %q", got, model.SubmitReasonTimeUp)
	}
	if len(f.grader.answers[0]) != 2 {
		t.Fatalf("graded %d answers, want the 2 restored ones", len(f.grader.answers[0]))
	}
}

func TestBrokenSnapshotLoadStartsFresh(t *testing.T) {
	f := newFixture(15, 3)
	examID := uuid.New()

	// Load failure must not strand the candidate.
	c := NewController(2, examID, Deps{
		Store:           &failingLoadStore{memStore: f.store},
		Exams:           f.deps.Exams,
		Grader:          f.grader,
		Analyzer:        f.analyzer,
		Answers:         f.sink,
		Violations:      f.sink,
		TickInterval:    time.Hour,
		PersistInterval: time.Hour,
		ProctorInterval: time.Hour,
	}, zerolog.Nop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Close()

	if got := c.Remaining(); got != 900 {
		t.Fatalf("remaining = %d, want full duration 900", got)
	}
}

type failingLoadStore struct {
	*memStore
}

func (s *failingLoadStore) Load(context.Context, int, uuid.UUID) (*model.AttemptSnapshot, error) {
	return nil, errors.New("corrupt snapshot")
}

func TestPaperFetchFailureIsFatal(t *testing.T) {
	f := newFixture(15, 3)
	f.deps.Exams = &stubExams{err: errors.New("not published")}

	c := NewController(2, uuid.New(), f.deps, zerolog.Nop())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when the paper cannot be fetched")
	}
}

// ─── Violations ──────────────────────────────────────────────────────

func TestViolationsWarnThenTerminate(t *testing.T) {
	f := newFixture(30, 3)
	c := startController(t, f, 4, uuid.New())

	ctx := context.Background()

	c.ReportViolation(ctx, model.ViolationTabSwitch, "tab switch")
	c.ReportViolation(ctx, model.ViolationFullscreenExit, "fullscreen exit")

	if c.Submitted() {
		t.Fatal("submitted before reaching the violation maximum")
	}

	warnings := 0
	for _, ev := range drainEvents(c) {
		if ev.Type == EventWarning {
			warnings++
			if ev.Max != 3 {
				t.Fatalf("warning max = %d, want 3", ev.Max)
			}
		}
	}
	if warnings != 2 {
		t.Fatalf("got %d warnings, want 2", warnings)
	}

	c.ReportViolation(ctx, model.ViolationWindowHidden, "window hidden")

	waitFor(t, "violation submission", c.Submitted)

	if got := f.grader.lastReason(); got != model.SubmitReasonViolation {
		t.Fatalf("submit reason = %q, want %q", got, model.SubmitReasonViolation)
	}
	if got := c.ViolationCount(); got != 3 {
		t.Fatalf("violation count = %d, want 3", got)
	}

	sawTerminated := false
	for _, ev := range drainEvents(c) {
		if ev.Type == EventTerminated {
			sawTerminated = true
			if ev.Result == nil {
				t.Fatal("terminated event carries no result")
			}
		}
	}
	if !sawTerminated {
		t.Fatal("no terminated event emitted")
	}
}

func TestLateViolationIsAuditOnly(t *testing.T) {
	f := newFixture(30, 3)
	c := startController(t, f, 4, uuid.New())

	ctx := context.Background()
	if err := c.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	c.ReportViolation(ctx, model.ViolationWebcamFlag, "second person visible")

	recorded := f.sink.recorded()
	if len(recorded) != 1 {
		t.Fatalf("recorded %d violations, want 1", len(recorded))
	}
	if recorded[0].Counted {
		t.Fatal("late violation must not be counted")
	}
	if got := c.ViolationCount(); got != 0 {
		t.Fatalf("violation count = %d, want 0", got)
	}
	if got := f.grader.callCount(); got != 1 {
		t.Fatalf("grader called %d times, want 1 (no violation-forced resubmit)", got)
	}
}

// ─── Proctoring ──────────────────────────────────────────────────────

func TestProctoringFailOpen(t *testing.T) {
	f := newFixture(30, 3)
	f.deps.ProctorInterval = 5 * time.Millisecond
	f.analyzer.err = errors.New("sidecar unreachable")

	c := startController(t, f, 6, uuid.New())
	c.SubmitFrame("ZnJhbWU=")

	waitFor(t, "frame analysis", func() bool { return f.analyzer.callCount() > 0 })
	time.Sleep(10 * time.Millisecond)

	if got := c.ViolationCount(); got != 0 {
		t.Fatalf("analyzer failure produced %d violations, want 0", got)
	}

	sawSecure := false
	for _, ev := range drainEvents(c) {
		if ev.Type == EventSecure {
			sawSecure = true
		}
	}
	if !sawSecure {
		t.Fatal("no secure event after fail-open analysis")
	}
}

func TestFlaggedFrameCountsViolation(t *testing.T) {
	f := newFixture(30, 3)
	f.deps.ProctorInterval = 5 * time.Millisecond
	f.analyzer.flagged = true
	f.analyzer.reason = "phone detected"

	c := startController(t, f, 6, uuid.New())
	c.SubmitFrame("ZnJhbWU=")

	waitFor(t, "flagged violation", func() bool { return c.ViolationCount() > 0 })

	recorded := f.sink.recorded()
	if len(recorded) == 0 || recorded[0].Kind != model.ViolationWebcamFlag {
		t.Fatalf("recorded violations = %v, want a WEBCAM_FLAG entry", recorded)
	}
}

func TestProctorTickSkipsWithoutFrame(t *testing.T) {
	f := newFixture(30, 3)
	f.deps.ProctorInterval = 2 * time.Millisecond

	startController(t, f, 6, uuid.New())

	time.Sleep(20 * time.Millisecond)
	if got := f.analyzer.callCount(); got != 0 {
		t.Fatalf("analyzer called %d times with no frame submitted, want 0", got)
	}
}

// ─── Submission ──────────────────────────────────────────────────────

func TestConcurrentSubmitGradesOnce(t *testing.T) {
	f := newFixture(30, 3)
	c := startController(t, f, 8, uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Submit(context.Background())
		}()
	}
	wg.Wait()

	if got := f.grader.callCount(); got != 1 {
		t.Fatalf("grader called %d times under concurrent submits, want 1", got)
	}
	if !c.Submitted() {
		t.Fatal("attempt not submitted")
	}
}

func TestGradingFailureIsRecoverable(t *testing.T) {
	f := newFixture(30, 3)
	examID := uuid.New()
	c := startController(t, f, 8, examID)

	if err := c.SetAnswer(context.Background(), "q1", 2); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	f.grader.mu.Lock()
	f.grader.err = errors.New("result queue unavailable")
	f.grader.mu.Unlock()

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("Submit should fail when grading fails")
	}
	if c.Submitted() {
		t.Fatal("attempt must not finalize on grading failure")
	}
	if !f.store.has(8, examID) {
		t.Fatal("snapshot must survive a failed submission")
	}

	// The candidate can still answer and retry.
	if err := c.SetAnswer(context.Background(), "q2", 0); err != nil {
		t.Fatalf("SetAnswer after failed submit: %v", err)
	}

	f.grader.mu.Lock()
	f.grader.err = nil
	f.grader.mu.Unlock()

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if !c.Submitted() {
		t.Fatal("retry did not finalize the attempt")
	}
	if f.store.has(8, examID) {
		t.Fatal("snapshot should be deleted after the successful retry")
	}
}

func TestSubmitEmitsGradedResult(t *testing.T) {
	f := newFixture(30, 3)
	f.grader.result = &model.SubmissionResult{Score: 75.5, Status: model.ResultPassed}
	c := startController(t, f, 8, uuid.New())

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	sawGraded := false
	for _, ev := range drainEvents(c) {
		if ev.Type == EventGraded {
			sawGraded = true
			if ev.Result == nil || ev.Result.Score != 75.5 {
				t.Fatalf("graded event result = %+v, want score 75.5", ev.Result)
			}
		}
	}
	if !sawGraded {
		t.Fatal("no graded event emitted")
	}

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller did not close after submission")
	}
}

func TestPersistTickCannotResurrectSubmittedSnapshot(t *testing.T) {
	f := newFixture(30, 3)
	// Persist ticks fire constantly while the store's Delete is stalled,
	// so any save racing the submission would land after the delete.
	f.deps.PersistInterval = 2 * time.Millisecond
	f.store.deleteDelay = 100 * time.Millisecond
	examID := uuid.New()
	c := startController(t, f, 8, examID)

	if err := c.SetAnswer(context.Background(), "q1", 2); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Let any straggling persist tick run before checking the store.
	time.Sleep(20 * time.Millisecond)

	if f.store.has(8, examID) {
		t.Fatal("snapshot present after successful submission")
	}
}

// ─── Example scenario ────────────────────────────────────────────────

// A candidate answers, reloads mid-attempt, resumes with the saved answers,
// picks up one violation, and submits. One grade, reason USER.
func TestFullAttemptLifecycle(t *testing.T) {
	f := newFixture(20, 3)
	examID := uuid.New()

	first := startController(t, f, 11, examID)
	ctx := context.Background()

	if err := first.SetAnswer(ctx, "q1", 1); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := first.SetAnswer(ctx, "q2", 2); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	// Page reload: the old controller goes away, a new one restores the
	// snapshot.
	first.Close()

	second := startController(t, f, 11, examID)
	if second.Remaining() <= 0 || second.Remaining() > 1200 {
		t.Fatalf("resumed remaining = %d, want within (0, 1200]", second.Remaining())
	}

	second.ReportViolation(ctx, model.ViolationTabSwitch, "tab switch")
	if second.Submitted() {
		t.Fatal("one violation below the max must not terminate")
	}

	if err := second.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got := f.grader.callCount(); got != 1 {
		t.Fatalf("grader called %d times, want 1", got)
	}
	if got := f.grader.lastReason(); got != model.SubmitReasonUser {
		t.Fatalf("submit reason = %q, want %q", got, model.SubmitReasonUser)
	}
	graded := f.grader.answers[0]
	if graded["q1"] != 1 || graded["q2"] != 2 {
		t.Fatalf("graded answers = %v, want the reloaded ones", graded)
	}
	if f.store.has(11, examID) {
		t.Fatal("snapshot should be gone after submission")
	}
}
