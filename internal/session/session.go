// Package session drives a single candidate through a timed, proctored exam
// attempt from load to submission. It owns the countdown, snapshot autosave,
// violation accounting, and the periodic webcam-frame checks, and guarantees
// that no answer is lost across a reload and that submission happens exactly
// once per attempt.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/stratushr/stratus-backend/internal/model"
)

// SnapshotStore persists attempt progress snapshots. Load returns (nil, nil)
// when no snapshot exists for the pair.
type SnapshotStore interface {
	Load(ctx context.Context, employeeID int, examID uuid.UUID) (*model.AttemptSnapshot, error)
	Save(ctx context.Context, employeeID int, examID uuid.UUID, snap *model.AttemptSnapshot) error
	Delete(ctx context.Context, employeeID int, examID uuid.UUID) error
}

// ExamSource provides the candidate-facing exam paper. A failure here is
// fatal to the session: the attempt never starts.
type ExamSource interface {
	ExamPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error)
}

// Grader computes the submission result for an attempt's answers. A failure
// is recoverable: the controller stays answerable and the snapshot is kept.
type Grader interface {
	Grade(ctx context.Context, employeeID int, examID uuid.UUID, answers map[string]int, reason model.SubmitReason) (*model.SubmissionResult, error)
}

// FrameAnalyzer classifies a single webcam frame (base64 JPEG). Analyzer
// errors are fail-open: they never count against the candidate.
type FrameAnalyzer interface {
	AnalyzeFrame(ctx context.Context, frameBase64 string) (isViolation bool, reason string, err error)
}

// AnswerSink queues a single answer for durable persistence.
type AnswerSink interface {
	QueueAnswer(ctx context.Context, employeeID int, examID uuid.UUID, questionID string, optionIndex int) error
}

// ViolationSink records a violation for audit persistence.
type ViolationSink interface {
	RecordViolation(ctx context.Context, v *model.Violation) error
}

// EventType enumerates the events a controller emits toward the client.
type EventType string

const (
	// EventResumed signals that a previous snapshot was restored.
	EventResumed EventType = "resumed"
	// EventTime carries the authoritative remaining seconds, once per tick.
	EventTime EventType = "time"
	// EventSaved acknowledges a persisted answer.
	EventSaved EventType = "saved"
	// EventWarning surfaces a counted violation below the maximum.
	EventWarning EventType = "warning"
	// EventSecure reports a completed proctoring check with no finding.
	EventSecure EventType = "secure"
	// EventGraded carries the result of a user-initiated submission.
	EventGraded EventType = "graded"
	// EventTimeUp carries the result of the countdown-triggered submission.
	EventTimeUp EventType = "time_up"
	// EventTerminated carries the result of a violation-forced submission.
	EventTerminated EventType = "terminated"
	// EventError surfaces a recoverable failure (retry is allowed).
	EventError EventType = "error"
)

// Event is a single controller-to-client notification.
type Event struct {
	Type      EventType               `json:"event"`
	Reason    string                  `json:"reason,omitempty"`
	Remaining int                     `json:"remaining,omitempty"`
	Count     int                     `json:"count,omitempty"`
	Max       int                     `json:"max,omitempty"`
	Result    *model.SubmissionResult `json:"result,omitempty"`
}
