package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationKind classifies exam-integrity breaches.
type ViolationKind string

const (
	ViolationTabSwitch      ViolationKind = "TAB_SWITCH"
	ViolationFullscreenExit ViolationKind = "FULLSCREEN_EXIT"
	ViolationWindowHidden   ViolationKind = "WINDOW_HIDDEN"
	ViolationWebcamFlag     ViolationKind = "WEBCAM_FLAG"
)

// Violation is one detected breach of exam-integrity rules. Violations
// accumulate against the exam's MaxViolations; reaching the maximum forces
// submission of the attempt.
type Violation struct {
	ID         int64         `json:"id"`
	ExamID     uuid.UUID     `json:"exam_id"`
	EmployeeID int           `json:"employee_id"`
	Kind       ViolationKind `json:"kind"`
	Reason     string        `json:"reason"`
	// Counted is false for audit-only rows, e.g. a frame verdict that
	// arrived after submission had already started.
	Counted    bool      `json:"counted"`
	RecordedAt time.Time `json:"recorded_at"`
}
