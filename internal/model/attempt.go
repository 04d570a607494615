package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates exam attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// SubmitReason records why an attempt was submitted.
type SubmitReason string

const (
	SubmitReasonUser      SubmitReason = "USER"
	SubmitReasonTimeUp    SubmitReason = "TIME_UP"
	SubmitReasonViolation SubmitReason = "VIOLATION"
)

// ExamAttempt represents one candidate's single timed run through an exam.
// Exactly one attempt exists per (employee, exam) pair.
type ExamAttempt struct {
	ID           uuid.UUID     `json:"id"`
	ExamID       uuid.UUID     `json:"exam_id"`
	EmployeeID   int           `json:"employee_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Status       AttemptStatus `json:"status"`
	FinalScore   *float64      `json:"final_score,omitempty"`
	Passed       *bool         `json:"passed,omitempty"`
	SubmitReason *SubmitReason `json:"submit_reason,omitempty"`
}

// ResultStatus is the candidate-facing pass/fail outcome.
type ResultStatus string

const (
	ResultPassed ResultStatus = "Passed"
	ResultFailed ResultStatus = "Failed"
)

// SubmissionResult is the server-computed grading outcome.
type SubmissionResult struct {
	Score  float64      `json:"score"`
	Status ResultStatus `json:"status"`
}

// AttemptState is returned to a reconnecting client so it can resume:
// previously autosaved answers plus the wall-clock-derived remaining time.
type AttemptState struct {
	ExamID           uuid.UUID      `json:"exam_id"`
	EmployeeID       int            `json:"employee_id"`
	Answers          map[string]int `json:"answers"`
	RemainingSeconds int            `json:"remaining_seconds"`
	ViolationCount   int            `json:"violation_count"`
}
