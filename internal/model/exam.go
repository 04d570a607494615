package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Exam represents an exam entity. An exam definition is immutable while
// attempts are running: only DRAFT exams can be edited.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Topic           string     `json:"topic"`
	AuthorID        int        `json:"author_id"`
	DurationMinutes int        `json:"duration_minutes"`
	MaxViolations   int        `json:"max_violations"`
	PassingScore    float64    `json:"passing_score"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string  `json:"title" binding:"required,min=3,max=255"`
	Topic           string  `json:"topic" binding:"required,min=2,max=100"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,min=1,max=480"`
	MaxViolations   int     `json:"max_violations" binding:"omitempty,min=1,max=10"`
	PassingScore    float64 `json:"passing_score" binding:"omitempty,min=0,max=100"`
}

// UpdateExamRequest is the payload for updating an existing draft exam.
type UpdateExamRequest struct {
	Title           string  `json:"title" binding:"omitempty,min=3,max=255"`
	Topic           string  `json:"topic" binding:"omitempty,min=2,max=100"`
	DurationMinutes int     `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	MaxViolations   int     `json:"max_violations" binding:"omitempty,min=1,max=10"`
	PassingScore    float64 `json:"passing_score" binding:"omitempty,min=0,max=100"`
}

// ExamPaper is the Redis-cached payload sent to candidates (no correct answers).
type ExamPaper struct {
	ExamID          uuid.UUID              `json:"exam_id"`
	Title           string                 `json:"title"`
	Topic           string                 `json:"topic"`
	DurationMinutes int                    `json:"duration_minutes"`
	MaxViolations   int                    `json:"max_violations"`
	Questions       []QuestionForCandidate `json:"questions"`
}

// QuestionForCandidate is a question without its correct index, sent to candidates.
type QuestionForCandidate struct {
	ID       uuid.UUID `json:"id"`
	Prompt   string    `json:"prompt"`
	Options  []string  `json:"options"`
	OrderNum int       `json:"order_num"`
}
