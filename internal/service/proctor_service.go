package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/config"
	"github.com/stratushr/stratus-backend/internal/model"
)

// ProctorService fans attempt telemetry out to Redis: live answer hashes for
// the monitor, and the worker queues for durable persistence. Implements the
// session controller's AnswerSink and ViolationSink contracts.
type ProctorService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewProctorService creates a new ProctorService.
func NewProctorService(rdb *redis.Client, log zerolog.Logger) *ProctorService {
	return &ProctorService{
		rdb: rdb,
		log: log.With().Str("component", "proctor_service").Logger(),
	}
}

// answerQueuePayload is what the autosave worker consumes.
type answerQueuePayload struct {
	EmployeeID  int    `json:"employee_id"`
	ExamID      string `json:"exam_id"`
	QuestionID  string `json:"question_id"`
	OptionIndex int    `json:"option_index"`
}

// violationQueuePayload is what the violation worker consumes.
type violationQueuePayload struct {
	EmployeeID int    `json:"employee_id"`
	ExamID     string `json:"exam_id"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
	Counted    bool   `json:"counted"`
	Timestamp  int64  `json:"timestamp"`
}

// QueueAnswer mirrors an answer into the live answers hash and enqueues it
// for database persistence, in one round trip.
func (s *ProctorService) QueueAnswer(ctx context.Context, employeeID int, examID uuid.UUID, questionID string, optionIndex int) error {
	payload, err := json.Marshal(answerQueuePayload{
		EmployeeID:  employeeID,
		ExamID:      examID.String(),
		QuestionID:  questionID,
		OptionIndex: optionIndex,
	})
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, config.CacheKey.EmployeeAnswersKey(examID.String(), employeeID), questionID, optionIndex)
	pipe.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue answer: %w", err)
	}
	return nil
}

// RecordViolation enqueues a violation for database persistence.
func (s *ProctorService) RecordViolation(ctx context.Context, v *model.Violation) error {
	payload, err := json.Marshal(violationQueuePayload{
		EmployeeID: v.EmployeeID,
		ExamID:     v.ExamID.String(),
		Kind:       string(v.Kind),
		Reason:     v.Reason,
		Counted:    v.Counted,
		Timestamp:  v.RecordedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		return fmt.Errorf("queue violation: %w", err)
	}
	return nil
}
