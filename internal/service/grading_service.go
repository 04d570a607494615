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
	"github.com/stratushr/stratus-backend/internal/repository"
)

// GradingService computes submission results entirely from the Redis answer
// key and hands durable persistence to the result worker. Implements the
// session controller's Grader contract.
type GradingService struct {
	exams    *ExamService
	examRepo *repository.ExamRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(exams *ExamService, examRepo *repository.ExamRepository, rdb *redis.Client, log zerolog.Logger) *GradingService {
	return &GradingService{
		exams:    exams,
		examRepo: examRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "grading_service").Logger(),
	}
}

// resultPayload is what the result worker consumes from the persist queue.
type resultPayload struct {
	EmployeeID int     `json:"employee_id"`
	ExamID     string  `json:"exam_id"`
	Score      float64 `json:"score"`
	Passed     bool    `json:"passed"`
	Reason     string  `json:"reason"`
}

// Grade scores the submitted answers against the cached answer key and
// enqueues the outcome for persistence. Any failure here is recoverable for
// the caller: nothing has been deleted and a retry re-runs the whole path.
func (s *GradingService) Grade(ctx context.Context, employeeID int, examID uuid.UUID, answers map[string]int, reason model.SubmitReason) (*model.SubmissionResult, error) {
	key, err := s.exams.GetAnswerKey(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	score := scoreAnswers(key, answers)
	passed := score >= exam.PassingScore

	payload, err := json.Marshal(resultPayload{
		EmployeeID: employeeID,
		ExamID:     examID.String(),
		Score:      score,
		Passed:     passed,
		Reason:     string(reason),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err(); err != nil {
		return nil, fmt.Errorf("enqueue result: %w", err)
	}

	result := &model.SubmissionResult{Score: score, Status: model.ResultFailed}
	if passed {
		result.Status = model.ResultPassed
	}

	s.log.Info().
		Int("employee_id", employeeID).
		Str("exam_id", examID.String()).
		Float64("score", score).
		Bool("passed", passed).
		Str("reason", string(reason)).
		Msg("Attempt graded")

	return result, nil
}

// scoreAnswers returns the percentage of answer-key questions answered
// correctly, rounded to two decimals. Unanswered questions score zero.
func scoreAnswers(key map[string]int, answers map[string]int) float64 {
	if len(key) == 0 {
		return 0
	}

	correct := 0
	for qid, want := range key {
		if got, ok := answers[qid]; ok && got == want {
			correct++
		}
	}

	score := float64(correct) / float64(len(key)) * 100
	return float64(int(score*100+0.5)) / 100
}
