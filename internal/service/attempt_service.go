package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stratushr/stratus-backend/internal/config"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
)

// Attempt errors.
var (
	ErrExamNotAssigned  = errors.New("exam is not assigned to this employee")
	ErrExamNotAvailable = errors.New("exam is not available")
	ErrAttemptCompleted = errors.New("attempt is already completed")
	ErrNoActiveAttempt  = errors.New("no active attempt for this exam")
)

// AttemptService handles exam attempt business logic.
type AttemptService struct {
	attemptRepo   *repository.AttemptRepository
	examRepo      *repository.ExamRepository
	ruleRepo      *repository.AssignmentRuleRepository
	violationRepo *repository.ViolationRepository
	snapshots     *repository.SnapshotStore
	rdb           *redis.Client
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	examRepo *repository.ExamRepository,
	ruleRepo *repository.AssignmentRuleRepository,
	violationRepo *repository.ViolationRepository,
	snapshots *repository.SnapshotStore,
	rdb *redis.Client,
) *AttemptService {
	return &AttemptService{
		attemptRepo:   attemptRepo,
		examRepo:      examRepo,
		ruleRepo:      ruleRepo,
		violationRepo: violationRepo,
		snapshots:     snapshots,
		rdb:           rdb,
	}
}

// LobbyStatus represents the concrete state of an exam in the lobby.
type LobbyStatus string

const (
	LobbyStatusAvailable  LobbyStatus = "AVAILABLE"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
)

// LobbyExam represents an exam as displayed in the employee lobby.
type LobbyExam struct {
	model.Exam
	LobbyStatus   LobbyStatus          `json:"lobby_status"`
	AttemptStatus *model.AttemptStatus `json:"attempt_status,omitempty"`
	FinalScore    *float64             `json:"final_score,omitempty"`
	Passed        *bool                `json:"passed,omitempty"`
}

// GetLobby returns the exams assigned to an employee with their attempt
// status overlaid.
func (s *AttemptService) GetLobby(ctx context.Context, employeeID int) ([]LobbyExam, error) {
	examIDs, err := s.ruleRepo.FindExamsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("find exams for employee: %w", err)
	}

	attempts, err := s.attemptRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	attemptMap := make(map[uuid.UUID]*model.ExamAttempt, len(attempts))
	for i := range attempts {
		attemptMap[attempts[i].ExamID] = &attempts[i]
	}

	var lobby []LobbyExam
	for _, eid := range examIDs {
		exam, err := s.examRepo.GetByID(ctx, eid)
		if err != nil {
			continue // Skip if exam was deleted
		}

		// Archived exams stay visible only for employees who already
		// attempted them.
		attempt, attempted := attemptMap[eid]
		if exam.Status != model.ExamStatusPublished && !attempted {
			continue
		}

		entry := LobbyExam{Exam: *exam}
		if attempted {
			entry.AttemptStatus = &attempt.Status
			entry.FinalScore = attempt.FinalScore
			entry.Passed = attempt.Passed
			if attempt.Status == model.AttemptStatusCompleted {
				entry.LobbyStatus = LobbyStatusCompleted
			} else {
				entry.LobbyStatus = LobbyStatusInProgress
			}
		} else {
			entry.LobbyStatus = LobbyStatusAvailable
		}

		lobby = append(lobby, entry)
	}

	return lobby, nil
}

// StartExam creates the attempt for an assigned, published exam. Starting
// is idempotent: a repeated start returns the existing attempt, and a
// completed attempt is rejected.
func (s *AttemptService) StartExam(ctx context.Context, examID uuid.UUID, employeeID int) (*model.ExamAttempt, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotAvailable
	}

	// The assignment rules are the only gate into an exam.
	assignedIDs, err := s.ruleRepo.FindExamsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	assigned := false
	for _, eid := range assignedIDs {
		if eid == examID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, ErrExamNotAssigned
	}

	existing, err := s.attemptRepo.GetByExamAndEmployee(ctx, examID, employeeID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing attempt: %w", err)
	}
	if existing != nil {
		if existing.Status == model.AttemptStatusCompleted {
			return nil, ErrAttemptCompleted
		}
		s.cacheStartTime(ctx, existing)
		return existing, nil
	}

	attempt := &model.ExamAttempt{
		ExamID:     examID,
		EmployeeID: employeeID,
		StartedAt:  time.Now(),
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent start from another device won the insert.
			existing, fetchErr := s.attemptRepo.GetByExamAndEmployee(ctx, examID, employeeID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, but fetch failed: %w", fetchErr)
			}
			if existing.Status == model.AttemptStatusCompleted {
				return nil, ErrAttemptCompleted
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.cacheStartTime(ctx, attempt)
	return attempt, nil
}

// cacheStartTime keeps the attempt's wall-clock start in Redis so state
// reconstruction avoids PostgreSQL on the hot path. Failure is tolerable;
// GetAttemptState falls back to the database.
func (s *AttemptService) cacheStartTime(ctx context.Context, a *model.ExamAttempt) {
	key := config.CacheKey.AttemptStartKey(a.ExamID.String(), a.EmployeeID)
	_ = s.rdb.Set(ctx, key, a.StartedAt.Unix(), 0).Err()
}

// VerifyActiveAttempt checks that an employee has an IN_PROGRESS attempt for
// the given exam.
func (s *AttemptService) VerifyActiveAttempt(ctx context.Context, examID uuid.UUID, employeeID int) error {
	attempt, err := s.attemptRepo.GetByExamAndEmployee(ctx, examID, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoActiveAttempt
		}
		return fmt.Errorf("get attempt: %w", err)
	}
	if attempt.Status == model.AttemptStatusCompleted {
		return ErrAttemptCompleted
	}
	return nil
}

// GetAttemptState reconstructs the resumable state of an attempt: the
// autosaved answers and the wall-clock remaining time. The progress
// snapshot is the primary source; when it is missing the state is derived
// from the attempt's start time and the exam duration.
func (s *AttemptService) GetAttemptState(ctx context.Context, examID uuid.UUID, employeeID int) (*model.AttemptState, error) {
	state := &model.AttemptState{
		ExamID:     examID,
		EmployeeID: employeeID,
		Answers:    map[string]int{},
	}

	violations, err := s.violationRepo.CountCountedByAttempt(ctx, examID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("count violations: %w", err)
	}
	state.ViolationCount = violations

	snap, err := s.snapshots.Load(ctx, employeeID, examID)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		state.Answers = snap.Answers
		state.RemainingSeconds = snap.Remaining(time.Now().UnixMilli())
		return state, nil
	}

	// No snapshot yet: derive remaining time from the start timestamp.
	remaining, err := s.remainingFromStart(ctx, examID, employeeID)
	if err != nil {
		return nil, err
	}
	state.RemainingSeconds = remaining
	return state, nil
}

func (s *AttemptService) remainingFromStart(ctx context.Context, examID uuid.UUID, employeeID int) (int, error) {
	durationStr, err := s.rdb.Get(ctx, config.CacheKey.ExamDurationKey(examID.String())).Result()
	if err != nil {
		return 0, fmt.Errorf("get exam duration: %w", err)
	}
	durationMinutes, err := strconv.Atoi(durationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format in redis: %w", err)
	}

	var startUnix int64
	startKey := config.CacheKey.AttemptStartKey(examID.String(), employeeID)

	val, err := s.rdb.Get(ctx, startKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Cache miss: PostgreSQL is the source of truth, then self-heal.
		attempt, dbErr := s.attemptRepo.GetByExamAndEmployee(ctx, examID, employeeID)
		if dbErr != nil {
			return 0, fmt.Errorf("attempt not found in cache or db: %w", dbErr)
		}
		startUnix = attempt.StartedAt.Unix()
		_ = s.rdb.Set(ctx, startKey, startUnix, 0)
	case err != nil:
		return 0, fmt.Errorf("redis error getting start time: %w", err)
	default:
		startUnix, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid start time format in cache: %w", err)
		}
	}

	endTime := time.Unix(startUnix, 0).Add(time.Duration(durationMinutes) * time.Minute)
	remaining := time.Until(endTime)
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining.Seconds()), nil
}

// GetExamResults retrieves paginated exam results with an optional
// department filter.
func (s *AttemptService) GetExamResults(ctx context.Context, examID uuid.UUID, page, perPage int, departmentID *int) ([]repository.AttemptResult, int64, error) {
	results, total, err := s.attemptRepo.ListByExam(ctx, examID, page, perPage, departmentID)
	if err != nil {
		return nil, 0, err
	}
	if results == nil {
		results = []repository.AttemptResult{}
	}
	return results, total, nil
}

// GetViolations retrieves the violation audit trail for one attempt.
func (s *AttemptService) GetViolations(ctx context.Context, examID uuid.UUID, employeeID int) ([]model.Violation, error) {
	violations, err := s.violationRepo.ListByAttempt(ctx, examID, employeeID)
	if err != nil {
		return nil, err
	}
	if violations == nil {
		violations = []model.Violation{}
	}
	return violations, nil
}

// ResetAttempt wipes an attempt, its snapshot, and its autosaved answers so
// the employee can retake the exam. HR-only tool.
func (s *AttemptService) ResetAttempt(ctx context.Context, examID uuid.UUID, employeeID int) error {
	if err := s.attemptRepo.DeleteByExamAndEmployee(ctx, examID, employeeID); err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}

	if err := s.snapshots.Delete(ctx, employeeID, examID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.EmployeeAnswersKey(examID.String(), employeeID))
	pipe.Del(ctx, config.CacheKey.AttemptStartKey(examID.String(), employeeID))
	_, err := pipe.Exec(ctx)
	return err
}
