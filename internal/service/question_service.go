package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
)

// QuestionService handles question business logic. Questions can only be
// edited while the owning exam is DRAFT; the handler enforces that via
// ExamService before calling in here.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// ListByExam retrieves all questions for an exam.
func (s *QuestionService) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// Create adds a question to an exam.
func (s *QuestionService) Create(ctx context.Context, question *model.Question) error {
	return s.questionRepo.Create(ctx, question)
}

// Delete removes a question from an exam.
func (s *QuestionService) Delete(ctx context.Context, questionID, examID uuid.UUID) error {
	return s.questionRepo.Delete(ctx, questionID, examID)
}

// ReplaceAll replaces an exam's full question set atomically.
func (s *QuestionService) ReplaceAll(ctx context.Context, examID uuid.UUID, questions []model.Question) error {
	for i := range questions {
		questions[i].ExamID = examID
	}
	return s.questionRepo.ReplaceAll(ctx, examID, questions)
}
