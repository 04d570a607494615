package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// QuestionHandler handles question authoring on DRAFT exams.
type QuestionHandler struct {
	questionService *service.QuestionService
	examService     *service.ExamService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, examService *service.ExamService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		examService:     examService,
	}
}

// requireDraftExam loads the exam and rejects edits once it left DRAFT.
func (h *QuestionHandler) requireDraftExam(c *gin.Context, examID uuid.UUID) bool {
	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return false
	}
	if exam.Status != model.ExamStatusDraft {
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
		return false
	}
	return true
}

// ListQuestions godoc
// GET /api/v1/admin/exams/:id/questions
// Returns questions with correct indices; this is the authoring view.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListByExam(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/v1/admin/exams/:id/questions
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if req.CorrectIndex >= len(req.Options) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"correct_index": "correct_index must point at one of the options"})
		return
	}

	if !h.requireDraftExam(c, examID) {
		return
	}

	question := &model.Question{
		ExamID:       examID,
		Prompt:       req.Prompt,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
		OrderNum:     req.OrderNum,
	}

	if err := h.questionService.Create(c.Request.Context(), question); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/exams/:id/questions
// Atomically replaces the full question set of a DRAFT exam.
func (h *QuestionHandler) ReplaceQuestions(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		if q.CorrectIndex >= len(q.Options) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"questions": "correct_index out of range at position " + strconv.Itoa(i)})
			return
		}
		orderNum := q.OrderNum
		if orderNum == 0 {
			orderNum = i + 1
		}
		questions = append(questions, model.Question{
			ExamID:       examID,
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			OrderNum:     orderNum,
		})
	}

	if !h.requireDraftExam(c, examID) {
		return
	}

	if err := h.questionService.ReplaceAll(c.Request.Context(), examID, questions); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": len(questions)})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/exams/:id/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if !h.requireDraftExam(c, examID) {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), questionID, examID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
