package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratushr/stratus-backend/internal/model"
)

// AttemptResult combines employee data with their attempt outcome for the
// HR results view.
type AttemptResult struct {
	EmployeeID     int                 `json:"employee_id"`
	Name           string              `json:"name"`
	EmployeeNo     string              `json:"employee_no"`
	DepartmentName string              `json:"department_name"`
	FinalScore     *float64            `json:"score"`
	Passed         *bool               `json:"passed"`
	Status         model.AttemptStatus `json:"status"`
	SubmitReason   *model.SubmitReason `json:"submit_reason"`
	StartedAt      *time.Time          `json:"started_at"`
	FinishedAt     *time.Time          `json:"finished_at"`
}

// AttemptRepository handles exam attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetByExamAndEmployee retrieves the attempt for an exam-employee combination.
func (r *AttemptRepository) GetByExamAndEmployee(ctx context.Context, examID uuid.UUID, employeeID int) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, employee_id, started_at, finished_at, status, final_score, passed, submit_reason
		 FROM exam_attempts
		 WHERE exam_id = $1 AND employee_id = $2`, examID, employeeID,
	).Scan(&a.ID, &a.ExamID, &a.EmployeeID, &a.StartedAt, &a.FinishedAt, &a.Status, &a.FinalScore, &a.Passed, &a.SubmitReason)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt (employee starts the exam). The unique
// (exam_id, employee_id) constraint makes starting idempotent: a second
// start finds no row to insert and the caller falls back to the existing
// attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ExamAttempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (exam_id, employee_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, employee_id) DO NOTHING
		 RETURNING id, started_at`,
		a.ExamID, a.EmployeeID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.StartedAt)
}

// Complete marks an attempt as completed with its grading outcome. Only an
// IN_PROGRESS attempt transitions; a repeated completion is a no-op, which
// keeps the first recorded result authoritative.
func (r *AttemptRepository) Complete(ctx context.Context, examID uuid.UUID, employeeID int, score float64, passed bool, reason model.SubmitReason) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET status = $1, final_score = $2, passed = $3, submit_reason = $4, finished_at = $5
		 WHERE exam_id = $6 AND employee_id = $7 AND status = $8`,
		model.AttemptStatusCompleted, score, passed, reason, time.Now(), examID, employeeID, model.AttemptStatusInProgress)
	return err
}

// ListByEmployee retrieves all attempts for a given employee.
func (r *AttemptRepository) ListByEmployee(ctx context.Context, employeeID int) ([]model.ExamAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, employee_id, started_at, finished_at, status, final_score, passed, submit_reason
		 FROM exam_attempts
		 WHERE employee_id = $1
		 ORDER BY started_at DESC`, employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.ExamAttempt
	for rows.Next() {
		var a model.ExamAttempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.EmployeeID, &a.StartedAt, &a.FinishedAt, &a.Status, &a.FinalScore, &a.Passed, &a.SubmitReason); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ListByExam retrieves all employee results for a specific exam, with an
// optional department filter and pagination.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int, departmentID *int) ([]AttemptResult, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := `
		FROM exam_attempts ea
		JOIN employees e ON ea.employee_id = e.id
		JOIN departments d ON e.department_id = d.id
		WHERE ea.exam_id = $1
	`
	args := []any{examID}

	if departmentID != nil {
		args = append(args, *departmentID)
		baseQuery += fmt.Sprintf(" AND e.department_id = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, offset)
	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.employee_no, d.name,
		       ea.final_score, ea.passed, ea.status, ea.submit_reason, ea.started_at, ea.finished_at
		%s
		ORDER BY e.name
		LIMIT $%d OFFSET $%d`, baseQuery, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []AttemptResult
	for rows.Next() {
		var res AttemptResult
		if err := rows.Scan(&res.EmployeeID, &res.Name, &res.EmployeeNo, &res.DepartmentName,
			&res.FinalScore, &res.Passed, &res.Status, &res.SubmitReason, &res.StartedAt, &res.FinishedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// DeleteByExamAndEmployee removes an attempt so the employee can retake the
// exam. Used by the HR session-reset tool.
func (r *AttemptRepository) DeleteByExamAndEmployee(ctx context.Context, examID uuid.UUID, employeeID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM exam_attempts WHERE exam_id = $1 AND employee_id = $2`,
		examID, employeeID)
	return err
}
