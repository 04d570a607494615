package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratushr/stratus-backend/internal/model"
)

// AssignmentRuleRepository handles exam assignment rule data access.
type AssignmentRuleRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRuleRepository creates a new AssignmentRuleRepository.
func NewAssignmentRuleRepository(pool *pgxpool.Pool) *AssignmentRuleRepository {
	return &AssignmentRuleRepository{pool: pool}
}

// ListByExam retrieves all assignment rules for a given exam.
func (r *AssignmentRuleRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamAssignmentRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, role, department_id, employee_id
		 FROM exam_assignment_rules
		 WHERE exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.ExamAssignmentRule
	for rows.Next() {
		var rule model.ExamAssignmentRule
		if err := rows.Scan(&rule.ID, &rule.ExamID, &rule.Role, &rule.DepartmentID, &rule.EmployeeID); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Create inserts a new assignment rule.
func (r *AssignmentRuleRepository) Create(ctx context.Context, rule *model.ExamAssignmentRule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_assignment_rules (exam_id, role, department_id, employee_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		rule.ExamID, rule.Role, rule.DepartmentID, rule.EmployeeID,
	).Scan(&rule.ID)
}

// Delete removes an assignment rule by its ID, ensuring it belongs to the given exam.
func (r *AssignmentRuleRepository) Delete(ctx context.Context, ruleID int, examID uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM exam_assignment_rules WHERE id = $1 AND exam_id = $2`,
		ruleID, examID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// FindExamsForEmployee retrieves exam IDs whose rules match the employee.
// A rule matches when every non-NULL field matches the employee's role,
// department, or identity.
func (r *AssignmentRuleRepository) FindExamsForEmployee(ctx context.Context, employeeID int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ar.exam_id
		 FROM exam_assignment_rules ar
		 JOIN employees e ON e.id = $1
		 WHERE
		   (ar.role IS NULL OR ar.role = CAST(e.role AS VARCHAR))
		   AND (ar.department_id IS NULL OR ar.department_id = e.department_id)
		   AND (ar.employee_id IS NULL OR ar.employee_id = e.id)`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		examIDs = append(examIDs, id)
	}
	return examIDs, rows.Err()
}
