package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratushr/stratus-backend/internal/model"
)

// ViolationRepository handles exam-integrity violation data access.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// Create inserts a single violation row.
func (r *ViolationRepository) Create(ctx context.Context, v *model.Violation) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO violations (exam_id, employee_id, kind, reason, counted, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		v.ExamID, v.EmployeeID, v.Kind, v.Reason, v.Counted, v.RecordedAt,
	).Scan(&v.ID)
}

// BulkInsert writes a batch of violations in one round trip.
func (r *ViolationRepository) BulkInsert(ctx context.Context, violations []model.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"violations"},
		[]string{"exam_id", "employee_id", "kind", "reason", "counted", "recorded_at"},
		pgx.CopyFromSlice(len(violations), func(i int) ([]interface{}, error) {
			v := violations[i]
			return []interface{}{v.ExamID, v.EmployeeID, v.Kind, v.Reason, v.Counted, v.RecordedAt}, nil
		}),
	)
	return err
}

// ListByAttempt retrieves all violations for one exam-employee pair in
// chronological order.
func (r *ViolationRepository) ListByAttempt(ctx context.Context, examID uuid.UUID, employeeID int) ([]model.Violation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, employee_id, kind, reason, counted, recorded_at
		 FROM violations
		 WHERE exam_id = $1 AND employee_id = $2
		 ORDER BY recorded_at`, examID, employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(&v.ID, &v.ExamID, &v.EmployeeID, &v.Kind, &v.Reason, &v.Counted, &v.RecordedAt); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// CountCountedByAttempt returns how many counted violations an attempt has.
func (r *ViolationRepository) CountCountedByAttempt(ctx context.Context, examID uuid.UUID, employeeID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM violations
		 WHERE exam_id = $1 AND employee_id = $2 AND counted`,
		examID, employeeID,
	).Scan(&count)
	return count, err
}
