package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratushr/stratus-backend/internal/model"
)

// LeaveRepository handles leave request data access.
type LeaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository creates a new LeaveRepository.
func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

// GetByID retrieves a leave request by ID.
func (r *LeaveRepository) GetByID(ctx context.Context, id int) (*model.LeaveRequest, error) {
	l := &model.LeaveRequest{}
	err := r.pool.QueryRow(ctx,
		`SELECT lr.id, lr.employee_id, e.name, lr.type, lr.start_date, lr.end_date, lr.reason,
		        lr.status, lr.reviewer_id, lr.review_note, lr.created_at, lr.updated_at
		 FROM leave_requests lr JOIN employees e ON lr.employee_id = e.id
		 WHERE lr.id = $1`, id,
	).Scan(&l.ID, &l.EmployeeID, &l.EmployeeName, &l.Type, &l.StartDate, &l.EndDate, &l.Reason,
		&l.Status, &l.ReviewerID, &l.ReviewNote, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a new leave request in PENDING status.
func (r *LeaveRepository) Create(ctx context.Context, l *model.LeaveRequest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO leave_requests (employee_id, type, start_date, end_date, reason, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		l.EmployeeID, l.Type, l.StartDate, l.EndDate, l.Reason, model.LeaveStatusPending,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// HasOverlap reports whether the employee already has a non-rejected request
// intersecting the given period.
func (r *LeaveRepository) HasOverlap(ctx context.Context, employeeID int, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status != $2
			  AND start_date <= $3
			  AND end_date >= $4
		)`,
		employeeID, model.LeaveStatusRejected, end, start,
	).Scan(&exists)
	return exists, err
}

// Review records an approval or rejection. Only a PENDING request
// transitions; the returned row count tells the caller whether it did.
func (r *LeaveRepository) Review(ctx context.Context, id int, status model.LeaveStatus, reviewerID int, note string) (bool, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE leave_requests
		 SET status = $1, reviewer_id = $2, review_note = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4 AND status = $5`,
		status, reviewerID, note, id, model.LeaveStatusPending)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// ListByEmployee retrieves all leave requests of one employee.
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int) ([]model.LeaveRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT lr.id, lr.employee_id, e.name, lr.type, lr.start_date, lr.end_date, lr.reason,
		        lr.status, lr.reviewer_id, lr.review_note, lr.created_at, lr.updated_at
		 FROM leave_requests lr JOIN employees e ON lr.employee_id = e.id
		 WHERE lr.employee_id = $1
		 ORDER BY lr.created_at DESC`, employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeaveRows(rows)
}

// ListPaginated retrieves leave requests with pagination and an optional
// status filter, newest first.
func (r *LeaveRepository) ListPaginated(ctx context.Context, status *model.LeaveStatus, limit, offset int) ([]model.LeaveRequest, int, error) {
	countQuery := `SELECT COUNT(*) FROM leave_requests`
	var countArgs []interface{}
	if status != nil {
		countQuery += ` WHERE status = $1`
		countArgs = append(countArgs, *status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT lr.id, lr.employee_id, e.name, lr.type, lr.start_date, lr.end_date, lr.reason,
	                 lr.status, lr.reviewer_id, lr.review_note, lr.created_at, lr.updated_at
	          FROM leave_requests lr JOIN employees e ON lr.employee_id = e.id`
	var args []interface{}
	argIdx := 1

	if status != nil {
		query += ` WHERE lr.status = $1`
		args = append(args, *status)
		argIdx++
	}

	query += ` ORDER BY lr.created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests, err := scanLeaveRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// CountApprovedDaysByType sums approved leave days per type for one
// employee within the given year.
func (r *LeaveRepository) CountApprovedDaysByType(ctx context.Context, employeeID, year int) (map[model.LeaveType]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, COALESCE(SUM(end_date::date - start_date::date + 1), 0)
		 FROM leave_requests
		 WHERE employee_id = $1
		   AND status = $2
		   AND EXTRACT(YEAR FROM start_date) = $3
		 GROUP BY type`,
		employeeID, model.LeaveStatusApproved, year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	used := make(map[model.LeaveType]int)
	for rows.Next() {
		var t model.LeaveType
		var days int
		if err := rows.Scan(&t, &days); err != nil {
			return nil, err
		}
		used[t] = days
	}
	return used, rows.Err()
}

type leaveRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLeaveRows(rows leaveRows) ([]model.LeaveRequest, error) {
	var requests []model.LeaveRequest
	for rows.Next() {
		var l model.LeaveRequest
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.EmployeeName, &l.Type, &l.StartDate, &l.EndDate, &l.Reason,
			&l.Status, &l.ReviewerID, &l.ReviewNote, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, l)
	}
	return requests, rows.Err()
}
