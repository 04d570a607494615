package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stratushr/stratus-backend/internal/config"
)

// ReportRepository provides data access for the live exam monitoring view.
// It combines PostgreSQL (attempt state) and Redis (live answer counts).
type ReportRepository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool, rdb *redis.Client) *ReportRepository {
	return &ReportRepository{pool: pool, rdb: rdb}
}

// GetInProgressEmployeeIDs returns all employee IDs with an active attempt
// for the given exam.
func (r *ReportRepository) GetInProgressEmployeeIDs(ctx context.Context, examID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id FROM exam_attempts WHERE exam_id = $1 AND status = 'IN_PROGRESS'`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetAnsweredCounts returns the number of durably persisted answers per
// employee for the given exam.
func (r *ReportRepository) GetAnsweredCounts(ctx context.Context, examID uuid.UUID) (map[int]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, COUNT(*)
		 FROM attempt_answers
		 WHERE exam_id = $1
		 GROUP BY employee_id`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var eid int
		var count int64
		if err := rows.Scan(&eid, &count); err != nil {
			return nil, err
		}
		counts[eid] = count
	}
	return counts, rows.Err()
}

// GetLiveAnsweredCount returns the answer count from the Redis autosave hash
// for one employee, which is ahead of the database while the attempt runs.
func (r *ReportRepository) GetLiveAnsweredCount(ctx context.Context, examID uuid.UUID, employeeID int) (int64, error) {
	return r.rdb.HLen(ctx, config.CacheKey.EmployeeAnswersKey(examID.String(), employeeID)).Result()
}

// GetViolationCounts returns the number of counted violations per employee
// for the given exam.
func (r *ReportRepository) GetViolationCounts(ctx context.Context, examID uuid.UUID) (map[int]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, COUNT(*)
		 FROM violations
		 WHERE exam_id = $1 AND counted
		 GROUP BY employee_id`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var eid int
		var count int64
		if err := rows.Scan(&eid, &count); err != nil {
			return nil, err
		}
		counts[eid] = count
	}
	return counts, rows.Err()
}
