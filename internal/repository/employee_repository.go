package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratushr/stratus-backend/internal/model"
)

var ErrDuplicateEmployee = errors.New("employee with this employee number or email already exists")

// EmployeeRepository handles employee data access.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id int) (*model.Employee, error) {
	e := &model.Employee{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, employee_no, email, name, role, department_id, password_hash, created_at, updated_at
		 FROM employees WHERE id = $1`, id,
	).Scan(&e.ID, &e.EmployeeNo, &e.Email, &e.Name, &e.Role, &e.DepartmentID, &e.PasswordHash, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByEmail retrieves an employee by their unique email.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	e := &model.Employee{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, employee_no, email, name, role, department_id, password_hash, created_at, updated_at
		 FROM employees WHERE email = $1`, email,
	).Scan(&e.ID, &e.EmployeeNo, &e.Email, &e.Name, &e.Role, &e.DepartmentID, &e.PasswordHash, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListPaginated retrieves employees with pagination and optional department filter.
func (r *EmployeeRepository) ListPaginated(ctx context.Context, departmentID *int, limit, offset int) ([]model.Employee, int, error) {
	countQuery := `SELECT COUNT(*) FROM employees`
	var countArgs []interface{}
	if departmentID != nil {
		countQuery += ` WHERE department_id = $1`
		countArgs = append(countArgs, *departmentID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, employee_no, email, name, role, department_id, password_hash, created_at, updated_at FROM employees`
	var args []interface{}
	argIdx := 1

	if departmentID != nil {
		query += ` WHERE department_id = $1`
		args = append(args, *departmentID)
		argIdx++
	}

	query += ` ORDER BY name LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.EmployeeNo, &e.Email, &e.Name, &e.Role, &e.DepartmentID, &e.PasswordHash, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO employees (employee_no, email, name, role, department_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		e.EmployeeNo, e.Email, e.Name, e.Role, e.DepartmentID, e.PasswordHash,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmployee
		}
		return err
	}
	return nil
}

// Update modifies an employee's basic info (excluding password).
func (r *EmployeeRepository) Update(ctx context.Context, e *model.Employee) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE employees SET employee_no = $1, email = $2, name = $3, role = $4, department_id = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6`,
		e.EmployeeNo, e.Email, e.Name, e.Role, e.DepartmentID, e.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmployee
		}
		return err
	}
	return nil
}

// UpdatePassword updates an employee's password hash.
func (r *EmployeeRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE employees SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes an employee by ID.
func (r *EmployeeRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return err
}
