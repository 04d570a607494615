package service

import (
	"context"

	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
	"github.com/stratushr/stratus-backend/internal/response"
)

// EmployeeService handles employee account business logic.
type EmployeeService struct {
	employeeRepo *repository.EmployeeRepository
	auth         *AuthService
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(employeeRepo *repository.EmployeeRepository, auth *AuthService) *EmployeeService {
	return &EmployeeService{employeeRepo: employeeRepo, auth: auth}
}

// GetByEmail retrieves an employee by their email.
func (s *EmployeeService) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	return s.employeeRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an employee by ID.
func (s *EmployeeService) GetByID(ctx context.Context, id int) (*model.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

// List retrieves employees with pagination and optional department filter.
func (s *EmployeeService) List(ctx context.Context, departmentID *int, page, perPage int) ([]model.Employee, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	employees, total, err := s.employeeRepo.ListPaginated(ctx, departmentID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if employees == nil {
		employees = []model.Employee{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	return employees, pagination, nil
}

// Create inserts a new employee with a hashed password.
func (s *EmployeeService) Create(ctx context.Context, employee *model.Employee, password string) error {
	hashed, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	employee.PasswordHash = hashed
	return s.employeeRepo.Create(ctx, employee)
}

// Update modifies an employee's details; the password only when provided.
func (s *EmployeeService) Update(ctx context.Context, employee *model.Employee, password string) error {
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return err
	}

	if password != "" {
		hashed, err := s.auth.HashPassword(password)
		if err != nil {
			return err
		}
		return s.employeeRepo.UpdatePassword(ctx, employee.ID, hashed)
	}

	return nil
}

// Delete removes an employee by ID.
func (s *EmployeeService) Delete(ctx context.Context, id int) error {
	return s.employeeRepo.Delete(ctx, id)
}
