package model

import "time"

// EmployeeRole distinguishes the portal roles an exam can target.
type EmployeeRole string

const (
	RoleEmployee EmployeeRole = "EMPLOYEE"
	RoleManager  EmployeeRole = "MANAGER"
)

// Employee represents a portal user (exam candidate, leave requester).
type Employee struct {
	ID           int          `json:"id"`
	EmployeeNo   string       `json:"employee_no"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Role         EmployeeRole `json:"role"`
	DepartmentID int          `json:"department_id"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// EmployeeLoginRequest is the payload for employee authentication.
type EmployeeLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// EmployeeLoginResponse is returned after successful employee login.
type EmployeeLoginResponse struct {
	Token    string   `json:"token"`
	Employee Employee `json:"employee"`
}

// CreateEmployeeRequest is the payload for creating a new employee account.
type CreateEmployeeRequest struct {
	EmployeeNo   string `json:"employee_no" binding:"required,min=2,max=20"`
	Email        string `json:"email" binding:"required,email,max=255"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Role         string `json:"role" binding:"required,oneof=EMPLOYEE MANAGER"`
	DepartmentID int    `json:"department_id" binding:"required"`
	Password     string `json:"password" binding:"required,min=6,max=128"`
}

// UpdateEmployeeRequest is the payload for updating an existing employee.
type UpdateEmployeeRequest struct {
	EmployeeNo   string `json:"employee_no" binding:"required,min=2,max=20"`
	Email        string `json:"email" binding:"required,email,max=255"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Role         string `json:"role" binding:"required,oneof=EMPLOYEE MANAGER"`
	DepartmentID int    `json:"department_id" binding:"required"`
	Password     string `json:"password" binding:"omitempty,min=6,max=128"`
}
