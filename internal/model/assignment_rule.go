package model

import "github.com/google/uuid"

// ExamAssignmentRule defines which employees can see an exam. A rule matches
// when every non-nil field matches; an exam is visible if any of its rules
// match the employee.
type ExamAssignmentRule struct {
	ID           int           `json:"id"`
	ExamID       uuid.UUID     `json:"exam_id"`
	Role         *EmployeeRole `json:"role,omitempty"`
	DepartmentID *int          `json:"department_id,omitempty"`
	EmployeeID   *int          `json:"employee_id,omitempty"`
}

// AddAssignmentRuleRequest is the payload for adding an assignment rule.
type AddAssignmentRuleRequest struct {
	Role         *string `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER"`
	DepartmentID *int    `json:"department_id,omitempty"`
	EmployeeID   *int    `json:"employee_id,omitempty"`
}
