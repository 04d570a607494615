package model

import "time"

// LeaveType enumerates the categories of leave an employee can request.
type LeaveType string

const (
	LeaveAnnual      LeaveType = "ANNUAL"
	LeaveSick        LeaveType = "SICK"
	LeaveUnpaid      LeaveType = "UNPAID"
	LeaveParental    LeaveType = "PARENTAL"
	LeaveBereavement LeaveType = "BEREAVEMENT"
)

// LeaveStatus enumerates the review states of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "PENDING"
	LeaveStatusApproved LeaveStatus = "APPROVED"
	LeaveStatusRejected LeaveStatus = "REJECTED"
)

// LeaveRequest is one employee's request for a leave period.
type LeaveRequest struct {
	ID           int         `json:"id"`
	EmployeeID   int         `json:"employee_id"`
	EmployeeName string      `json:"employee_name,omitempty"`
	Type         LeaveType   `json:"type"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      time.Time   `json:"end_date"`
	Reason       string      `json:"reason"`
	Status       LeaveStatus `json:"status"`
	ReviewerID   *int        `json:"reviewer_id,omitempty"`
	ReviewNote   string      `json:"review_note,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CreateLeaveRequest is the payload for submitting a leave request.
type CreateLeaveRequest struct {
	Type      string    `json:"type" binding:"required,oneof=ANNUAL SICK UNPAID PARENTAL BEREAVEMENT"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required,gtefield=StartDate"`
	Reason    string    `json:"reason" binding:"required,min=3,max=1000"`
}

// ReviewLeaveRequest is the payload for approving or rejecting a request.
type ReviewLeaveRequest struct {
	Status     string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	ReviewNote string `json:"review_note" binding:"omitempty,max=1000"`
}

// LeaveBalance summarizes an employee's leave ledger for one type.
type LeaveBalance struct {
	Type      LeaveType `json:"type"`
	UsedDays  int       `json:"used_days"`
	TotalDays int       `json:"total_days"`
}
