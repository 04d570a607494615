package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
	"github.com/stratushr/stratus-backend/internal/response"
)

// Leave errors.
var (
	ErrLeaveOverlap    = errors.New("an overlapping leave request already exists")
	ErrLeaveNotPending = errors.New("leave request has already been reviewed")
)

// Yearly allowance per leave type, in days.
var leaveAllowances = map[model.LeaveType]int{
	model.LeaveAnnual:      25,
	model.LeaveSick:        30,
	model.LeaveUnpaid:      60,
	model.LeaveParental:    90,
	model.LeaveBereavement: 5,
}

// LeaveService handles leave request business logic.
type LeaveService struct {
	leaveRepo *repository.LeaveRepository
}

// NewLeaveService creates a new LeaveService.
func NewLeaveService(leaveRepo *repository.LeaveRepository) *LeaveService {
	return &LeaveService{leaveRepo: leaveRepo}
}

// Submit files a new leave request after rejecting overlaps with the
// employee's pending or approved periods.
func (s *LeaveService) Submit(ctx context.Context, req *model.LeaveRequest) error {
	overlap, err := s.leaveRepo.HasOverlap(ctx, req.EmployeeID, req.StartDate, req.EndDate)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return ErrLeaveOverlap
	}

	return s.leaveRepo.Create(ctx, req)
}

// Review approves or rejects a pending request.
func (s *LeaveService) Review(ctx context.Context, id int, status model.LeaveStatus, reviewerID int, note string) (*model.LeaveRequest, error) {
	updated, err := s.leaveRepo.Review(ctx, id, status, reviewerID, note)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrLeaveNotPending
	}
	return s.leaveRepo.GetByID(ctx, id)
}

// ListByEmployee retrieves an employee's own leave requests.
func (s *LeaveService) ListByEmployee(ctx context.Context, employeeID int) ([]model.LeaveRequest, error) {
	requests, err := s.leaveRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []model.LeaveRequest{}
	}
	return requests, nil
}

// List retrieves leave requests for the HR review queue.
func (s *LeaveService) List(ctx context.Context, status *model.LeaveStatus, page, perPage int) ([]model.LeaveRequest, *response.Pagination, error) {
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

	requests, total, err := s.leaveRepo.ListPaginated(ctx, status, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if requests == nil {
		requests = []model.LeaveRequest{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	return requests, pagination, nil
}

// Balances computes the current-year leave ledger for an employee.
func (s *LeaveService) Balances(ctx context.Context, employeeID int) ([]model.LeaveBalance, error) {
	used, err := s.leaveRepo.CountApprovedDaysByType(ctx, employeeID, time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("count approved days: %w", err)
	}

	balances := make([]model.LeaveBalance, 0, len(leaveAllowances))
	for _, t := range []model.LeaveType{model.LeaveAnnual, model.LeaveSick, model.LeaveUnpaid, model.LeaveParental, model.LeaveBereavement} {
		balances = append(balances, model.LeaveBalance{
			Type:      t,
			UsedDays:  used[t],
			TotalDays: leaveAllowances[t],
		})
	}
	return balances, nil
}
