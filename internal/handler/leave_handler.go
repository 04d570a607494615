package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stratushr/stratus-backend/internal/middleware"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// LeaveHandler handles leave requests on both sides: employee submission and
// HR review.
type LeaveHandler struct {
	leaveService *service.LeaveService
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(leaveService *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: leaveService}
}

// SubmitLeave godoc
// POST /api/v1/employee/leaves
// Submits a leave request. Overlapping pending/approved requests are rejected.
func (h *LeaveHandler) SubmitLeave(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateLeaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	leave := &model.LeaveRequest{
		EmployeeID: claims.UserID,
		Type:       model.LeaveType(req.Type),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	}

	if err := h.leaveService.Submit(c.Request.Context(), leave); err != nil {
		if errors.Is(err, service.ErrLeaveOverlap) {
			response.Fail(c, http.StatusConflict, response.ErrLeaveOverlap)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"leave": leave})
}

// ListMyLeaves godoc
// GET /api/v1/employee/leaves
// Returns the authenticated employee's leave requests, newest first.
func (h *LeaveHandler) ListMyLeaves(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	leaves, err := h.leaveService.ListByEmployee(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaves": leaves})
}

// GetLeaveBalances godoc
// GET /api/v1/employee/leaves/balances
// Returns the current-year allowance usage per leave type.
func (h *LeaveHandler) GetLeaveBalances(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	balances, err := h.leaveService.Balances(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"balances": balances})
}

// ListLeaves godoc
// GET /api/v1/admin/leaves?status=PENDING&page=1&per_page=20
// Returns leave requests across all employees, optionally filtered by status.
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var status *model.LeaveStatus
	if raw := c.Query("status"); raw != "" {
		s := model.LeaveStatus(raw)
		switch s {
		case model.LeaveStatusPending, model.LeaveStatusApproved, model.LeaveStatusRejected:
			status = &s
		default:
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
	}

	leaves, pagination, err := h.leaveService.List(c.Request.Context(), status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"leaves": leaves}, pagination)
}

// ReviewLeave godoc
// PATCH /api/v1/admin/leaves/:id/review
// Approves or rejects a pending leave request.
func (h *LeaveHandler) ReviewLeave(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewLeaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	leave, err := h.leaveService.Review(c.Request.Context(), id, model.LeaveStatus(req.Status), claims.UserID, req.ReviewNote)
	if err != nil {
		if errors.Is(err, service.ErrLeaveNotPending) {
			response.Fail(c, http.StatusConflict, response.ErrLeaveNotPending)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leave": leave})
}
