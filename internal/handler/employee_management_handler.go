package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// EmployeeManagementHandler handles HR-side employee account administration.
type EmployeeManagementHandler struct {
	employeeService *service.EmployeeService
	authService     *service.AuthService
}

// NewEmployeeManagementHandler creates a new EmployeeManagementHandler.
func NewEmployeeManagementHandler(employeeService *service.EmployeeService, authService *service.AuthService) *EmployeeManagementHandler {
	return &EmployeeManagementHandler{
		employeeService: employeeService,
		authService:     authService,
	}
}

// ListEmployees godoc
// GET /api/v1/admin/employees?department_id=3&page=1&per_page=20
func (h *EmployeeManagementHandler) ListEmployees(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var departmentID *int
	if raw := c.Query("department_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		departmentID = &id
	}

	employees, pagination, err := h.employeeService.List(c.Request.Context(), departmentID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"employees": employees}, pagination)
}

// GetEmployee godoc
// GET /api/v1/admin/employees/:id
func (h *EmployeeManagementHandler) GetEmployee(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	employee, err := h.employeeService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"employee": employee})
}

// CreateEmployee godoc
// POST /api/v1/admin/employees
func (h *EmployeeManagementHandler) CreateEmployee(c *gin.Context) {
	var req model.CreateEmployeeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	employee := &model.Employee{
		EmployeeNo:   req.EmployeeNo,
		Email:        req.Email,
		Name:         req.Name,
		Role:         model.EmployeeRole(req.Role),
		DepartmentID: req.DepartmentID,
	}

	if err := h.employeeService.Create(c.Request.Context(), employee, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmployee) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"employee": employee})
}

// UpdateEmployee godoc
// PUT /api/v1/admin/employees/:id
// Password is only changed when provided.
func (h *EmployeeManagementHandler) UpdateEmployee(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateEmployeeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	employee, err := h.employeeService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	employee.EmployeeNo = req.EmployeeNo
	employee.Email = req.Email
	employee.Name = req.Name
	employee.Role = model.EmployeeRole(req.Role)
	employee.DepartmentID = req.DepartmentID

	if err := h.employeeService.Update(c.Request.Context(), employee, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmployee) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"employee": employee})
}

// DeleteEmployee godoc
// DELETE /api/v1/admin/employees/:id
func (h *EmployeeManagementHandler) DeleteEmployee(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.employeeService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetEmployeeSession godoc
// POST /api/v1/admin/employees/:id/reset-session
// Clears the single-device login so the employee can sign in again after a
// crash or a stolen-token report.
func (h *EmployeeManagementHandler) ResetEmployeeSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetEmployeeSession(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
