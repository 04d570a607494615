package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// AdminRoleHandler handles RBAC role management.
type AdminRoleHandler struct {
	adminService *service.AdminService
}

// NewAdminRoleHandler creates a new AdminRoleHandler.
func NewAdminRoleHandler(adminService *service.AdminService) *AdminRoleHandler {
	return &AdminRoleHandler{adminService: adminService}
}

// ListRoles godoc
// GET /api/v1/admin/roles
// Lists all roles with their permissions.
func (h *AdminRoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.adminService.ListRoles(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// ListPermissions godoc
// GET /api/v1/admin/permissions
// Lists every permission code the system knows.
func (h *AdminRoleHandler) ListPermissions(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"permissions": h.adminService.AllPermissions()})
}

// RoleRequest is the payload for creating or updating a role.
type RoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=50"`
	Permissions []string `json:"permissions" binding:"required,min=1,dive,required"`
}

// CreateRole godoc
// POST /api/v1/admin/roles
func (h *AdminRoleHandler) CreateRole(c *gin.Context) {
	var req RoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.adminService.CreateRole(c.Request.Context(), req.Name, req.Permissions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"role": role})
}

// UpdateRole godoc
// PUT /api/v1/admin/roles/:id
// The built-in superadmin role cannot be modified.
func (h *AdminRoleHandler) UpdateRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req RoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.adminService.UpdateRole(c.Request.Context(), id, req.Name, req.Permissions)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// DeleteRole godoc
// DELETE /api/v1/admin/roles/:id
// The built-in superadmin role cannot be deleted.
func (h *AdminRoleHandler) DeleteRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.adminService.DeleteRole(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
