package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stratushr/stratus-backend/internal/middleware"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// AdminUserHandler handles management of HR back-office accounts.
type AdminUserHandler struct {
	adminService *service.AdminService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(adminService *service.AdminService) *AdminUserHandler {
	return &AdminUserHandler{adminService: adminService}
}

// ListAdmins godoc
// GET /api/v1/admin/users
func (h *AdminUserHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admins": admins})
}

// CreateAdminRequest is the payload for creating an admin account.
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	RoleID   int    `json:"role_id" binding:"required,min=1"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// CreateAdmin godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin := &model.Admin{
		Email:  req.Email,
		Name:   req.Name,
		RoleID: req.RoleID,
	}

	if err := h.adminService.Create(c.Request.Context(), admin, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateAdmin) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"admin": admin})
}

// UpdateAdminRequest is the payload for updating an admin account.
type UpdateAdminRequest struct {
	Email  string `json:"email" binding:"required,email,max=255"`
	Name   string `json:"name" binding:"required,min=2,max=100"`
	RoleID int    `json:"role_id" binding:"required,min=1"`
}

// UpdateAdmin godoc
// PUT /api/v1/admin/users/:id
func (h *AdminUserHandler) UpdateAdmin(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req UpdateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	admin.Email = req.Email
	admin.Name = req.Name
	admin.RoleID = req.RoleID

	if err := h.adminService.Update(c.Request.Context(), admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateAdmin) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}

// DeleteAdmin godoc
// DELETE /api/v1/admin/users/:id
// Admins cannot delete their own account.
func (h *AdminUserHandler) DeleteAdmin(c *gin.Context) {
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

	if id == claims.UserID {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
