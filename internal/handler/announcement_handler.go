package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stratushr/stratus-backend/internal/middleware"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// AnnouncementHandler serves company announcements: read-only for employees,
// full CRUD for the HR back office.
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// ListAnnouncements godoc
// GET /api/v1/employee/announcements?page=1&per_page=20
// Returns announcements, pinned first, newest first.
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	announcements, pagination, err := h.announcementService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"announcements": announcements}, pagination)
}

// GetAnnouncement godoc
// GET /api/v1/employee/announcements/:id
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	announcement, err := h.announcementService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcement": announcement})
}

// CreateAnnouncement godoc
// POST /api/v1/admin/announcements
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateAnnouncementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	announcement := &model.Announcement{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: claims.UserID,
		Pinned:   req.Pinned,
	}

	if err := h.announcementService.Create(c.Request.Context(), announcement); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"announcement": announcement})
}

// UpdateAnnouncement godoc
// PUT /api/v1/admin/announcements/:id
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAnnouncementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	announcement, err := h.announcementService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	if req.Title != "" {
		announcement.Title = req.Title
	}
	if req.Body != "" {
		announcement.Body = req.Body
	}
	if req.Pinned != nil {
		announcement.Pinned = *req.Pinned
	}

	if err := h.announcementService.Update(c.Request.Context(), announcement); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcement": announcement})
}

// DeleteAnnouncement godoc
// DELETE /api/v1/admin/announcements/:id
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
