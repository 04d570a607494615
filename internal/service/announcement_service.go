package service

import (
	"context"

	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
	"github.com/stratushr/stratus-backend/internal/response"
)

// AnnouncementService handles announcement business logic.
type AnnouncementService struct {
	announcementRepo *repository.AnnouncementRepository
}

// NewAnnouncementService creates a new AnnouncementService.
func NewAnnouncementService(announcementRepo *repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcementRepo: announcementRepo}
}

// List retrieves announcements, pinned first.
func (s *AnnouncementService) List(ctx context.Context, page, perPage int) ([]model.Announcement, *response.Pagination, error) {
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

	announcements, total, err := s.announcementRepo.ListPaginated(ctx, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if announcements == nil {
		announcements = []model.Announcement{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	return announcements, pagination, nil
}

// GetByID retrieves an announcement by ID.
func (s *AnnouncementService) GetByID(ctx context.Context, id int) (*model.Announcement, error) {
	return s.announcementRepo.GetByID(ctx, id)
}

// Create inserts a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, a *model.Announcement) error {
	return s.announcementRepo.Create(ctx, a)
}

// Update modifies an announcement.
func (s *AnnouncementService) Update(ctx context.Context, a *model.Announcement) error {
	return s.announcementRepo.Update(ctx, a)
}

// Delete removes an announcement by ID.
func (s *AnnouncementService) Delete(ctx context.Context, id int) error {
	return s.announcementRepo.Delete(ctx, id)
}
