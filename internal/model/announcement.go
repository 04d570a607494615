package model

import "time"

// Announcement is a company-wide notice authored by the HR back office.
type Announcement struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	AuthorID   int       `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Pinned     bool      `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateAnnouncementRequest is the payload for creating an announcement.
type CreateAnnouncementRequest struct {
	Title  string `json:"title" binding:"required,min=3,max=255"`
	Body   string `json:"body" binding:"required,min=3"`
	Pinned bool   `json:"pinned"`
}

// UpdateAnnouncementRequest is the payload for updating an announcement.
type UpdateAnnouncementRequest struct {
	Title  string `json:"title" binding:"omitempty,min=3,max=255"`
	Body   string `json:"body" binding:"omitempty,min=3"`
	Pinned *bool  `json:"pinned,omitempty"`
}
