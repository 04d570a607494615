package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratushr/stratus-backend/internal/model"
)

// AnnouncementRepository handles announcement data access.
type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

// GetByID retrieves an announcement by ID.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int) (*model.Announcement, error) {
	a := &model.Announcement{}
	err := r.pool.QueryRow(ctx,
		`SELECT an.id, an.title, an.body, an.author_id, ad.name, an.pinned, an.created_at, an.updated_at
		 FROM announcements an JOIN admins ad ON an.author_id = ad.id
		 WHERE an.id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Body, &a.AuthorID, &a.AuthorName, &a.Pinned, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListPaginated retrieves announcements, pinned first then newest first.
func (r *AnnouncementRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Announcement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT an.id, an.title, an.body, an.author_id, ad.name, an.pinned, an.created_at, an.updated_at
		 FROM announcements an JOIN admins ad ON an.author_id = ad.id
		 ORDER BY an.pinned DESC, an.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var announcements []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.AuthorID, &a.AuthorName, &a.Pinned, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		announcements = append(announcements, a)
	}
	return announcements, total, rows.Err()
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, a *model.Announcement) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO announcements (title, body, author_id, pinned)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Title, a.Body, a.AuthorID, a.Pinned,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update modifies an announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, a *model.Announcement) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE announcements SET title = $1, body = $2, pinned = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		a.Title, a.Body, a.Pinned, a.ID)
	return err
}

// Delete removes an announcement by ID.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	return err
}
