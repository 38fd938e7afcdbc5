package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, practitioner_id, author_name, author_email, rating, body,
			is_published, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		review.ID, review.PractitionerID, review.AuthorName, review.AuthorEmail,
		review.Rating, review.Body, review.IsPublished,
		review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT * FROM reviews WHERE id = $1 AND deleted_at IS NULL`
	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	query := `UPDATE reviews SET is_published = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, published, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update review publication: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListPublished(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT * FROM reviews
		WHERE practitioner_id = $1 AND is_published = TRUE AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var reviews []*model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, practitionerID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) PublishedAggregate(ctx context.Context, practitionerID uuid.UUID) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE practitioner_id = $1 AND is_published = TRUE AND deleted_at IS NULL
	`
	var avg float64
	var count int
	if err := r.db.QueryRowContext(ctx, query, practitionerID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return avg, count, nil
}
