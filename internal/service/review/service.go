package review

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/errors"
)

type ReviewService interface {
	Create(ctx context.Context, req *model.CreateReviewRequest) (*model.Review, error)
	SetPublished(ctx context.Context, callerID, id uuid.UUID, published bool) error
	ListPublished(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error)
	ListPublishedBySlug(ctx context.Context, slug string) ([]*model.Review, error)
}

type Service struct {
	repo             repository.ReviewRepository
	practitionerRepo repository.PractitionerRepository
}

func NewService(repo repository.ReviewRepository, practitionerRepo repository.PractitionerRepository) *Service {
	return &Service{repo: repo, practitionerRepo: practitionerRepo}
}

// Create stores a new review unpublished. Reviews only count toward
// the practitioner's rating once published.
func (s *Service) Create(ctx context.Context, req *model.CreateReviewRequest) (*model.Review, error) {
	practitionerID, err := uuid.Parse(req.PractitionerID)
	if err != nil {
		return nil, errors.BadRequest("invalid practitioner id", err)
	}
	if _, err := s.practitionerRepo.Get(ctx, practitionerID); err != nil {
		return nil, errors.NotFound("practitioner", err)
	}

	review := &model.Review{
		Base: model.Base{
			ID: uuid.New(),
		},
		PractitionerID: practitionerID,
		AuthorName:     req.AuthorName,
		AuthorEmail:    req.AuthorEmail,
		Rating:         req.Rating,
		Body:           req.Body,
		IsPublished:    false,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// SetPublished toggles visibility and recomputes the practitioner's
// aggregate rating from published reviews only. Only the reviewed
// practitioner may moderate, so one practitioner cannot rewrite
// another's rating.
func (s *Service) SetPublished(ctx context.Context, callerID, id uuid.UUID, published bool) error {
	review, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("review", err)
	}
	if review.PractitionerID != callerID {
		return errors.Forbidden("review belongs to another practitioner", nil)
	}

	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	avg, count, err := s.repo.PublishedAggregate(ctx, review.PractitionerID)
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	// One decimal place, matching the directory display.
	rounded := math.Round(avg*10) / 10
	if err := s.practitionerRepo.UpdateRating(ctx, review.PractitionerID, rounded, count); err != nil {
		return fmt.Errorf("failed to update practitioner rating: %w", err)
	}
	return nil
}

// ListPublishedBySlug resolves the practitioner's public slug first,
// for the profile page's review section.
func (s *Service) ListPublishedBySlug(ctx context.Context, slug string) ([]*model.Review, error) {
	practitioner, err := s.practitionerRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NotFound("practitioner", err)
	}
	return s.ListPublished(ctx, practitioner.ID)
}

func (s *Service) ListPublished(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error) {
	reviews, err := s.repo.ListPublished(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*model.Review{}
	}
	return reviews, nil
}
