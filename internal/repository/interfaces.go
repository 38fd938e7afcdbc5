package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/model"
)

// All repository interfaces in one file
type (
	PractitionerRepository interface {
		Create(ctx context.Context, p *model.Practitioner) error
		Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error)
		GetBySlug(ctx context.Context, slug string) (*model.Practitioner, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error)
		Update(ctx context.Context, p *model.Practitioner) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.MembershipStatus) error
		UpdateTier(ctx context.Context, id uuid.UUID, tier model.MembershipTier) error
		UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
		IncrementProfileViews(ctx context.Context, id uuid.UUID) error
		Search(ctx context.Context, filters *model.DirectoryFilters, limit, offset int) ([]*model.Practitioner, error)
		Count(ctx context.Context, filters *model.DirectoryFilters) (int, error)
		GetTags(ctx context.Context, practitionerID uuid.UUID, kind string) (model.Tags, error)
		ReplaceTags(ctx context.Context, practitionerID uuid.UUID, kind string, values []string) error
	}

	LeadRepository interface {
		Create(ctx context.Context, lead *model.Lead) error
		Get(ctx context.Context, id uuid.UUID) (*model.Lead, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeadStatus) error
		List(ctx context.Context, practitionerID uuid.UUID) ([]*model.Lead, error)
		ListRecent(ctx context.Context, practitionerID uuid.UUID, limit int) ([]*model.Lead, error)
		Count(ctx context.Context, practitionerID uuid.UUID) (int, error)
		CountCreatedSince(ctx context.Context, practitionerID uuid.UUID, since time.Time) (int, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		Get(ctx context.Context, id uuid.UUID) (*model.Review, error)
		SetPublished(ctx context.Context, id uuid.UUID, published bool) error
		ListPublished(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error)
		PublishedAggregate(ctx context.Context, practitionerID uuid.UUID) (avg float64, count int, err error)
	}

	CourseRepository interface {
		GetBySlug(ctx context.Context, slug string) (*model.Course, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
		ListPublished(ctx context.Context) ([]*model.Course, error)
		ListModules(ctx context.Context, courseID uuid.UUID) ([]*model.Module, error)
	}

	EnrollmentRepository interface {
		Create(ctx context.Context, e *model.Enrollment) error
		GetForUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
		GetCompletedModuleIDs(ctx context.Context, enrollmentID uuid.UUID) ([]uuid.UUID, error)
		AddCompletedModule(ctx context.Context, enrollmentID, moduleID uuid.UUID) error
		UpdateProgress(ctx context.Context, enrollmentID uuid.UUID, progress int, completedAt *time.Time) error
	}

	ProductRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
		GetBySlug(ctx context.Context, slug string) (*model.Product, error)
		List(ctx context.Context, filters *model.ProductFilters) ([]*model.Product, error)
	}

	OrderRepository interface {
		Create(ctx context.Context, order *model.Order) error
		Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
