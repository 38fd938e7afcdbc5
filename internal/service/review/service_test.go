package review

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/pkg/errors"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*model.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*model.Review)}
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *model.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return review, nil
}

func (f *fakeReviewRepo) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	f.reviews[id].IsPublished = published
	return nil
}

func (f *fakeReviewRepo) ListPublished(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error) {
	var out []*model.Review
	for _, r := range f.reviews {
		if r.PractitionerID == practitionerID && r.IsPublished {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) PublishedAggregate(ctx context.Context, practitionerID uuid.UUID) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range f.reviews {
		if r.PractitionerID == practitionerID && r.IsPublished {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type fakePractitionerRepo struct {
	practitioner *model.Practitioner
	rating       float64
	reviewCount  int
}

func (f *fakePractitionerRepo) Create(ctx context.Context, p *model.Practitioner) error { return nil }
func (f *fakePractitionerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	if f.practitioner == nil || f.practitioner.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.practitioner, nil
}
func (f *fakePractitionerRepo) GetBySlug(ctx context.Context, slug string) (*model.Practitioner, error) {
	if f.practitioner == nil || f.practitioner.Slug != slug {
		return nil, sql.ErrNoRows
	}
	return f.practitioner, nil
}
func (f *fakePractitionerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error) {
	return nil, sql.ErrNoRows
}
func (f *fakePractitionerRepo) Update(ctx context.Context, p *model.Practitioner) error { return nil }
func (f *fakePractitionerRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MembershipStatus) error {
	return nil
}
func (f *fakePractitionerRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier model.MembershipTier) error {
	return nil
}
func (f *fakePractitionerRepo) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	f.rating = rating
	f.reviewCount = reviewCount
	return nil
}
func (f *fakePractitionerRepo) IncrementProfileViews(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakePractitionerRepo) Search(ctx context.Context, filters *model.DirectoryFilters, limit, offset int) ([]*model.Practitioner, error) {
	return nil, nil
}
func (f *fakePractitionerRepo) Count(ctx context.Context, filters *model.DirectoryFilters) (int, error) {
	return 0, nil
}
func (f *fakePractitionerRepo) GetTags(ctx context.Context, practitionerID uuid.UUID, kind string) (model.Tags, error) {
	return nil, nil
}
func (f *fakePractitionerRepo) ReplaceTags(ctx context.Context, practitionerID uuid.UUID, kind string, values []string) error {
	return nil
}

func newTestService() (*Service, *fakeReviewRepo, *fakePractitionerRepo) {
	reviews := newFakeReviewRepo()
	practitioners := &fakePractitionerRepo{
		practitioner: &model.Practitioner{
			Base: model.Base{ID: uuid.New()},
			Slug: "dana-rivers-acupuncture",
		},
	}
	return NewService(reviews, practitioners), reviews, practitioners
}

func createReview(t *testing.T, svc *Service, practitionerID uuid.UUID, rating int) *model.Review {
	t.Helper()
	review, err := svc.Create(context.Background(), &model.CreateReviewRequest{
		PractitionerID: practitionerID.String(),
		AuthorName:     "Jordan Patient",
		AuthorEmail:    "jordan@example.com",
		Rating:         rating,
		Body:           "Wonderful experience.",
	})
	require.NoError(t, err)
	return review
}

func TestCreateStartsUnpublished(t *testing.T) {
	svc, _, practitioners := newTestService()

	review := createReview(t, svc, practitioners.practitioner.ID, 5)
	assert.False(t, review.IsPublished)

	listed, err := svc.ListPublished(context.Background(), practitioners.practitioner.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.NotNil(t, listed)
}

func TestCreateUnknownPractitioner(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateReviewRequest{
		PractitionerID: uuid.NewString(),
		AuthorName:     "Jordan Patient",
		AuthorEmail:    "jordan@example.com",
		Rating:         5,
	})
	require.Error(t, err)
}

func TestSetPublishedRecomputesRating(t *testing.T) {
	svc, _, practitioners := newTestService()
	pid := practitioners.practitioner.ID

	first := createReview(t, svc, pid, 5)
	second := createReview(t, svc, pid, 4)
	third := createReview(t, svc, pid, 1)

	require.NoError(t, svc.SetPublished(context.Background(), pid, first.ID, true))
	assert.Equal(t, 5.0, practitioners.rating)
	assert.Equal(t, 1, practitioners.reviewCount)

	require.NoError(t, svc.SetPublished(context.Background(), pid, second.ID, true))
	assert.Equal(t, 4.5, practitioners.rating)
	assert.Equal(t, 2, practitioners.reviewCount)

	// 10/3 rounds to one decimal place.
	require.NoError(t, svc.SetPublished(context.Background(), pid, third.ID, true))
	assert.Equal(t, 3.3, practitioners.rating)
	assert.Equal(t, 3, practitioners.reviewCount)
}

func TestUnpublishingDropsReviewFromAggregate(t *testing.T) {
	svc, _, practitioners := newTestService()
	pid := practitioners.practitioner.ID

	first := createReview(t, svc, pid, 5)
	second := createReview(t, svc, pid, 1)
	require.NoError(t, svc.SetPublished(context.Background(), pid, first.ID, true))
	require.NoError(t, svc.SetPublished(context.Background(), pid, second.ID, true))
	assert.Equal(t, 3.0, practitioners.rating)

	require.NoError(t, svc.SetPublished(context.Background(), pid, second.ID, false))
	assert.Equal(t, 5.0, practitioners.rating)
	assert.Equal(t, 1, practitioners.reviewCount)
}

func TestSetPublishedRejectsOtherPractitionersReview(t *testing.T) {
	svc, _, practitioners := newTestService()
	pid := practitioners.practitioner.ID

	review := createReview(t, svc, pid, 5)

	err := svc.SetPublished(context.Background(), uuid.New(), review.ID, true)
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code)

	// The review is untouched and the rating never recomputed.
	assert.False(t, review.IsPublished)
	assert.Equal(t, 0.0, practitioners.rating)
	assert.Equal(t, 0, practitioners.reviewCount)
}

func TestListPublishedBySlug(t *testing.T) {
	svc, _, practitioners := newTestService()
	pid := practitioners.practitioner.ID

	review := createReview(t, svc, pid, 5)
	require.NoError(t, svc.SetPublished(context.Background(), pid, review.ID, true))

	listed, err := svc.ListPublishedBySlug(context.Background(), "dana-rivers-acupuncture")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.ListPublishedBySlug(context.Background(), "no-such-practitioner")
	require.Error(t, err)
}
