package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
)

type fakePractitionerRepo struct {
	practitioners []*model.Practitioner
	total         int
	countCalls    int
	lastLimit     int
	lastOffset    int
}

func (f *fakePractitionerRepo) Create(ctx context.Context, p *model.Practitioner) error { return nil }
func (f *fakePractitionerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	return nil, nil
}
func (f *fakePractitionerRepo) GetBySlug(ctx context.Context, slug string) (*model.Practitioner, error) {
	return nil, nil
}
func (f *fakePractitionerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error) {
	return nil, nil
}
func (f *fakePractitionerRepo) Update(ctx context.Context, p *model.Practitioner) error { return nil }
func (f *fakePractitionerRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MembershipStatus) error {
	return nil
}
func (f *fakePractitionerRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier model.MembershipTier) error {
	return nil
}
func (f *fakePractitionerRepo) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	return nil
}
func (f *fakePractitionerRepo) IncrementProfileViews(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakePractitionerRepo) GetTags(ctx context.Context, practitionerID uuid.UUID, kind string) (model.Tags, error) {
	return nil, nil
}
func (f *fakePractitionerRepo) ReplaceTags(ctx context.Context, practitionerID uuid.UUID, kind string, values []string) error {
	return nil
}

func (f *fakePractitionerRepo) Search(ctx context.Context, filters *model.DirectoryFilters, limit, offset int) ([]*model.Practitioner, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	if offset >= len(f.practitioners) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.practitioners) {
		end = len(f.practitioners)
	}
	return f.practitioners[offset:end], nil
}

func (f *fakePractitionerRepo) Count(ctx context.Context, filters *model.DirectoryFilters) (int, error) {
	f.countCalls++
	return f.total, nil
}

func seedPractitioners(n int) []*model.Practitioner {
	out := make([]*model.Practitioner, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.Practitioner{Base: model.Base{ID: uuid.New()}})
	}
	return out
}

func TestSearchPaginatesAtFixedPageSize(t *testing.T) {
	repo := &fakePractitionerRepo{practitioners: seedPractitioners(30), total: 30}
	svc := NewService(repo)

	page, err := svc.Search(context.Background(), &model.DirectoryFilters{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, model.DirectoryPageSize, repo.lastLimit)
	assert.Equal(t, model.DirectoryPageSize, repo.lastOffset, "page 2 starts at item 13")
	assert.Len(t, page.Practitioners, 12)
	assert.Equal(t, 30, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
}

func TestSearchClampsPageBelowOne(t *testing.T) {
	repo := &fakePractitionerRepo{practitioners: seedPractitioners(5), total: 5}
	svc := NewService(repo)

	page, err := svc.Search(context.Background(), &model.DirectoryFilters{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, repo.lastOffset)
}

func TestSearchPastLastPageReturnsEmpty(t *testing.T) {
	repo := &fakePractitionerRepo{practitioners: seedPractitioners(5), total: 5}
	svc := NewService(repo)

	page, err := svc.Search(context.Background(), &model.DirectoryFilters{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Practitioners)
	assert.NotNil(t, page.Practitioners, "empty page is a list, not null")
	assert.Equal(t, 5, page.TotalCount)
}

func TestSearchCachesCountWithinTTL(t *testing.T) {
	repo := &fakePractitionerRepo{practitioners: seedPractitioners(24), total: 24}
	svc := NewService(repo)

	filters := &model.DirectoryFilters{Search: "smith"}
	_, err := svc.Search(context.Background(), filters)
	require.NoError(t, err)

	// Same filters on another page reuse the cached count.
	_, err = svc.Search(context.Background(), &model.DirectoryFilters{Search: "smith", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls)

	// Different filters miss the cache.
	_, err = svc.Search(context.Background(), &model.DirectoryFilters{Search: "jones"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.countCalls)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(1))
	assert.Equal(t, 1, TotalPages(12))
	assert.Equal(t, 2, TotalPages(13))
	assert.Equal(t, 3, TotalPages(30))
}

func TestCacheKeyIgnoresPage(t *testing.T) {
	a := cacheKey(&model.DirectoryFilters{Search: "smith", Page: 1})
	b := cacheKey(&model.DirectoryFilters{Search: "smith", Page: 7})
	assert.Equal(t, a, b)

	c := cacheKey(&model.DirectoryFilters{Search: "smith", Insurance: true})
	assert.NotEqual(t, a, c)
}

func TestPageWindow(t *testing.T) {
	assert.Nil(t, PageWindow(1, 0))
	assert.Equal(t, []int{1}, PageWindow(1, 1))
	assert.Equal(t, []int{1, 2, 3}, PageWindow(2, 3))
	assert.Equal(t, []int{1, 2, -1, 10}, PageWindow(1, 10))
	assert.Equal(t, []int{1, -1, 4, 5, 6, -1, 10}, PageWindow(5, 10))
	assert.Equal(t, []int{1, -1, 9, 10}, PageWindow(10, 10))
}

func TestCountCacheExpiry(t *testing.T) {
	// Sanity-check the TTL constant stays short; stale totals past the
	// window would skew pagination noticeably.
	assert.LessOrEqual(t, countCacheTTL, time.Minute)
}
