package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
)

type capturingService struct {
	filters *model.DirectoryFilters
}

func (s *capturingService) Search(ctx context.Context, filters *model.DirectoryFilters) (*model.DirectoryPage, error) {
	s.filters = filters
	return &model.DirectoryPage{
		Practitioners: []*model.Practitioner{},
		Page:          filters.Page,
	}, nil
}

func performSearch(t *testing.T, query string) *capturingService {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &capturingService{}
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group(""))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/directory"+query, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filters)
	return svc
}

func TestSearchParsesPluralListKeys(t *testing.T) {
	svc := performSearch(t, "?treatments=ketamine,reiki&conditions=ptsd")

	assert.Equal(t, []string{"ketamine", "reiki"}, svc.filters.Treatments)
	assert.Equal(t, []string{"ptsd"}, svc.filters.Conditions)
}

func TestSearchAcceptsSingularAliases(t *testing.T) {
	svc := performSearch(t, "?treatment=acupuncture&condition=anxiety")

	assert.Equal(t, []string{"acupuncture"}, svc.filters.Treatments)
	assert.Equal(t, []string{"anxiety"}, svc.filters.Conditions)
}

func TestSearchParsesRemainingFilters(t *testing.T) {
	svc := performSearch(t, "?page=3&location=Austin&search=smith&tier=premium,bogus&insurance=true")

	assert.Equal(t, 3, svc.filters.Page)
	assert.Equal(t, "Austin", svc.filters.Location)
	assert.Equal(t, "smith", svc.filters.Search)
	assert.Equal(t, []model.MembershipTier{model.TierPremium}, svc.filters.Tiers)
	assert.True(t, svc.filters.Insurance)
}

func TestSearchMalformedPageFallsBackToOne(t *testing.T) {
	svc := performSearch(t, "?page=banana")

	assert.Equal(t, 1, svc.filters.Page)
}
