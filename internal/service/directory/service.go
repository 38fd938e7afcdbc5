package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
)

const (
	countCacheTTL     = 30 * time.Second
	countCacheCleanup = 5 * time.Minute
)

type DirectoryService interface {
	Search(ctx context.Context, filters *model.DirectoryFilters) (*model.DirectoryPage, error)
}

type Service struct {
	repo   repository.PractitionerRepository
	counts *gocache.Cache
}

func NewService(repo repository.PractitionerRepository) *Service {
	return &Service{
		repo:   repo,
		counts: gocache.New(countCacheTTL, countCacheCleanup),
	}
}

// Search returns one ordered page of visible practitioners for the
// given filters. Page numbers below 1 fall back to 1; pages past the
// end return an empty list rather than an error.
func (s *Service) Search(ctx context.Context, filters *model.DirectoryFilters) (*model.DirectoryPage, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}

	total, err := s.countWithCache(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count directory results: %w", err)
	}

	offset := (filters.Page - 1) * model.DirectoryPageSize
	practitioners, err := s.repo.Search(ctx, filters, model.DirectoryPageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}
	if practitioners == nil {
		practitioners = []*model.Practitioner{}
	}

	return &model.DirectoryPage{
		Practitioners: practitioners,
		TotalCount:    total,
		TotalPages:    TotalPages(total),
		Page:          filters.Page,
	}, nil
}

// TotalPages is ceiling division over the fixed page size.
func TotalPages(total int) int {
	return (total + model.DirectoryPageSize - 1) / model.DirectoryPageSize
}

func (s *Service) countWithCache(ctx context.Context, filters *model.DirectoryFilters) (int, error) {
	key := cacheKey(filters)
	if cached, ok := s.counts.Get(key); ok {
		return cached.(int), nil
	}

	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, err
	}

	s.counts.Set(key, total, gocache.DefaultExpiration)
	return total, nil
}

// cacheKey builds a stable key from everything except the page number,
// which does not affect the count.
func cacheKey(filters *model.DirectoryFilters) string {
	tiers := make([]string, 0, len(filters.Tiers))
	for _, t := range filters.Tiers {
		tiers = append(tiers, string(t))
	}

	return strings.Join([]string{
		filters.Location,
		filters.Search,
		strings.Join(filters.Treatments, ","),
		strings.Join(filters.Conditions, ","),
		strings.Join(tiers, ","),
		fmt.Sprintf("%t", filters.Insurance),
	}, "|")
}

// PageWindow computes the page numbers to render in a pagination
// control: first page, a sliding window of current plus/minus one, and
// the last page, with -1 marking an ellipsis between non-contiguous
// ranges.
func PageWindow(current, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	include := func(p int) bool {
		if p == 1 || p == totalPages {
			return true
		}
		return p >= current-1 && p <= current+1
	}

	var window []int
	prev := 0
	for p := 1; p <= totalPages; p++ {
		if !include(p) {
			continue
		}
		if prev != 0 && p-prev > 1 {
			window = append(window, -1)
		}
		window = append(window, p)
		prev = p
	}
	return window
}
