package directory

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/service/directory"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

type Handler struct {
	service directory.DirectoryService
}

func NewHandler(service directory.DirectoryService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/directory", h.Search)
}

// Search handles GET /directory. List parameters (treatments,
// conditions, tier) are comma-separated and accept the singular key as
// an alias; a malformed page falls back to 1.
func (h *Handler) Search(c *gin.Context) {
	filters := &model.DirectoryFilters{
		Page:       parsePage(c.Query("page")),
		Location:   strings.TrimSpace(c.Query("location")),
		Search:     strings.TrimSpace(c.Query("search")),
		Treatments: splitList(queryAlias(c, "treatments", "treatment")),
		Conditions: splitList(queryAlias(c, "conditions", "condition")),
		Insurance:  c.Query("insurance") == "true",
	}
	for _, raw := range splitList(c.Query("tier")) {
		tier := model.MembershipTier(strings.ToUpper(raw))
		if tier.IsValid() {
			filters.Tiers = append(filters.Tiers, tier)
		}
	}

	page, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func queryAlias(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
