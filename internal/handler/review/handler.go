package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/middleware"
	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/service/practitioner"
	"github.com/veracare/marketplace-api/internal/service/review"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

type Handler struct {
	service         review.ReviewService
	practitionerSvc practitioner.PractitionerService
}

func NewHandler(service review.ReviewService, practitionerSvc practitioner.PractitionerService) *Handler {
	return &Handler{service: service, practitionerSvc: practitionerSvc}
}

// RegisterRoutes wires the public review surface. Creation is open;
// new reviews stay hidden until published.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reviews", h.Create)
	r.GET("/practitioners/:slug/reviews", h.ListForPractitioner)
}

// RegisterDashboardRoutes wires review moderation.
func (h *Handler) RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.PATCH("/reviews/:id/publish", h.SetPublished)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListForPractitioner(c *gin.Context) {
	reviews, err := h.service.ListPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reviews)
}

type setPublishedRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// SetPublished moderates a single review. The caller may only touch
// reviews of their own profile.
func (h *Handler) SetPublished(c *gin.Context) {
	callerID, ok := h.callerPractitionerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	var req setPublishedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetPublished(c.Request.Context(), callerID, id, *req.Published); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id, "published": *req.Published})
}

func (h *Handler) callerPractitionerID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return uuid.Nil, false
	}

	current, err := h.practitionerSvc.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return uuid.Nil, false
	}
	return current.ID, true
}
