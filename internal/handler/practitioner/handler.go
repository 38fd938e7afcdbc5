package practitioner

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veracare/marketplace-api/internal/middleware"
	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/service/practitioner"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

type Handler struct {
	service practitioner.PractitionerService
}

func NewHandler(service practitioner.PractitionerService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the public practitioner surface.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	practitioners := r.Group("/practitioners")
	{
		practitioners.POST("", h.Register)
		practitioners.GET("/:slug", h.GetProfile)
	}
}

// RegisterDashboardRoutes wires the authenticated practitioner surface.
func (h *Handler) RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetOwnProfile)
	r.PUT("/profile", h.Update)
	r.PUT("/tier", h.ChangeTier)
	r.PUT("/status", h.ChangeStatus)
	r.PUT("/tags/:kind", h.SetTags)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPractitionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) GetOwnProfile(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	profile, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) Update(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req model.UpdatePractitionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), current.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) ChangeTier(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req model.ChangeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.ChangeTier(c.Request.Context(), current.ID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"tier": req.Tier})
}

// ChangeStatus lets a practitioner pause or resume their own listing.
func (h *Handler) ChangeStatus(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req model.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.ChangeStatus(c.Request.Context(), current.ID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": req.Status})
}

func (h *Handler) SetTags(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req model.SetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.SetTags(c.Request.Context(), current.ID, c.Param("kind"), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"kind": c.Param("kind"), "values": req.Values})
}
