package lead

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/middleware"
	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/service/lead"
	"github.com/veracare/marketplace-api/internal/service/practitioner"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

type Handler struct {
	service         lead.LeadService
	practitionerSvc practitioner.PractitionerService
}

func NewHandler(service lead.LeadService, practitionerSvc practitioner.PractitionerService) *Handler {
	return &Handler{service: service, practitionerSvc: practitionerSvc}
}

// RegisterRoutes wires the public lead intake endpoint.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/leads", h.Create)
}

// RegisterDashboardRoutes wires the authenticated lead management
// surface under the practitioner dashboard.
func (h *Handler) RegisterDashboardRoutes(r *gin.RouterGroup) {
	leads := r.Group("/leads")
	{
		leads.GET("", h.List)
		leads.GET("/stats", h.Stats)
		leads.PATCH("/:id/status", h.Transition)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateLead(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) List(c *gin.Context) {
	practitionerID, ok := h.callerPractitionerID(c)
	if !ok {
		return
	}

	leads, err := h.service.ListLeads(c.Request.Context(), practitionerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if leads == nil {
		leads = []*model.Lead{}
	}
	httputil.RespondWithSuccess(c, leads)
}

func (h *Handler) Stats(c *gin.Context) {
	practitionerID, ok := h.callerPractitionerID(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), practitionerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}

// Transition moves a lead along the status progression. Only the lead's
// own practitioner may move it.
func (h *Handler) Transition(c *gin.Context) {
	practitionerID, ok := h.callerPractitionerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead ID"})
		return
	}

	var req model.TransitionLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.service.GetLead(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if existing.PractitionerID != practitionerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "lead belongs to another practitioner"})
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
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
