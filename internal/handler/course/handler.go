package course

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/middleware"
	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/service/course"
	"github.com/veracare/marketplace-api/pkg/httputil"
)

type Handler struct {
	service course.CourseService
}

func NewHandler(service course.CourseService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the public catalog listing.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/courses", h.List)
}

// RegisterProtectedRoutes wires the enrolled-learner surface.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	courses := r.Group("/courses")
	{
		courses.GET("/:slug", h.Load)
		courses.POST("/:slug/enroll", h.Enroll)
		courses.PATCH("/:slug/progress", h.MarkProgress)
	}
}

func (h *Handler) List(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if courses == nil {
		courses = []*model.Course{}
	}
	httputil.RespondWithSuccess(c, courses)
}

// Load returns the course, its ordered modules and the caller's
// enrollment with the resume pointer. Unenrolled callers get 403 so
// the client can route to the enrollment flow.
func (h *Handler) Load(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	view, err := h.service.LoadCourse(c.Request.Context(), c.Param("slug"), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) Enroll(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), c.Param("slug"), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, enrollment)
}

// MarkProgress idempotently records one completed module and returns
// the refreshed course view.
func (h *Handler) MarkProgress(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req model.MarkProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moduleID, err := uuid.Parse(req.ModuleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module ID"})
		return
	}

	view, err := h.service.MarkComplete(c.Request.Context(), c.Param("slug"), claims.UserID, moduleID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}
