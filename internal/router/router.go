package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veracare/marketplace-api/internal/middleware"
	"github.com/veracare/marketplace-api/internal/model"
)

// Handler registers a set of routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// DashboardHandler also carries authenticated practitioner routes.
type DashboardHandler interface {
	RegisterDashboardRoutes(*gin.RouterGroup)
}

// ProtectedHandler carries authenticated learner routes.
type ProtectedHandler interface {
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSConfig       middleware.CORSConfig
	MetricsPrefix    string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	metrics *routerMetrics

	healthH       Handler
	authH         Handler
	directoryH    Handler
	practitionerH Handler
	leadH         Handler
	reviewH       Handler
	courseH       Handler
	storeH        Handler
	newsletterH   Handler
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH Handler,
	authH Handler,
	directoryH Handler,
	practitionerH Handler,
	leadH Handler,
	reviewH Handler,
	courseH Handler,
	storeH Handler,
	newsletterH Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		metrics:       initRouterMetrics(config.MetricsPrefix),
		healthH:       healthH,
		authH:         authH,
		directoryH:    directoryH,
		practitionerH: practitionerH,
		leadH:         leadH,
		reviewH:       reviewH,
		courseH:       courseH,
		storeH:        storeH,
		newsletterH:   newsletterH,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: 30 * time.Second}),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterRoutes(rg)
	r.directoryH.RegisterRoutes(rg)
	r.practitionerH.RegisterRoutes(rg)
	r.leadH.RegisterRoutes(rg)
	r.reviewH.RegisterRoutes(rg)
	r.courseH.RegisterRoutes(rg)
	r.storeH.RegisterRoutes(rg)
	r.newsletterH.RegisterRoutes(rg)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	if h, ok := r.courseH.(ProtectedHandler); ok {
		h.RegisterProtectedRoutes(rg)
	}

	// Practitioner dashboard routes
	dashboard := rg.Group("/dashboard")
	dashboard.Use(r.auth.RequireRole(model.RolePractitioner))
	for _, h := range []Handler{r.practitionerH, r.leadH, r.reviewH} {
		if dh, ok := h.(DashboardHandler); ok {
			dh.RegisterDashboardRoutes(dashboard)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
