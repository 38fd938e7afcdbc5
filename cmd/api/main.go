package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/veracare/marketplace-api/internal/cart"
	"github.com/veracare/marketplace-api/internal/config"
	authHandler "github.com/veracare/marketplace-api/internal/handler/auth"
	courseHandler "github.com/veracare/marketplace-api/internal/handler/course"
	directoryHandler "github.com/veracare/marketplace-api/internal/handler/directory"
	healthHandler "github.com/veracare/marketplace-api/internal/handler/health"
	leadHandler "github.com/veracare/marketplace-api/internal/handler/lead"
	newsletterHandler "github.com/veracare/marketplace-api/internal/handler/newsletter"
	practitionerHandler "github.com/veracare/marketplace-api/internal/handler/practitioner"
	reviewHandler "github.com/veracare/marketplace-api/internal/handler/review"
	storeHandler "github.com/veracare/marketplace-api/internal/handler/store"
	"github.com/veracare/marketplace-api/internal/middleware"
	"github.com/veracare/marketplace-api/internal/repository/postgres"
	"github.com/veracare/marketplace-api/internal/router"
	authService "github.com/veracare/marketplace-api/internal/service/auth"
	checkoutService "github.com/veracare/marketplace-api/internal/service/checkout"
	courseService "github.com/veracare/marketplace-api/internal/service/course"
	directoryService "github.com/veracare/marketplace-api/internal/service/directory"
	leadService "github.com/veracare/marketplace-api/internal/service/lead"
	practitionerService "github.com/veracare/marketplace-api/internal/service/practitioner"
	reviewService "github.com/veracare/marketplace-api/internal/service/review"
	"github.com/veracare/marketplace-api/pkg/auth"
	"github.com/veracare/marketplace-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Repositories
	practitionerRepo := postgres.NewPractitionerRepository(db)
	leadRepo := postgres.NewLeadRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Shared infrastructure
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(0)
	cartRules := cart.Rules{
		FreeShippingCents: cfg.Store.FreeShippingCents,
		FlatShippingCents: cfg.Store.FlatShippingCents,
		TaxRate:           cfg.Store.TaxRate,
		PromoCode:         cfg.Store.PromoCode,
		PromoPercent:      cfg.Store.PromoPercent,
	}
	cartStore := cart.NewStore(redisClient, cfg.Store.CartTTL)
	paymentClient := checkoutService.NewPaymentClient(cfg.Payment)

	// Services
	directorySvc := directoryService.NewService(practitionerRepo)
	practitionerSvc := practitionerService.NewService(practitionerRepo, userRepo, outboxRepo, hasher)
	leadSvc := leadService.NewService(leadRepo, practitionerRepo, outboxRepo)
	reviewSvc := reviewService.NewService(reviewRepo, practitionerRepo)
	courseSvc := courseService.NewService(courseRepo, enrollmentRepo, userRepo, outboxRepo)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	checkoutSvc := checkoutService.NewService(orderRepo, productRepo, outboxRepo, paymentClient, cartRules)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db, redisClient),
		authHandler.NewHandler(authSvc),
		directoryHandler.NewHandler(directorySvc),
		practitionerHandler.NewHandler(practitionerSvc),
		leadHandler.NewHandler(leadSvc, practitionerSvc),
		reviewHandler.NewHandler(reviewSvc, practitionerSvc),
		courseHandler.NewHandler(courseSvc),
		storeHandler.NewHandler(productRepo, cartStore, cartRules, checkoutSvc),
		newsletterHandler.NewHandler(outboxRepo),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			CORSConfig:       middleware.DefaultCORSConfig(),
			MetricsPrefix:    "marketplace_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
