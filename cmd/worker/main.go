package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/veracare/marketplace-api/internal/config"
	"github.com/veracare/marketplace-api/internal/email"
	"github.com/veracare/marketplace-api/internal/repository/postgres"
	"github.com/veracare/marketplace-api/pkg/logger"
	redisbroker "github.com/veracare/marketplace-api/pkg/messaging/redis"
	"github.com/veracare/marketplace-api/pkg/metrics"
	"github.com/veracare/marketplace-api/pkg/worker"
)

// setupHealthCheck serves liveness/readiness for the worker on its own
// port, next to the prometheus endpoint.
func setupHealthCheck(l *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			l.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		l.Fatal(err, "failed to create redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	practitionerRepo := postgres.NewPractitionerRepository(db)

	m := metrics.NewMetrics("marketplace", "worker")
	emailSvc := email.NewSMTPService(cfg.SMTP)
	notifier := email.NewNotifier(emailSvc, practitionerRepo, l, m)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		notifier,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
			Retention:     cfg.Outbox.Retention,
			PruneInterval: cfg.Outbox.PruneInterval,
		},
		l,
		m,
	)

	setupHealthCheck(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		l.Info("shutting down worker...")
		cancel()
	}()

	processor.Start(ctx)
}
