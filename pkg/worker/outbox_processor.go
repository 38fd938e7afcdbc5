package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/logger"
	"github.com/veracare/marketplace-api/pkg/messaging"
	"github.com/veracare/marketplace-api/pkg/metrics"
)

// Notifier handles the side effects of an outbox event, typically
// transactional email. A nil Notifier means publish-only.
type Notifier interface {
	Notify(ctx context.Context, event *model.OutboxEvent) error
}

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Retention     time.Duration
	PruneInterval time.Duration
}

type OutboxProcessor struct {
	repo     repository.OutboxRepository
	broker   messaging.Broker
	notifier Notifier
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	notifier Notifier,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}
	if config.Retention <= 0 {
		panic("Retention must be greater than 0")
	}
	if config.PruneInterval <= 0 {
		panic("PruneInterval must be greater than 0")
	}

	return &OutboxProcessor{
		repo:     repo,
		broker:   broker,
		notifier: notifier,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(p.config.PruneInterval)
	defer pruneTicker.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		case <-pruneTicker.C:
			p.pruneProcessed(ctx)
		}
	}
}

// pruneProcessed drops processed events older than the retention
// window. Failed events are kept for inspection.
func (p *OutboxProcessor) pruneProcessed(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.Retention)
	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error(err, "Failed to prune processed events")
		return
	}
	if deleted > 0 {
		p.logger.Info("Pruned processed outbox events", "deleted", deleted)
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
			continue
		}
	}

	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		if err := p.broker.Publish(ctx, event.EventType, event.Payload); err != nil {
			return err
		}
		if p.notifier != nil {
			return p.notifier.Notify(ctx, event)
		}
		return nil
	})

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		errStr := err.Error()
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errStr, nil); updateErr != nil {
			p.logger.Error(updateErr, "Failed to update event status")
		}
		return err
	}

	p.metrics.OutboxEventsProcessed.Inc()
	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil); err != nil {
		p.logger.Error(err, "Failed to update event status", "event_id", event.ID.String())
		return err
	}

	return nil
}

// Helper retry function
func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
