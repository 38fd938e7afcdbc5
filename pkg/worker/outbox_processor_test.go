package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/pkg/logger"
	"github.com/veracare/marketplace-api/pkg/metrics"
)

// Registered once; promauto panics on duplicate registration.
var testMetrics = metrics.NewMetrics("marketplace_test", "outbox")

type fakeOutboxRepo struct {
	pending  []*model.OutboxEvent
	statuses map[uuid.UUID]model.OutboxStatus
	errMsgs  map[uuid.UUID]string

	pruneCutoffs []time.Time
	pruneDeleted int64
	pruneErr     error
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{
		statuses: make(map[uuid.UUID]model.OutboxStatus),
		errMsgs:  make(map[uuid.UUID]string),
	}
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.pending = append(f.pending, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error {
	f.statuses[id] = status
	if errMsg != nil {
		f.errMsgs[id] = *errMsg
	}
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	f.pruneCutoffs = append(f.pruneCutoffs, before)
	return f.pruneDeleted, f.pruneErr
}

type fakeBroker struct {
	published []string
	err       error
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		Retention:     30 * 24 * time.Hour,
		PruneInterval: time.Hour,
	}
}

func newTestProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, nil, testConfig(), logger.NewLogger(nil), testMetrics)
}

func pendingEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   []byte(`{}`),
	}
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	repo := newFakeOutboxRepo()
	broker := &fakeBroker{}
	event := pendingEvent(model.EventLeadCreated)
	repo.pending = []*model.OutboxEvent{event}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, []string{model.EventLeadCreated}, broker.published)
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[event.ID])
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	repo := newFakeOutboxRepo()
	broker := &fakeBroker{err: errors.New("redis unreachable")}
	event := pendingEvent(model.EventOrderCreated)
	repo.pending = []*model.OutboxEvent{event}

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[event.ID])
	assert.Contains(t, repo.errMsgs[event.ID], "redis unreachable")
}

func TestPruneProcessedUsesRetentionCutoff(t *testing.T) {
	repo := newFakeOutboxRepo()
	repo.pruneDeleted = 3

	p := newTestProcessor(repo, &fakeBroker{})
	p.pruneProcessed(context.Background())

	require.Len(t, repo.pruneCutoffs, 1)
	want := time.Now().Add(-testConfig().Retention)
	assert.WithinDuration(t, want, repo.pruneCutoffs[0], time.Minute)
}

func TestPruneProcessedSurvivesRepoError(t *testing.T) {
	repo := newFakeOutboxRepo()
	repo.pruneErr = errors.New("deadlock detected")

	p := newTestProcessor(repo, &fakeBroker{})
	p.pruneProcessed(context.Background())

	require.Len(t, repo.pruneCutoffs, 1)
}

func TestNewOutboxProcessorRejectsZeroConfig(t *testing.T) {
	repo := newFakeOutboxRepo()

	cfg := testConfig()
	cfg.Retention = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(repo, &fakeBroker{}, nil, cfg, logger.NewLogger(nil), testMetrics)
	})

	cfg = testConfig()
	cfg.PruneInterval = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(repo, &fakeBroker{}, nil, cfg, logger.NewLogger(nil), testMetrics)
	})
}
