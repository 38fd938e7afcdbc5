package lead

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/pkg/errors"
)

type fakeLeadRepo struct {
	leads   map[uuid.UUID]*model.Lead
	created []*model.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uuid.UUID]*model.Lead)}
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *model.Lead) error {
	f.leads[lead.ID] = lead
	f.created = append(f.created, lead)
	return nil
}

func (f *fakeLeadRepo) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	// Return a detached copy, like the real repository: callers must not
	// observe later UpdateStatus writes through a previously fetched row.
	detached := *lead
	return &detached, nil
}

func (f *fakeLeadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeadStatus) error {
	f.leads[id].Status = status
	return nil
}

func (f *fakeLeadRepo) List(ctx context.Context, practitionerID uuid.UUID) ([]*model.Lead, error) {
	return f.created, nil
}

func (f *fakeLeadRepo) ListRecent(ctx context.Context, practitionerID uuid.UUID, limit int) ([]*model.Lead, error) {
	if len(f.created) > limit {
		return f.created[:limit], nil
	}
	return f.created, nil
}

func (f *fakeLeadRepo) Count(ctx context.Context, practitionerID uuid.UUID) (int, error) {
	return len(f.created), nil
}

func (f *fakeLeadRepo) CountCreatedSince(ctx context.Context, practitionerID uuid.UUID, since time.Time) (int, error) {
	return len(f.created), nil
}

type fakePractitionerGetter struct {
	practitioner *model.Practitioner
}

func (f *fakePractitionerGetter) Create(ctx context.Context, p *model.Practitioner) error { return nil }
func (f *fakePractitionerGetter) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	if f.practitioner == nil || f.practitioner.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.practitioner, nil
}
func (f *fakePractitionerGetter) GetBySlug(ctx context.Context, slug string) (*model.Practitioner, error) {
	return nil, sql.ErrNoRows
}
func (f *fakePractitionerGetter) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error) {
	return nil, sql.ErrNoRows
}
func (f *fakePractitionerGetter) Update(ctx context.Context, p *model.Practitioner) error { return nil }
func (f *fakePractitionerGetter) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MembershipStatus) error {
	return nil
}
func (f *fakePractitionerGetter) UpdateTier(ctx context.Context, id uuid.UUID, tier model.MembershipTier) error {
	return nil
}
func (f *fakePractitionerGetter) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	return nil
}
func (f *fakePractitionerGetter) IncrementProfileViews(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakePractitionerGetter) Search(ctx context.Context, filters *model.DirectoryFilters, limit, offset int) ([]*model.Practitioner, error) {
	return nil, nil
}
func (f *fakePractitionerGetter) Count(ctx context.Context, filters *model.DirectoryFilters) (int, error) {
	return 0, nil
}
func (f *fakePractitionerGetter) GetTags(ctx context.Context, practitionerID uuid.UUID, kind string) (model.Tags, error) {
	return nil, nil
}
func (f *fakePractitionerGetter) ReplaceTags(ctx context.Context, practitionerID uuid.UUID, kind string, values []string) error {
	return nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *fakeLeadRepo, *fakePractitionerGetter, *fakeOutboxRepo) {
	leads := newFakeLeadRepo()
	practitioners := &fakePractitionerGetter{
		practitioner: &model.Practitioner{Base: model.Base{ID: uuid.New()}},
	}
	outbox := &fakeOutboxRepo{}
	return NewService(leads, practitioners, outbox), leads, practitioners, outbox
}

func TestCreateLeadStartsAsNew(t *testing.T) {
	svc, _, practitioners, outbox := newTestService()

	lead, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
		Interest:       "Acupuncture",
		Source:         model.LeadSourceContactForm,
	})
	require.NoError(t, err)

	assert.Equal(t, model.LeadStatusNew, lead.Status)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventLeadCreated, outbox.events[0].EventType)
}

func TestCreateLeadConsultationEmitsConsultationEvent(t *testing.T) {
	svc, _, practitioners, outbox := newTestService()

	_, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
		Source:         model.LeadSourceConsultation,
	})
	require.NoError(t, err)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventConsultationRequested, outbox.events[0].EventType)
}

func TestCreateLeadUnknownPractitioner(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: uuid.NewString(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
	})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestTransitionFollowsLifecycle(t *testing.T) {
	svc, _, practitioners, outbox := newTestService()

	lead, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
	})
	require.NoError(t, err)

	for _, next := range []model.LeadStatus{
		model.LeadStatusContacted,
		model.LeadStatusScheduled,
		model.LeadStatusConverted,
		model.LeadStatusClosed,
	} {
		lead, err = svc.Transition(context.Background(), lead.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, lead.Status)
	}

	// Create event plus four transition events.
	assert.Len(t, outbox.events, 5)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(outbox.events[1].Payload, &payload))
	assert.Equal(t, string(model.LeadStatusNew), payload["from"])
	assert.Equal(t, string(model.LeadStatusContacted), payload["to"])
}

func TestTransitionRejectsBackwardMove(t *testing.T) {
	svc, leads, practitioners, _ := newTestService()

	lead, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), lead.ID, model.LeadStatusContacted)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), lead.ID, model.LeadStatusNew)
	require.Error(t, err)
	assert.Equal(t, model.LeadStatusContacted, leads.leads[lead.ID].Status)
}

func TestTransitionSkippingAStageIsRejected(t *testing.T) {
	svc, _, practitioners, _ := newTestService()

	lead, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), lead.ID, model.LeadStatusConverted)
	require.Error(t, err)
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	svc, _, practitioners, outbox := newTestService()

	lead, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
	})
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), lead.ID, model.LeadStatusNew)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusNew, got.Status)
	assert.Len(t, outbox.events, 1, "no transition event for a no-op")
}

func TestTransitionClosedIsTerminal(t *testing.T) {
	svc, _, practitioners, _ := newTestService()

	lead, err := svc.CreateLead(context.Background(), &model.CreateLeadRequest{
		PractitionerID: practitioners.practitioner.ID.String(),
		Name:           "Jordan Patient",
		Email:          "jordan@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), lead.ID, model.LeadStatusClosed)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), lead.ID, model.LeadStatusContacted)
	require.Error(t, err)
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Transition(context.Background(), uuid.New(), model.LeadStatus("archived"))
	require.Error(t, err)
}

func TestStartOfMonth(t *testing.T) {
	ts := time.Date(2025, time.March, 17, 14, 30, 45, 12, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
}

func TestStatsNormalizesEmptyRecent(t *testing.T) {
	svc, _, _, _ := newTestService()

	stats, err := svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, stats.Recent)
	assert.Zero(t, stats.Total)
}
