package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/errors"
)

// recentLeadLimit caps the dashboard "recent leads" slice.
const recentLeadLimit = 5

type LeadService interface {
	CreateLead(ctx context.Context, req *model.CreateLeadRequest) (*model.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	ListLeads(ctx context.Context, practitionerID uuid.UUID) ([]*model.Lead, error)
	Transition(ctx context.Context, id uuid.UUID, next model.LeadStatus) (*model.Lead, error)
	Stats(ctx context.Context, practitionerID uuid.UUID) (*model.LeadStats, error)
}

type Service struct {
	repo             repository.LeadRepository
	practitionerRepo repository.PractitionerRepository
	outboxRepo       repository.OutboxRepository
}

func NewService(repo repository.LeadRepository, practitionerRepo repository.PractitionerRepository, outboxRepo repository.OutboxRepository) *Service {
	return &Service{
		repo:             repo,
		practitionerRepo: practitionerRepo,
		outboxRepo:       outboxRepo,
	}
}

func (s *Service) CreateLead(ctx context.Context, req *model.CreateLeadRequest) (*model.Lead, error) {
	practitionerID, err := uuid.Parse(req.PractitionerID)
	if err != nil {
		return nil, errors.BadRequest("invalid practitioner ID", err)
	}

	// Leads only route to practitioners that actually exist.
	if _, err := s.practitionerRepo.Get(ctx, practitionerID); err != nil {
		return nil, errors.NotFound("practitioner", err)
	}

	lead := &model.Lead{
		Base: model.Base{
			ID: uuid.New(),
		},
		PractitionerID: practitionerID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Interest:       req.Interest,
		Message:        req.Message,
		Source:         req.Source,
		Status:         model.LeadStatusNew,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	// The worker sends the practitioner notification and the patient
	// confirmation from this event.
	eventType := model.EventLeadCreated
	if lead.Source == model.LeadSourceConsultation {
		eventType = model.EventConsultationRequested
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"lead_id":         lead.ID,
		"practitioner_id": lead.PractitionerID,
		"name":            lead.Name,
		"email":           lead.Email,
		"interest":        lead.Interest,
	})
	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to queue lead event: %w", err)
	}
	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("lead", err)
	}
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context, practitionerID uuid.UUID) ([]*model.Lead, error) {
	leads, err := s.repo.List(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// Transition moves a lead to the next status, enforcing the allowed
// transition table. Re-applying the current status is a no-op.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next model.LeadStatus) (*model.Lead, error) {
	if !next.IsValid() {
		return nil, errors.BadRequest(fmt.Sprintf("unknown lead status %q", next), nil)
	}

	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("lead", err)
	}

	if lead.Status == next {
		return lead, nil
	}

	if !lead.Status.CanTransitionTo(next) {
		return nil, errors.BadRequest(
			fmt.Sprintf("cannot transition lead from %s to %s", lead.Status, next), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("failed to transition lead: %w", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"lead_id": lead.ID,
		"from":    lead.Status,
		"to":      next,
	})
	event := &model.OutboxEvent{
		EventType: model.EventLeadTransitioned,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to queue lead event: %w", err)
	}

	lead.Status = next
	return lead, nil
}

// Stats backs the practitioner dashboard: total leads, leads created
// since the start of the current month, and a short most-recent-first
// slice.
func (s *Service) Stats(ctx context.Context, practitionerID uuid.UUID) (*model.LeadStats, error) {
	total, err := s.repo.Count(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	newThisMonth, err := s.repo.CountCreatedSince(ctx, practitionerID, StartOfMonth(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly leads: %w", err)
	}

	recent, err := s.repo.ListRecent(ctx, practitionerID, recentLeadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent leads: %w", err)
	}
	if recent == nil {
		recent = []*model.Lead{}
	}

	return &model.LeadStats{
		Total:        total,
		NewThisMonth: newThisMonth,
		Recent:       recent,
	}, nil
}

// StartOfMonth truncates t to midnight on the first of its month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
