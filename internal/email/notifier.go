package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/logger"
	"github.com/veracare/marketplace-api/pkg/metrics"
)

// Notifier turns outbox events into transactional email. Unknown event
// types are skipped, not failed, so new events can ship ahead of their
// notifications.
type Notifier struct {
	email            Service
	practitionerRepo repository.PractitionerRepository
	logger           *logger.Logger
	metrics          *metrics.Metrics
}

func NewNotifier(email Service, practitionerRepo repository.PractitionerRepository, logger *logger.Logger, metrics *metrics.Metrics) *Notifier {
	return &Notifier{
		email:            email,
		practitionerRepo: practitionerRepo,
		logger:           logger,
		metrics:          metrics,
	}
}

type leadPayload struct {
	LeadID         uuid.UUID `json:"lead_id"`
	PractitionerID uuid.UUID `json:"practitioner_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Interest       string    `json:"interest"`
}

type practitionerPayload struct {
	PractitionerID uuid.UUID `json:"practitioner_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
}

type enrollmentPayload struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	UserID       uuid.UUID `json:"user_id"`
	CourseID     uuid.UUID `json:"course_id"`
	CourseTitle  string    `json:"course_title"`
	Email        string    `json:"email"`
}

type newsletterPayload struct {
	Email string `json:"email"`
}

type orderPayload struct {
	OrderID    uuid.UUID `json:"order_id"`
	Email      string    `json:"email"`
	TotalCents int       `json:"total_cents"`
}

func (n *Notifier) Notify(ctx context.Context, event *model.OutboxEvent) error {
	switch event.EventType {
	case model.EventLeadCreated:
		return n.notifyLead(ctx, event, false)
	case model.EventConsultationRequested:
		return n.notifyLead(ctx, event, true)
	case model.EventPractitionerRegistered:
		return n.notifyPractitionerRegistered(ctx, event)
	case model.EventEnrollmentCreated:
		return n.notifyEnrollment(ctx, event)
	case model.EventNewsletterSubscribed:
		return n.notifyNewsletter(ctx, event)
	case model.EventOrderCreated:
		return n.notifyOrder(ctx, event)
	default:
		n.logger.Debug("no notification for event type", "event_type", event.EventType)
		return nil
	}
}

// notifyLead sends the practitioner notification and, for plain leads,
// the patient confirmation.
func (n *Notifier) notifyLead(ctx context.Context, event *model.OutboxEvent, consultation bool) error {
	var payload leadPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode lead payload: %w", err)
	}

	practitioner, err := n.practitionerRepo.Get(ctx, payload.PractitionerID)
	if err != nil {
		return fmt.Errorf("failed to load practitioner: %w", err)
	}
	practitionerName := practitioner.FirstName + " " + practitioner.LastName

	var subject, body string
	if consultation {
		subject, body = ConsultationRequestEmail(practitionerName, payload.Name, payload.Email)
	} else {
		subject, body = NewLeadEmail(practitionerName, payload.Name, payload.Email, payload.Interest)
	}
	if err := n.send(ctx, practitioner.Email, subject, body, event.EventType); err != nil {
		return err
	}

	if !consultation {
		subject, body = LeadConfirmationEmail(payload.Name, practitionerName)
		return n.send(ctx, payload.Email, subject, body, event.EventType)
	}
	return nil
}

func (n *Notifier) notifyPractitionerRegistered(ctx context.Context, event *model.OutboxEvent) error {
	var payload practitionerPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode practitioner payload: %w", err)
	}
	subject, body := WelcomeEmail(payload.FirstName)
	return n.send(ctx, payload.Email, subject, body, event.EventType)
}

func (n *Notifier) notifyEnrollment(ctx context.Context, event *model.OutboxEvent) error {
	var payload enrollmentPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode enrollment payload: %w", err)
	}
	if payload.Email == "" {
		n.logger.Debug("enrollment event has no email, skipping",
			"enrollment_id", payload.EnrollmentID.String())
		return nil
	}
	subject, body := EnrollmentEmail(payload.CourseTitle)
	return n.send(ctx, payload.Email, subject, body, event.EventType)
}

func (n *Notifier) notifyNewsletter(ctx context.Context, event *model.OutboxEvent) error {
	var payload newsletterPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode newsletter payload: %w", err)
	}
	subject, body := NewsletterWelcomeEmail()
	return n.send(ctx, payload.Email, subject, body, event.EventType)
}

func (n *Notifier) notifyOrder(ctx context.Context, event *model.OutboxEvent) error {
	var payload orderPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode order payload: %w", err)
	}
	if payload.Email == "" {
		return nil
	}
	subject, body := OrderConfirmationEmail(payload.OrderID.String(), payload.TotalCents)
	return n.send(ctx, payload.Email, subject, body, event.EventType)
}

func (n *Notifier) send(ctx context.Context, to, subject, body, eventType string) error {
	if err := n.email.Send(ctx, Message{To: to, Subject: subject, HTMLBody: body}); err != nil {
		n.metrics.EmailsSent.WithLabelValues(eventType, "failed").Inc()
		return err
	}
	n.metrics.EmailsSent.WithLabelValues(eventType, "sent").Inc()
	n.logger.Info("notification email sent", "event_type", eventType)
	return nil
}
