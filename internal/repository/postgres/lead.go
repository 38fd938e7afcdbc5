package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
)

type leadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) repository.LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	query := `
		INSERT INTO leads (
			id, practitioner_id, name, email, phone, interest, message, source,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.PractitionerID, lead.Name, lead.Email, lead.Phone,
		lead.Interest, lead.Message, lead.Source, lead.Status,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *leadRepository) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	query := `SELECT * FROM leads WHERE id = $1 AND deleted_at IS NULL`
	var lead model.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (r *leadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeadStatus) error {
	query := `UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	return nil
}

func (r *leadRepository) List(ctx context.Context, practitionerID uuid.UUID) ([]*model.Lead, error) {
	query := `
		SELECT * FROM leads
		WHERE practitioner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var leads []*model.Lead
	if err := r.db.SelectContext(ctx, &leads, query, practitionerID); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (r *leadRepository) ListRecent(ctx context.Context, practitionerID uuid.UUID, limit int) ([]*model.Lead, error) {
	query := `
		SELECT * FROM leads
		WHERE practitioner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`
	var leads []*model.Lead
	if err := r.db.SelectContext(ctx, &leads, query, practitionerID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent leads: %w", err)
	}
	return leads, nil
}

func (r *leadRepository) Count(ctx context.Context, practitionerID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM leads WHERE practitioner_id = $1 AND deleted_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, practitionerID); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

func (r *leadRepository) CountCreatedSince(ctx context.Context, practitionerID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM leads
		WHERE practitioner_id = $1 AND deleted_at IS NULL AND created_at >= $2
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, practitionerID, since); err != nil {
		return 0, fmt.Errorf("failed to count recent leads: %w", err)
	}
	return count, nil
}
