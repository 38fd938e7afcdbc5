package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
)

type practitionerRepository struct {
	db *sqlx.DB
}

func NewPractitionerRepository(db *sqlx.DB) repository.PractitionerRepository {
	return &practitionerRepository{db: db}
}

func (r *practitionerRepository) Create(ctx context.Context, p *model.Practitioner) error {
	query := `
		INSERT INTO practitioners (
			id, user_id, slug, first_name, last_name, practice_name, credentials,
			bio, email, phone, city, state, zip_code, is_verified,
			membership_tier, membership_status, rating, review_count, profile_views,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21
		)
	`
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Slug, p.FirstName, p.LastName, p.PracticeName, p.Credentials,
		p.Bio, p.Email, p.Phone, p.City, p.State, p.ZipCode, p.IsVerified,
		p.MembershipTier, p.MembershipStatus, p.Rating, p.ReviewCount, p.ProfileViews,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create practitioner: %w", err)
	}
	return nil
}

func (r *practitionerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	query := `SELECT * FROM practitioners WHERE id = $1 AND deleted_at IS NULL`
	var p model.Practitioner
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, fmt.Errorf("failed to get practitioner: %w", err)
	}
	return &p, nil
}

func (r *practitionerRepository) GetBySlug(ctx context.Context, slug string) (*model.Practitioner, error) {
	query := `SELECT * FROM practitioners WHERE slug = $1 AND deleted_at IS NULL`
	var p model.Practitioner
	if err := r.db.GetContext(ctx, &p, query, slug); err != nil {
		return nil, fmt.Errorf("failed to get practitioner by slug: %w", err)
	}
	return &p, nil
}

func (r *practitionerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error) {
	query := `SELECT * FROM practitioners WHERE user_id = $1 AND deleted_at IS NULL`
	var p model.Practitioner
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get practitioner by user: %w", err)
	}
	return &p, nil
}

func (r *practitionerRepository) Update(ctx context.Context, p *model.Practitioner) error {
	query := `
		UPDATE practitioners
		SET first_name = $1, last_name = $2, practice_name = $3, credentials = $4,
			bio = $5, phone = $6, city = $7, state = $8, zip_code = $9, updated_at = $10
		WHERE id = $11
	`
	p.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.PracticeName, p.Credentials,
		p.Bio, p.Phone, p.City, p.State, p.ZipCode, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update practitioner: %w", err)
	}
	return nil
}

func (r *practitionerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MembershipStatus) error {
	query := `UPDATE practitioners SET membership_status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *practitionerRepository) UpdateTier(ctx context.Context, id uuid.UUID, tier model.MembershipTier) error {
	query := `UPDATE practitioners SET membership_tier = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, tier, time.Now(), id)
	return err
}

func (r *practitionerRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	query := `UPDATE practitioners SET rating = $1, review_count = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, rating, reviewCount, time.Now(), id)
	return err
}

func (r *practitionerRepository) IncrementProfileViews(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE practitioners SET profile_views = profile_views + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// directoryOrder is the fixed ranking: tier first, then rating, then
// review volume. Ties beyond that are left to store order.
const directoryOrder = `
	ORDER BY CASE membership_tier
		WHEN 'ENTERPRISE' THEN 4
		WHEN 'ELITE' THEN 3
		WHEN 'PREMIUM' THEN 2
		WHEN 'PROFESSIONAL' THEN 1
		ELSE 0
	END DESC, rating DESC, review_count DESC
`

func (r *practitionerRepository) Search(ctx context.Context, filters *model.DirectoryFilters, limit, offset int) ([]*model.Practitioner, error) {
	where, args := buildDirectoryWhere(filters)
	query := fmt.Sprintf(`SELECT * FROM practitioners %s %s LIMIT %d OFFSET %d`,
		where, directoryOrder, limit, offset)

	var practitioners []*model.Practitioner
	if err := r.db.SelectContext(ctx, &practitioners, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search practitioners: %w", err)
	}
	return practitioners, nil
}

func (r *practitionerRepository) Count(ctx context.Context, filters *model.DirectoryFilters) (int, error) {
	where, args := buildDirectoryWhere(filters)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM practitioners %s`, where)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count practitioners: %w", err)
	}
	return count, nil
}

// buildDirectoryWhere assembles the directory WHERE clause. All filter
// groups AND together; the search group ORs over name fields and the
// location group ORs over city/state/zip, each as its own bucket.
func buildDirectoryWhere(filters *model.DirectoryFilters) (string, []interface{}) {
	conditions := []string{
		"deleted_at IS NULL",
		"membership_status = 'active'",
		"is_verified = TRUE",
	}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Location != "" {
		pattern := arg("%" + filters.Location + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(city ILIKE %s OR state ILIKE %s OR zip_code ILIKE %s)", pattern, pattern, pattern))
	}

	if filters.Search != "" {
		pattern := arg("%" + filters.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE %s OR last_name ILIKE %s OR practice_name ILIKE %s)", pattern, pattern, pattern))
	}

	if len(filters.Treatments) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT practitioner_id FROM practitioner_tags WHERE kind = 'treatment' AND value = ANY(%s))",
			arg(pq.Array(filters.Treatments))))
	}

	if len(filters.Conditions) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT practitioner_id FROM practitioner_tags WHERE kind = 'condition' AND value = ANY(%s))",
			arg(pq.Array(filters.Conditions))))
	}

	if len(filters.Tiers) > 0 {
		tiers := make([]string, 0, len(filters.Tiers))
		for _, t := range filters.Tiers {
			tiers = append(tiers, string(t))
		}
		conditions = append(conditions, fmt.Sprintf("membership_tier = ANY(%s)", arg(pq.Array(tiers))))
	}

	if filters.Insurance {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM practitioner_tags WHERE practitioner_id = practitioners.id AND kind = 'insurance')")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *practitionerRepository) GetTags(ctx context.Context, practitionerID uuid.UUID, kind string) (model.Tags, error) {
	query := `
		SELECT id, practitioner_id, value, created_at
		FROM practitioner_tags
		WHERE practitioner_id = $1 AND kind = $2
		ORDER BY value ASC
	`
	var tags model.Tags
	if err := r.db.SelectContext(ctx, &tags, query, practitionerID, kind); err != nil {
		return nil, fmt.Errorf("failed to list %s tags: %w", kind, err)
	}
	return tags, nil
}

func (r *practitionerRepository) ReplaceTags(ctx context.Context, practitionerID uuid.UUID, kind string, values []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM practitioner_tags WHERE practitioner_id = $1 AND kind = $2`,
		practitionerID, kind); err != nil {
		return fmt.Errorf("failed to clear %s tags: %w", kind, err)
	}

	for _, value := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO practitioner_tags (id, practitioner_id, kind, value, created_at) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), practitionerID, kind, value, time.Now()); err != nil {
			return fmt.Errorf("failed to insert %s tag: %w", kind, err)
		}
	}

	return tx.Commit()
}
