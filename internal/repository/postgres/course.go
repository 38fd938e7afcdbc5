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

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) repository.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	query := `SELECT * FROM courses WHERE slug = $1 AND deleted_at IS NULL`
	var course model.Course
	if err := r.db.GetContext(ctx, &course, query, slug); err != nil {
		return nil, fmt.Errorf("failed to get course by slug: %w", err)
	}
	return &course, nil
}

func (r *courseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	query := `SELECT * FROM courses WHERE id = $1 AND deleted_at IS NULL`
	var course model.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (r *courseRepository) ListPublished(ctx context.Context) ([]*model.Course, error) {
	query := `SELECT * FROM courses WHERE is_published = TRUE AND deleted_at IS NULL ORDER BY title ASC`
	var courses []*model.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (r *courseRepository) ListModules(ctx context.Context, courseID uuid.UUID) ([]*model.Module, error) {
	query := `SELECT * FROM modules WHERE course_id = $1 ORDER BY position ASC`
	var modules []*model.Module
	if err := r.db.SelectContext(ctx, &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

type enrollmentRepository struct {
	db *sqlx.DB
}

func NewEnrollmentRepository(db *sqlx.DB) repository.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, user_id, course_id, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.CourseID, e.Progress, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) GetForUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	query := `SELECT * FROM enrollments WHERE user_id = $1 AND course_id = $2 AND deleted_at IS NULL`
	var e model.Enrollment
	if err := r.db.GetContext(ctx, &e, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &e, nil
}

func (r *enrollmentRepository) GetCompletedModuleIDs(ctx context.Context, enrollmentID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT module_id FROM enrollment_modules WHERE enrollment_id = $1`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("failed to get completed modules: %w", err)
	}
	return ids, nil
}

// AddCompletedModule is idempotent: re-completing a module is a no-op.
func (r *enrollmentRepository) AddCompletedModule(ctx context.Context, enrollmentID, moduleID uuid.UUID) error {
	query := `
		INSERT INTO enrollment_modules (enrollment_id, module_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (enrollment_id, module_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, enrollmentID, moduleID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark module complete: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) UpdateProgress(ctx context.Context, enrollmentID uuid.UUID, progress int, completedAt *time.Time) error {
	query := `UPDATE enrollments SET progress = $1, completed_at = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, progress, completedAt, time.Now(), enrollmentID)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}
