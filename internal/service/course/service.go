package course

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

type CourseService interface {
	ListCourses(ctx context.Context) ([]*model.Course, error)
	LoadCourse(ctx context.Context, slug string, userID uuid.UUID) (*model.CourseView, error)
	Enroll(ctx context.Context, slug string, userID uuid.UUID) (*model.Enrollment, error)
	MarkComplete(ctx context.Context, slug string, userID, moduleID uuid.UUID) (*model.CourseView, error)
}

type Service struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	userRepo       repository.UserRepository
	outboxRepo     repository.OutboxRepository
}

func NewService(courseRepo repository.CourseRepository, enrollmentRepo repository.EnrollmentRepository, userRepo repository.UserRepository, outboxRepo repository.OutboxRepository) *Service {
	return &Service{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		outboxRepo:     outboxRepo,
	}
}

func (s *Service) ListCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// LoadCourse fetches the course with its ordered modules and the
// caller's enrollment. Callers without an enrollment get a forbidden
// error so the client can route them to the enrollment flow.
func (s *Service) LoadCourse(ctx context.Context, slug string, userID uuid.UUID) (*model.CourseView, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NotFound("course", err)
	}

	modules, err := s.courseRepo.ListModules(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	course.Modules = modules

	enrollment, err := s.enrollmentRepo.GetForUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, errors.Forbidden("not enrolled in this course", err)
	}

	if err := s.loadCompleted(ctx, enrollment); err != nil {
		return nil, err
	}

	return &model.CourseView{
		Course:     course,
		Enrollment: enrollment,
		ResumeAt:   ResumePointer(modules, enrollment.CompletedSet()),
	}, nil
}

func (s *Service) Enroll(ctx context.Context, slug string, userID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NotFound("course", err)
	}

	if existing, err := s.enrollmentRepo.GetForUserAndCourse(ctx, userID, course.ID); err == nil {
		return existing, nil
	}

	enrollment := &model.Enrollment{
		Base: model.Base{
			ID: uuid.New(),
		},
		UserID:             userID,
		CourseID:           course.ID,
		Progress:           0,
		CompletedModuleIDs: []uuid.UUID{},
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	userEmail := ""
	if user, err := s.userRepo.Get(ctx, userID); err == nil {
		userEmail = user.Email
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"user_id":       userID,
		"course_id":     course.ID,
		"course_title":  course.Title,
		"email":         userEmail,
	})
	event := &model.OutboxEvent{
		EventType: model.EventEnrollmentCreated,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to queue enrollment event: %w", err)
	}
	return enrollment, nil
}

// MarkComplete idempotently adds the module to the enrollment's
// completed set and recomputes progress. The returned view carries the
// next incomplete module as the resume pointer.
func (s *Service) MarkComplete(ctx context.Context, slug string, userID, moduleID uuid.UUID) (*model.CourseView, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NotFound("course", err)
	}

	modules, err := s.courseRepo.ListModules(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	course.Modules = modules

	if !moduleBelongs(modules, moduleID) {
		return nil, errors.BadRequest("module does not belong to this course", nil)
	}

	enrollment, err := s.enrollmentRepo.GetForUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, errors.Forbidden("not enrolled in this course", err)
	}

	if err := s.enrollmentRepo.AddCompletedModule(ctx, enrollment.ID, moduleID); err != nil {
		return nil, fmt.Errorf("failed to mark module complete: %w", err)
	}

	if err := s.loadCompleted(ctx, enrollment); err != nil {
		return nil, err
	}

	enrollment.Progress = Progress(len(enrollment.CompletedModuleIDs), len(modules))

	var completedAt *time.Time
	if len(modules) > 0 && enrollment.Progress == 100 {
		if enrollment.CompletedAt != nil {
			completedAt = enrollment.CompletedAt
		} else {
			now := time.Now()
			completedAt = &now
		}
	}
	enrollment.CompletedAt = completedAt

	if err := s.enrollmentRepo.UpdateProgress(ctx, enrollment.ID, enrollment.Progress, completedAt); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	return &model.CourseView{
		Course:     course,
		Enrollment: enrollment,
		ResumeAt:   ResumePointer(modules, enrollment.CompletedSet()),
	}, nil
}

func (s *Service) loadCompleted(ctx context.Context, enrollment *model.Enrollment) error {
	ids, err := s.enrollmentRepo.GetCompletedModuleIDs(ctx, enrollment.ID)
	if err != nil {
		return fmt.Errorf("failed to load completed modules: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	enrollment.CompletedModuleIDs = ids
	return nil
}

// Progress is floor(100*completed/total). A course with no modules is
// defined as 0 percent complete.
func Progress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return 100 * completed / total
}

// ResumePointer picks the first module not in the completed set. When
// every module is complete (or the course has none), it falls back to
// the first module's id, or uuid.Nil for an empty course.
func ResumePointer(modules []*model.Module, completed map[uuid.UUID]bool) uuid.UUID {
	for _, m := range modules {
		if !completed[m.ID] {
			return m.ID
		}
	}
	if len(modules) > 0 {
		return modules[0].ID
	}
	return uuid.Nil
}

func moduleBelongs(modules []*model.Module, moduleID uuid.UUID) bool {
	for _, m := range modules {
		if m.ID == moduleID {
			return true
		}
	}
	return false
}
