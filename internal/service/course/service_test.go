package course

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
)

type fakeCourseRepo struct {
	course  *model.Course
	modules []*model.Module
}

func (f *fakeCourseRepo) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	if f.course == nil || f.course.Slug != slug {
		return nil, sql.ErrNoRows
	}
	c := *f.course
	return &c, nil
}

func (f *fakeCourseRepo) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	if f.course == nil || f.course.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.course, nil
}

func (f *fakeCourseRepo) ListPublished(ctx context.Context) ([]*model.Course, error) {
	if f.course == nil {
		return nil, nil
	}
	return []*model.Course{f.course}, nil
}

func (f *fakeCourseRepo) ListModules(ctx context.Context, courseID uuid.UUID) ([]*model.Module, error) {
	return f.modules, nil
}

type fakeEnrollmentRepo struct {
	enrollments map[uuid.UUID]*model.Enrollment
	completed   map[uuid.UUID][]uuid.UUID
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[uuid.UUID]*model.Enrollment),
		completed:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	f.enrollments[e.ID] = e
	return nil
}

func (f *fakeEnrollmentRepo) GetForUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) GetCompletedModuleIDs(ctx context.Context, enrollmentID uuid.UUID) ([]uuid.UUID, error) {
	return f.completed[enrollmentID], nil
}

func (f *fakeEnrollmentRepo) AddCompletedModule(ctx context.Context, enrollmentID, moduleID uuid.UUID) error {
	for _, id := range f.completed[enrollmentID] {
		if id == moduleID {
			return nil
		}
	}
	f.completed[enrollmentID] = append(f.completed[enrollmentID], moduleID)
	return nil
}

func (f *fakeEnrollmentRepo) UpdateProgress(ctx context.Context, enrollmentID uuid.UUID, progress int, completedAt *time.Time) error {
	f.enrollments[enrollmentID].Progress = progress
	f.enrollments[enrollmentID].CompletedAt = completedAt
	return nil
}

type fakeUserRepo struct {
	user *model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }

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

func seedCourse(moduleCount int) (*fakeCourseRepo, []*model.Module) {
	courseID := uuid.New()
	modules := make([]*model.Module, 0, moduleCount)
	for i := 0; i < moduleCount; i++ {
		modules = append(modules, &model.Module{
			ID:       uuid.New(),
			CourseID: courseID,
			Position: i + 1,
		})
	}
	repo := &fakeCourseRepo{
		course: &model.Course{
			Base:        model.Base{ID: courseID},
			Slug:        "foundations-of-herbalism",
			Title:       "Foundations of Herbalism",
			IsPublished: true,
		},
		modules: modules,
	}
	return repo, modules
}

func newTestService(moduleCount int) (*Service, []*model.Module, *fakeOutboxRepo, uuid.UUID) {
	courses, modules := seedCourse(moduleCount)
	userID := uuid.New()
	users := &fakeUserRepo{user: &model.User{
		Base:  model.Base{ID: userID},
		Email: "learner@example.com",
	}}
	outbox := &fakeOutboxRepo{}
	svc := NewService(courses, newFakeEnrollmentRepo(), users, outbox)
	return svc, modules, outbox, userID
}

func TestEnrollStartsAtZeroProgress(t *testing.T) {
	svc, _, outbox, userID := newTestService(4)

	enrollment, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	assert.Zero(t, enrollment.Progress)
	assert.Empty(t, enrollment.CompletedModuleIDs)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventEnrollmentCreated, outbox.events[0].EventType)
}

func TestEnrollTwiceReturnsExistingEnrollment(t *testing.T) {
	svc, _, outbox, userID := newTestService(4)

	first, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	second, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, outbox.events, 1, "no second enrollment event")
}

func TestMarkCompleteRecomputesProgressAndResume(t *testing.T) {
	svc, modules, _, userID := newTestService(4)

	_, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	view, err := svc.MarkComplete(context.Background(), "foundations-of-herbalism", userID, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 25, view.Enrollment.Progress)
	assert.Equal(t, modules[1].ID, view.ResumeAt)

	// Completing out of order resumes at the earliest gap.
	view, err = svc.MarkComplete(context.Background(), "foundations-of-herbalism", userID, modules[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, view.Enrollment.Progress)
	assert.Equal(t, modules[1].ID, view.ResumeAt)
	assert.Nil(t, view.Enrollment.CompletedAt)
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	svc, modules, _, userID := newTestService(4)

	_, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		view, err := svc.MarkComplete(context.Background(), "foundations-of-herbalism", userID, modules[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 25, view.Enrollment.Progress)
	}
}

func TestMarkCompleteFinishesCourse(t *testing.T) {
	svc, modules, _, userID := newTestService(2)

	_, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	_, err = svc.MarkComplete(context.Background(), "foundations-of-herbalism", userID, modules[0].ID)
	require.NoError(t, err)

	view, err := svc.MarkComplete(context.Background(), "foundations-of-herbalism", userID, modules[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, view.Enrollment.Progress)
	require.NotNil(t, view.Enrollment.CompletedAt)
	assert.Equal(t, modules[0].ID, view.ResumeAt, "finished course resumes at the first module")
}

func TestMarkCompleteRejectsForeignModule(t *testing.T) {
	svc, _, _, userID := newTestService(4)

	_, err := svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	_, err = svc.MarkComplete(context.Background(), "foundations-of-herbalism", userID, uuid.New())
	require.Error(t, err)
}

func TestMarkCompleteRequiresEnrollment(t *testing.T) {
	svc, modules, _, _ := newTestService(4)

	_, err := svc.MarkComplete(context.Background(), "foundations-of-herbalism", uuid.New(), modules[0].ID)
	require.Error(t, err)
}

func TestLoadCourseRequiresEnrollment(t *testing.T) {
	svc, _, _, userID := newTestService(4)

	_, err := svc.LoadCourse(context.Background(), "foundations-of-herbalism", userID)
	require.Error(t, err)

	_, err = svc.Enroll(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)

	view, err := svc.LoadCourse(context.Background(), "foundations-of-herbalism", userID)
	require.NoError(t, err)
	assert.Len(t, view.Course.Modules, 4)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 4))
	assert.Equal(t, 25, Progress(1, 4))
	assert.Equal(t, 33, Progress(1, 3), "progress floors")
	assert.Equal(t, 100, Progress(4, 4))
	assert.Equal(t, 0, Progress(0, 0))
}

func TestResumePointerEmptyCourse(t *testing.T) {
	assert.Equal(t, uuid.Nil, ResumePointer(nil, map[uuid.UUID]bool{}))
}
