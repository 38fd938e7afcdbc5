package model

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	Base
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	PriceCents  int       `db:"price_cents" json:"price_cents"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	Modules     []*Module `db:"-" json:"modules,omitempty"`
}

// Module is one ordered unit of course content. Position defines the
// sequence within its course.
type Module struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CourseID        uuid.UUID `db:"course_id" json:"course_id"`
	Position        int       `db:"position" json:"position"`
	Title           string    `db:"title" json:"title"`
	Content         string    `db:"content" json:"content"`
	VideoURL        string    `db:"video_url" json:"video_url,omitempty"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Enrollment links a learner to a course and tracks which modules they
// have completed. Progress is a 0-100 integer recomputed on every
// completion write.
type Enrollment struct {
	Base
	UserID             uuid.UUID   `db:"user_id" json:"user_id"`
	CourseID           uuid.UUID   `db:"course_id" json:"course_id"`
	Progress           int         `db:"progress" json:"progress"`
	CompletedAt        *time.Time  `db:"completed_at" json:"completed_at,omitempty"`
	CompletedModuleIDs []uuid.UUID `db:"-" json:"completed_module_ids"`
}

// CompletedSet returns the completed module ids as a set.
func (e *Enrollment) CompletedSet() map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(e.CompletedModuleIDs))
	for _, id := range e.CompletedModuleIDs {
		set[id] = true
	}
	return set
}

type MarkProgressRequest struct {
	ModuleID string `json:"module_id" binding:"required,uuid"`
}

// CourseView is the learner-facing course payload: course with ordered
// modules, the caller's enrollment, and the resume pointer.
type CourseView struct {
	Course     *Course     `json:"course"`
	Enrollment *Enrollment `json:"enrollment"`
	ResumeAt   uuid.UUID   `json:"resume_at"`
}
