package model

import (
	"github.com/google/uuid"
)

// Review is a patient rating tied to a practitioner. Only published
// reviews count toward the practitioner's average rating.
type Review struct {
	Base
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner_id"`
	AuthorName     string    `db:"author_name" json:"author_name"`
	AuthorEmail    string    `db:"author_email" json:"-"`
	Rating         int       `db:"rating" json:"rating"`
	Body           string    `db:"body" json:"body"`
	IsPublished    bool      `db:"is_published" json:"is_published"`
}

type CreateReviewRequest struct {
	PractitionerID string `json:"practitioner_id" binding:"required,uuid"`
	AuthorName     string `json:"author_name" binding:"required"`
	AuthorEmail    string `json:"author_email" binding:"required,email"`
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Body           string `json:"body"`
}
