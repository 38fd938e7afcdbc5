package model

import (
	"github.com/google/uuid"
)

// LeadStatus is the closed set of lead lifecycle states.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusScheduled LeadStatus = "scheduled"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusClosed    LeadStatus = "closed"
)

// leadTransitions is the allowed-transition table. Forward-only, with
// closed reachable from any non-terminal state.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusNew:       {LeadStatusContacted, LeadStatusClosed},
	LeadStatusContacted: {LeadStatusScheduled, LeadStatusClosed},
	LeadStatusScheduled: {LeadStatusConverted, LeadStatusClosed},
	LeadStatusConverted: {LeadStatusClosed},
	LeadStatusClosed:    {},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known status.
func (s LeadStatus) IsValid() bool {
	_, ok := leadTransitions[s]
	return ok
}

// Lead sources. Consultation requests are leads too but trigger a
// different notification.
const (
	LeadSourceContactForm  = "contact_form"
	LeadSourceConsultation = "consultation"
)

// Lead is a patient inquiry addressed to one practitioner. History is
// immutable apart from status transitions.
type Lead struct {
	Base
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	Name           string     `db:"name" json:"name"`
	Email          string     `db:"email" json:"email"`
	Phone          string     `db:"phone" json:"phone"`
	Interest       string     `db:"interest" json:"interest"`
	Message        string     `db:"message" json:"message"`
	Source         string     `db:"source" json:"source"`
	Status         LeadStatus `db:"status" json:"status"`
}

type CreateLeadRequest struct {
	PractitionerID string `json:"practitioner_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	Interest       string `json:"interest"`
	Message        string `json:"message"`
	Source         string `json:"source"`
}

type TransitionLeadRequest struct {
	Status LeadStatus `json:"status" binding:"required"`
}

// LeadStats backs the practitioner dashboard summary.
type LeadStats struct {
	Total        int     `json:"total"`
	NewThisMonth int     `json:"new_this_month"`
	Recent       []*Lead `json:"recent"`
}
