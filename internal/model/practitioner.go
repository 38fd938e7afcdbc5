package model

import (
	"time"

	"github.com/google/uuid"
)

// MembershipTier is the ordered directory ranking tier.
type MembershipTier string

const (
	TierFree         MembershipTier = "FREE"
	TierProfessional MembershipTier = "PROFESSIONAL"
	TierPremium      MembershipTier = "PREMIUM"
	TierElite        MembershipTier = "ELITE"
	TierEnterprise   MembershipTier = "ENTERPRISE"
)

// tierRanks orders tiers for directory sorting. Higher ranks first.
var tierRanks = map[MembershipTier]int{
	TierFree:         0,
	TierProfessional: 1,
	TierPremium:      2,
	TierElite:        3,
	TierEnterprise:   4,
}

// Rank returns the sort weight of the tier. Unknown tiers rank lowest.
func (t MembershipTier) Rank() int {
	return tierRanks[t]
}

// IsValid reports whether t is a known tier.
func (t MembershipTier) IsValid() bool {
	_, ok := tierRanks[t]
	return ok
}

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusInactive  MembershipStatus = "inactive"
	MembershipStatusSuspended MembershipStatus = "suspended"
)

// IsValid reports whether s is a known membership status.
func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipStatusActive, MembershipStatusInactive, MembershipStatusSuspended:
		return true
	}
	return false
}

type Practitioner struct {
	Base
	UserID           uuid.UUID        `db:"user_id" json:"user_id"`
	Slug             string           `db:"slug" json:"slug"`
	FirstName        string           `db:"first_name" json:"first_name"`
	LastName         string           `db:"last_name" json:"last_name"`
	PracticeName     string           `db:"practice_name" json:"practice_name"`
	Credentials      string           `db:"credentials" json:"credentials"`
	Bio              string           `db:"bio" json:"bio"`
	Email            string           `db:"email" json:"email"`
	Phone            string           `db:"phone" json:"phone"`
	City             string           `db:"city" json:"city"`
	State            string           `db:"state" json:"state"`
	ZipCode          string           `db:"zip_code" json:"zip_code"`
	IsVerified       bool             `db:"is_verified" json:"is_verified"`
	MembershipTier   MembershipTier   `db:"membership_tier" json:"membership_tier"`
	MembershipStatus MembershipStatus `db:"membership_status" json:"membership_status"`
	Rating           float64          `db:"rating" json:"rating"`
	ReviewCount      int              `db:"review_count" json:"review_count"`
	ProfileViews     int              `db:"profile_views" json:"profile_views"`

	// Tag collections, loaded separately from the join tables.
	Treatments Tags `db:"-" json:"treatments,omitempty"`
	Conditions Tags `db:"-" json:"conditions,omitempty"`
	Insurances Tags `db:"-" json:"insurances,omitempty"`
}

// Tag kinds stored in practitioner_tags.
const (
	TagKindTreatment = "treatment"
	TagKindCondition = "condition"
	TagKindInsurance = "insurance"
)

// Tag is one enumerated practitioner attribute row (treatment, condition,
// or accepted insurance).
type Tag struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner_id"`
	Value          string    `db:"value" json:"value"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type Tags []*Tag

// Values flattens the tag rows into their string values.
func (ts Tags) Values() []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Value)
	}
	return out
}

type RegisterPractitionerRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	PracticeName string `json:"practice_name"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Phone        string `json:"phone"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	ZipCode      string `json:"zip_code"`
	Credentials  string `json:"credentials"`
}

type UpdatePractitionerRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	PracticeName *string `json:"practice_name"`
	Credentials  *string `json:"credentials"`
	Bio          *string `json:"bio"`
	Phone        *string `json:"phone"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`
}

type ChangeTierRequest struct {
	Tier MembershipTier `json:"tier" binding:"required"`
}

type ChangeStatusRequest struct {
	Status MembershipStatus `json:"status" binding:"required"`
}

type SetTagsRequest struct {
	Values []string `json:"values" binding:"required"`
}
