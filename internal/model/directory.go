package model

// DirectoryPageSize is the fixed directory page length.
const DirectoryPageSize = 12

// DirectoryFilters is the flat set of directory query parameters.
// Comma-separated list parameters arrive already split.
type DirectoryFilters struct {
	Page       int
	Location   string
	Treatments []string
	Conditions []string
	Tiers      []MembershipTier
	Insurance  bool
	Search     string
}

// DirectoryPage is one ordered page of directory results.
type DirectoryPage struct {
	Practitioners []*Practitioner `json:"practitioners"`
	TotalCount    int             `json:"total_count"`
	TotalPages    int             `json:"total_pages"`
	Page          int             `json:"page"`
}
