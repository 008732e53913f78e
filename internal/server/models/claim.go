// Package models defines server-side data models persisted in the database.
package models

import "time"

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	StatusSubmitted   ClaimStatus = "submitted"
	StatusUnderReview ClaimStatus = "under_review"
	StatusApproved    ClaimStatus = "approved"
	StatusRejected    ClaimStatus = "rejected"
)

// InitialStatus is assigned to every newly created claim.
const InitialStatus = StatusSubmitted

var transitions = map[ClaimStatus][]ClaimStatus{
	StatusSubmitted:   {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusSubmitted},
}

// AllStatuses lists the statuses in workflow order.
func AllStatuses() []ClaimStatus {
	return []ClaimStatus{StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected}
}

// Valid reports whether s is a known status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ClaimStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether a claim in status s may move to next.
// Same-state moves are not transitions.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Claim is a submitted insurance claim (table claim_forms). Optional columns
// are nil when absent.
type Claim struct {
	ID      int64
	ClaimID string

	CoverageType string
	FullName     string
	Email        string

	Phone            *string
	PolicyNumber     *string
	IncidentDate     *time.Time
	IncidentLocation *string
	Description      *string
	EstimatedAmount  *float64

	Status    ClaimStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClaimFilter selects a page of claims, newest first.
type ClaimFilter struct {
	Status ClaimStatus // empty means any
	Limit  int
	Offset int
}

// ClaimStats is the dashboard breakdown of claims by status.
type ClaimStats struct {
	Total    int64
	ByStatus map[ClaimStatus]int64
}
