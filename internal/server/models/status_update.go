package models

import "time"

// StatusUpdate records one applied status transition of a claim.
type StatusUpdate struct {
	ID          int64
	ClaimFormID int64
	OldStatus   ClaimStatus
	NewStatus   ClaimStatus
	Reason      *string
	ChangedBy   *string
	ChangedAt   time.Time
}
