package schemas

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	errs := &ValidationError{}
	if strings.TrimSpace(r.Email) == "" {
		errs.Add("email", msgRequired)
	}
	if r.Password == "" {
		errs.Add("password", msgRequired)
	}
	return errs.Err()
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StatusUpdateRequest asks for a claim status transition.
type StatusUpdateRequest struct {
	Status models.ClaimStatus `json:"status"`
	Reason *string            `json:"reason"`
}

func (r StatusUpdateRequest) Validate() error {
	errs := &ValidationError{}
	switch {
	case r.Status == "":
		errs.Add("status", msgRequired)
	case !r.Status.Valid():
		errs.Add("status", "unknown status")
	}
	return errs.Err()
}

type StatusUpdateResponse struct {
	OldStatus models.ClaimStatus `json:"old_status"`
	NewStatus models.ClaimStatus `json:"new_status"`
	Reason    *string            `json:"reason"`
	ChangedBy *string            `json:"changed_by"`
	ChangedAt time.Time          `json:"changed_at"`
}

func NewStatusUpdateResponses(items []*models.StatusUpdate) []StatusUpdateResponse {
	out := make([]StatusUpdateResponse, 0, len(items))
	for _, u := range items {
		out = append(out, StatusUpdateResponse{
			OldStatus: u.OldStatus,
			NewStatus: u.NewStatus,
			Reason:    u.Reason,
			ChangedBy: u.ChangedBy,
			ChangedAt: u.ChangedAt,
		})
	}
	return out
}

type ClaimListResponse struct {
	Claims []ClaimFormResponse `json:"claims"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type StatsResponse struct {
	Total    int64                        `json:"total"`
	ByStatus map[models.ClaimStatus]int64 `json:"by_status"`
}

// DocumentRequest asks the claimant for additional documents.
type DocumentRequest struct {
	Documents []string `json:"documents"`
	Message   *string  `json:"message"`
}

func (r DocumentRequest) Validate() error {
	errs := &ValidationError{}
	n := 0
	for _, d := range r.Documents {
		if strings.TrimSpace(d) != "" {
			n++
		}
	}
	if n == 0 {
		errs.Add("documents", "at least one document must be requested")
	}
	return errs.Err()
}
