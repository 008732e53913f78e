package schemas

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
)

// ClaimFormBase holds the caller-supplied claim fields. Optional fields are
// nil when absent and serialise as null.
type ClaimFormBase struct {
	CoverageType     string     `json:"coverage_type"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone"`
	PolicyNumber     *string    `json:"policy_number"`
	IncidentDate     *time.Time `json:"incident_date"`
	IncidentLocation *string    `json:"incident_location"`
	Description      *string    `json:"description"`
	EstimatedAmount  *float64   `json:"estimated_amount"`
}

// ClaimFormCreate is a validated claim submission. Build it with
// ParseClaimFormCreate or ParseFrontendClaimForm.
type ClaimFormCreate struct {
	ClaimFormBase
}

// ParseClaimFormCreate validates a raw JSON claim submission. Missing or
// blank coverage_type, full_name and email, as well as optional fields of the
// wrong primitive type, are all reported in one *ValidationError. Unknown
// fields are ignored.
func ParseClaimFormCreate(raw []byte) (ClaimFormCreate, error) {
	errs := &ValidationError{}
	obj, ok := decodeObject(raw, errs)
	if !ok {
		return ClaimFormCreate{}, errs
	}

	c := ClaimFormCreate{ClaimFormBase{
		CoverageType:     obj.requiredString("coverage_type"),
		FullName:         obj.requiredString("full_name"),
		Email:            obj.requiredString("email"),
		Phone:            obj.optionalString("phone"),
		PolicyNumber:     obj.optionalString("policy_number"),
		IncidentDate:     obj.optionalDateTime("incident_date"),
		IncidentLocation: obj.optionalString("incident_location"),
		Description:      obj.optionalString("description"),
		EstimatedAmount:  obj.optionalNumber("estimated_amount"),
	}}

	if err := errs.Err(); err != nil {
		return ClaimFormCreate{}, err
	}
	return c, nil
}

// Validate re-checks the required fields of a submission that was not built
// by one of the parse functions.
func (c ClaimFormCreate) Validate() error {
	errs := &ValidationError{}
	for _, f := range []struct{ name, value string }{
		{"coverage_type", c.CoverageType},
		{"full_name", c.FullName},
		{"email", c.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs.Add(f.name, msgRequired)
		}
	}
	return errs.Err()
}

// ToModel builds an unsaved claim from the submission.
func (c ClaimFormCreate) ToModel() *models.Claim {
	return &models.Claim{
		CoverageType:     c.CoverageType,
		FullName:         c.FullName,
		Email:            c.Email,
		Phone:            c.Phone,
		PolicyNumber:     c.PolicyNumber,
		IncidentDate:     c.IncidentDate,
		IncidentLocation: c.IncidentLocation,
		Description:      c.Description,
		EstimatedAmount:  c.EstimatedAmount,
	}
}

// ClaimFormResponse is a stored claim as returned by the API.
type ClaimFormResponse struct {
	ID      int64  `json:"id"`
	ClaimID string `json:"claim_id"`
	ClaimFormBase
	Status    models.ClaimStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewClaimFormResponse(c *models.Claim) ClaimFormResponse {
	return ClaimFormResponse{
		ID:      c.ID,
		ClaimID: c.ClaimID,
		ClaimFormBase: ClaimFormBase{
			CoverageType:     c.CoverageType,
			FullName:         c.FullName,
			Email:            c.Email,
			Phone:            c.Phone,
			PolicyNumber:     c.PolicyNumber,
			IncidentDate:     c.IncidentDate,
			IncidentLocation: c.IncidentLocation,
			Description:      c.Description,
			EstimatedAmount:  c.EstimatedAmount,
		},
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ClaimFormWithDocuments is a claim together with its attached documents.
type ClaimFormWithDocuments struct {
	ClaimFormResponse
	Documents []DocumentResponse `json:"documents"`
}

func NewClaimFormWithDocuments(c *models.Claim, docs []*models.Document) ClaimFormWithDocuments {
	return ClaimFormWithDocuments{
		ClaimFormResponse: NewClaimFormResponse(c),
		Documents:         NewDocumentResponses(docs),
	}
}

// NotificationStatus reports the outcome of the e-mail sent after an
// operation. A failed send never fails the operation itself.
type NotificationStatus struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// ClaimCreatedResponse is returned by claim submission.
type ClaimCreatedResponse struct {
	ClaimFormResponse
	Notification NotificationStatus `json:"notification"`
}

// ClaimStatusResponse is returned by a status change.
type ClaimStatusResponse struct {
	ClaimFormResponse
	PreviousStatus models.ClaimStatus `json:"previous_status"`
	Notification   NotificationStatus `json:"notification"`
}
