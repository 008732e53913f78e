package schemas

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// Expense is one line of the expense table on the browser claim form.
type Expense struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// FrontendClaimForm is the payload posted by the public claim form.
type FrontendClaimForm struct {
	ClaimType string `json:"claimType"`

	FullName           string `json:"fullName"`
	Email              string `json:"email"`
	Address            string `json:"address"`
	City               string `json:"city"`
	State              string `json:"state"`
	ZipCode            string `json:"zipCode"`
	MobilePhone        string `json:"mobilePhone"`
	OtherPhone         string `json:"otherPhone"`
	AllClaimants       string `json:"allClaimants"`
	PolicyNumber       string `json:"policyNumber"`
	InsuranceAgency    string `json:"insuranceAgency"`
	InitialDepositDate string `json:"initialDepositDate"`

	IncidentDescription string `json:"incidentDescription"`
	LossDate            string `json:"lossDate"`

	Authorization bool   `json:"authorization"`
	Signature     string `json:"signature"`
	SignatureDate string `json:"signatureDate"`

	Expenses []Expense `json:"expenses"`
}

// ParseFrontendClaimForm validates a browser form submission and maps it
// onto a ClaimFormCreate: the address parts become incident_location and the
// expense amounts are summed into estimated_amount.
func ParseFrontendClaimForm(raw []byte) (ClaimFormCreate, error) {
	errs := &ValidationError{}

	var f FrontendClaimForm
	if err := json.Unmarshal(raw, &f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			errs.Add(typeErr.Field, "must be "+jsonKind(typeErr.Type))
		} else {
			errs.Add("body", "must be a JSON object")
		}
		return ClaimFormCreate{}, errs
	}

	required := func(field, v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			errs.Add(field, msgRequired)
		}
		return v
	}

	c := ClaimFormCreate{ClaimFormBase{
		CoverageType:     required("claimType", f.ClaimType),
		FullName:         required("fullName", f.FullName),
		Email:            required("email", f.Email),
		Phone:            optional(f.MobilePhone),
		PolicyNumber:     optional(f.PolicyNumber),
		IncidentLocation: f.location(),
		Description:      optional(f.IncidentDescription),
	}}

	if !f.Authorization {
		errs.Add("authorization", "must be accepted")
	}

	if strings.TrimSpace(f.LossDate) != "" {
		t, err := ParseDateTime(f.LossDate)
		if err != nil {
			errs.Add("lossDate", msgDateTime)
		} else {
			c.IncidentDate = &t
		}
	}

	if len(f.Expenses) > 0 {
		var total float64
		for _, e := range f.Expenses {
			total += e.Amount
		}
		c.EstimatedAmount = &total
	}

	if err := errs.Err(); err != nil {
		return ClaimFormCreate{}, err
	}
	return c, nil
}

// location renders "address, city, state zip", skipping empty parts.
func (f FrontendClaimForm) location() *string {
	stateZip := strings.TrimSpace(strings.TrimSpace(f.State) + " " + strings.TrimSpace(f.ZipCode))

	var parts []string
	for _, p := range []string{f.Address, f.City, stateZip} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	s := strings.Join(parts, ", ")
	return &s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64:
		return "a number"
	}
	return "a " + t.String()
}
