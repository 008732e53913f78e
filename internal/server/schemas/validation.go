package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/common"
)

// FieldError names one rejected request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of a request. It matches
// common.ErrorValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return common.ErrorValidation }

// Add records a problem with field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns e when at least one field was rejected, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldMap flattens the field errors; the first message per field wins.
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Message
		}
	}
	return m
}

// AsValidationError unwraps err to a *ValidationError if it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

const (
	msgRequired = "field required"
	msgEmpty    = "must not be empty"
	msgString   = "must be a string"
	msgNumber   = "must be a number"
	msgDateTime = "must be a valid datetime"
)

// dateTimeLayouts are tried in order for incident dates; inputs without a
// zone are taken as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime accepts RFC 3339 timestamps and the common ISO 8601 forms
// browsers send for date and datetime-local inputs.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}

// object is a decoded JSON object whose values are validated lazily, field
// by field, so every problem can be reported at once.
type object struct {
	fields map[string]json.RawMessage
	errs   *ValidationError
}

func decodeObject(raw []byte, errs *ValidationError) (*object, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		errs.Add("body", "must be a JSON object")
		return nil, false
	}
	return &object{fields: fields, errs: errs}, true
}

func (o *object) present(key string) (json.RawMessage, bool) {
	v, ok := o.fields[key]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}

func (o *object) requiredString(key string) string {
	v, ok := o.present(key)
	if !ok {
		o.errs.Add(key, msgRequired)
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		o.errs.Add(key, msgString)
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.errs.Add(key, msgEmpty)
	}
	return s
}

func (o *object) optionalString(key string) *string {
	v, ok := o.present(key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		o.errs.Add(key, msgString)
		return nil
	}
	return &s
}

func (o *object) optionalDateTime(key string) *time.Time {
	v, ok := o.present(key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		o.errs.Add(key, msgDateTime)
		return nil
	}
	t, err := ParseDateTime(s)
	if err != nil {
		o.errs.Add(key, msgDateTime)
		return nil
	}
	return &t
}

func (o *object) optionalNumber(key string) *float64 {
	v, ok := o.present(key)
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		o.errs.Add(key, msgNumber)
		return nil
	}
	return &f
}
