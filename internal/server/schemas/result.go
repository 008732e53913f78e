package schemas

// Error codes carried in ErrorBody.Code.
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeUnauthorized      = "unauthorized"
	CodeConflict          = "conflict"
	CodeUnsupportedMedia  = "unsupported_media_type"
	CodeTooLarge          = "file_too_large"
	CodeStorage           = "storage_error"
	CodeNotification      = "notification_error"
	CodeInternal          = "internal_error"
)

// ErrorBody is the structured failure carried by a Result.
type ErrorBody struct {
	Code    string            `json:"code"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Result is the envelope of every API response. Exactly one of Data and
// Error is set, matching Success.
type Result[T any] struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    *T         `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func OK[T any](message string, data T) Result[T] {
	return Result[T]{Success: true, Message: message, Data: &data}
}

func Fail[T any](message string, body ErrorBody) Result[T] {
	return Result[T]{Success: false, Message: message, Error: &body}
}

// Empty is the payload type of failures that have no success variant, such
// as errors raised before routing.
type Empty struct{}
