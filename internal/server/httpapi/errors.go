package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/schemas"
)

// APIError is an error with a fixed HTTP rendering.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    schemas.CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func NewFieldError(field, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    schemas.CodeValidation,
		Message: "validation failed",
		Fields:  map[string]string{field: message},
	}
}

// toAPIError maps service errors onto HTTP statuses and envelope codes.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if ve, ok := schemas.AsValidationError(err); ok {
		return &APIError{Status: http.StatusBadRequest, Code: schemas.CodeValidation, Message: "validation failed", Fields: ve.FieldMap()}
	}
	// BindingError embeds *echo.HTTPError but unwraps to the conversion
	// error, so it has to be matched first.
	var be *echo.BindingError
	if errors.As(err, &be) {
		return NewFieldError(be.Field, fmt.Sprint(be.Message))
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fromHTTPError(he)
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return &APIError{Status: http.StatusBadRequest, Code: schemas.CodeValidation, Message: "validation failed", Details: err.Error()}
	case errors.Is(err, common.ErrorEmptyFile):
		return NewFieldError("file", "must not be empty")
	case errors.Is(err, common.ErrorNotFound):
		return &APIError{Status: http.StatusNotFound, Code: schemas.CodeNotFound, Message: "not found"}
	case errors.Is(err, common.ErrorInvalidTransition):
		return &APIError{Status: http.StatusConflict, Code: schemas.CodeInvalidTransition, Message: "status change not allowed", Details: err.Error()}
	case errors.Is(err, common.ErrorAlreadyExists):
		return &APIError{Status: http.StatusConflict, Code: schemas.CodeConflict, Message: "already exists"}
	case errors.Is(err, common.ErrTokenExpired):
		return &APIError{Status: http.StatusUnauthorized, Code: schemas.CodeUnauthorized, Message: "token expired"}
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return &APIError{Status: http.StatusUnauthorized, Code: schemas.CodeUnauthorized, Message: "unauthorized"}
	case errors.Is(err, common.ErrorUnsupportedMedia):
		return &APIError{Status: http.StatusUnsupportedMediaType, Code: schemas.CodeUnsupportedMedia, Message: "only images and PDF documents are accepted", Details: err.Error()}
	case errors.Is(err, common.ErrorTooLarge):
		return &APIError{Status: http.StatusRequestEntityTooLarge, Code: schemas.CodeTooLarge, Message: "file too large", Details: err.Error()}
	case errors.Is(err, common.ErrorNotification):
		return &APIError{Status: http.StatusBadGateway, Code: schemas.CodeNotification, Message: "notification could not be sent", Details: err.Error()}
	case errors.Is(err, common.ErrorStorage):
		return &APIError{Status: http.StatusInternalServerError, Code: schemas.CodeStorage, Message: "storage error"}
	}
	return &APIError{Status: http.StatusInternalServerError, Code: schemas.CodeInternal, Message: "internal server error"}
}

func fromHTTPError(he *echo.HTTPError) *APIError {
	msg := fmt.Sprintf("%v", he.Message)
	code := schemas.CodeInternal
	switch {
	case he.Code == http.StatusNotFound:
		code = schemas.CodeNotFound
	case he.Code == http.StatusUnauthorized:
		code = schemas.CodeUnauthorized
	case he.Code == http.StatusRequestEntityTooLarge:
		code = schemas.CodeTooLarge
	case he.Code == http.StatusUnsupportedMediaType:
		code = schemas.CodeUnsupportedMedia
	case he.Code < http.StatusInternalServerError:
		code = schemas.CodeValidation
	}
	return &APIError{Status: he.Code, Code: code, Message: msg}
}

// ErrorHandler renders any error returned by a handler as a failure
// envelope. Usage: e.HTTPErrorHandler = ErrorHandler(logger)
func ErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err)
		ctx := c.Request().Context()
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error(ctx, "request failed", "error", err, "path", c.Path(), "status", apiErr.Status)
		} else {
			logger.Debug(ctx, "request rejected", "error", err, "path", c.Path(), "status", apiErr.Status)
		}

		body := schemas.Fail[schemas.Empty](apiErr.Message, schemas.ErrorBody{
			Code:    apiErr.Code,
			Details: apiErr.Details,
			Fields:  apiErr.Fields,
		})

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(apiErr.Status)
		} else {
			werr = c.JSON(apiErr.Status, body)
		}
		if werr != nil {
			logger.Error(ctx, "error writing error response", "error", werr)
		}
	}
}
