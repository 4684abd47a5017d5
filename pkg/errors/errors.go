package errors

import (
	"fmt"
	"net/http"
	"time"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeOverlap      = "BOOKING_OVERLAP"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeTimeout      = "TIMEOUT"
)

// AppError is the single failure type crossing package boundaries. The
// Code discriminates the taxonomy; handlers translate it to transport
// responses and never inspect wrapped causes.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

// InvalidInterval reports a booking whose start is not strictly before
// its end. Surfaced as a field-level validation failure on end_time.
func InvalidInterval(start, end time.Time) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    "Validation failed",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"end_time": []string{fmt.Sprintf(
				"end time %s must be after start time %s",
				end.Format(time.RFC3339), start.Format(time.RFC3339),
			)},
		},
	}
}

// Overlap reports a rejected interval that intersects an existing
// booking on the same user's calendar. The details carry the overlap
// message array the API contract requires.
func Overlap(userID string, start, end time.Time) *AppError {
	return &AppError{
		Code:       CodeOverlap,
		Message:    "The booking overlaps with an existing booking for this user.",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"user_id":    userID,
			"start_time": start.Format(time.RFC3339),
			"end_time":   end.Format(time.RFC3339),
		},
	}
}

// IsOverlap reports whether err is the overlap kind.
func IsOverlap(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == CodeOverlap
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
