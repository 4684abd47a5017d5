package http

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/ekpono/booking-platform/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationResponse is the wire shape for 422 responses: a message
// plus per-field (or "overlap") message arrays.
type ValidationResponse struct {
	Message string         `json:"message"`
	Errors  map[string]any `json:"errors"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError translates the error taxonomy into transport responses.
// Overlap rejections become a 422 carrying an "overlap" message array;
// validation failures become a 422 keyed by field; anything that is
// not an AppError is reported as an opaque server error.
func WriteError(w http.ResponseWriter, err error) error {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
		})
	}

	switch appErr.Code {
	case apperrors.CodeOverlap:
		return WriteJSON(w, appErr.HTTPStatus, ValidationResponse{
			Message: "Validation failed",
			Errors: map[string]any{
				"overlap": []string{appErr.Message},
			},
		})
	case apperrors.CodeValidation:
		errors := map[string]any{}
		for field, messages := range appErr.Details {
			errors[field] = messages
		}
		return WriteJSON(w, appErr.HTTPStatus, ValidationResponse{
			Message: appErr.Message,
			Errors:  errors,
		})
	default:
		return WriteJSON(w, appErr.HTTPStatus, ErrorResponse{
			Error:   appErr.Message,
			Details: appErr.Details,
		})
	}
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WritePaginated(w http.ResponseWriter, data any, totalCount int64, limit int, offset int) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}
