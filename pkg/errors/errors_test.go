package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestOverlapCarriesIntervalAndUser(t *testing.T) {
	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)

	err := Overlap("user-1", start, end)

	if err.Code != CodeOverlap {
		t.Errorf("expected code %s, got %s", CodeOverlap, err.Code)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", err.HTTPStatus)
	}
	if err.Details["user_id"] != "user-1" {
		t.Errorf("expected user_id detail 'user-1', got %v", err.Details["user_id"])
	}
	if err.Details["start_time"] != start.Format(time.RFC3339) {
		t.Errorf("expected start_time detail %s, got %v", start.Format(time.RFC3339), err.Details["start_time"])
	}
	if !IsOverlap(err) {
		t.Error("IsOverlap should be true for an overlap error")
	}
	if IsOverlap(NotFound("Booking")) {
		t.Error("IsOverlap should be false for a not-found error")
	}
}

func TestInvalidIntervalIsFieldLevelValidation(t *testing.T) {
	start := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	err := InvalidInterval(start, end)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", err.HTTPStatus)
	}
	if _, ok := err.Details["end_time"]; !ok {
		t.Error("expected details keyed by end_time field")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Internal("store unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.HTTPStatus)
	}
}

func TestAsAppError(t *testing.T) {
	plain := fmt.Errorf("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}

	original := NotFoundWithID("Booking", "abc")
	if AsAppError(original) != original {
		t.Error("expected AsAppError to return the original AppError unchanged")
	}
}
