package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ekpono/booking-platform/pkg/logger"
	"github.com/ekpono/booking-platform/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// FieldMap groups messages by field for the 422 response body.
func (v ValidationErrors) FieldMap() map[string]any {
	fields := map[string]any{}
	for _, err := range v {
		key := strings.ToLower(err.Field)
		existing, _ := fields[key].([]string)
		fields[key] = append(existing, err.Message)
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	validate := validator.New()

	// Report violations under the wire field names, so a tag-caught
	// interval error and the explicit end_time check key identically.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &BookingValidator{
		validate: validate,
		logger:   log,
	}
}

// Validate checks a fully-populated booking. The interval rule is
// asserted here in addition to the gtfield tag so a zero StartTime
// cannot slip past the tag's omitempty semantics.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if !booking.EndTime.After(booking.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "end_time",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

// ValidateUpdate checks only the fields present on a partial update.
// The interval rule on the merged result is the service's concern.
func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartTime != nil && update.EndTime != nil && !update.EndTime.After(*update.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "end_time",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155552671)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
