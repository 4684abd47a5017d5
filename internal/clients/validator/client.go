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
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// FieldMap groups messages by field for the 422 response body.
func (v ValidationErrors) FieldMap() map[string]any {
	out := make(map[string]any, len(v))
	for _, e := range v {
		field := strings.ToLower(e.Field)
		msgs, _ := out[field].([]string)
		out[field] = append(msgs, e.Message)
	}
	return out
}

type ClientValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewClientValidator(log *logger.Logger) *ClientValidator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ClientValidator{
		validate: validate,
		log:      log,
	}
}

func (v *ClientValidator) Validate(client *model.Client) error {
	if err := v.validate.Struct(client); err != nil {
		return v.translate(err)
	}
	return nil
}

func (v *ClientValidator) ValidateUpdate(update *model.ClientUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return v.translate(err)
	}
	return nil
}

func (v *ClientValidator) translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Field: "client", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be an E.164 phone number"
	case "mongodb":
		return "must be a valid object ID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
