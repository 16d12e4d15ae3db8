package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mais/pkg/model"

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

type TenantValidator struct {
	validate *validator.Validate
}

func NewTenantValidator() *TenantValidator {
	return &TenantValidator{
		validate: validator.New(),
	}
}

func (v *TenantValidator) Validate(tenant *model.Tenant) error {
	if err := v.validate.Struct(tenant); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// The struct tag accepts an empty timezone; a non-empty one must load,
	// since booking validation parses dates in it.
	if tenant.Timezone != "" {
		if _, err := time.LoadLocation(tenant.Timezone); err != nil {
			return ValidationErrors{
				ValidationError{Field: "Timezone", Message: fmt.Sprintf("%q is not a valid IANA timezone", tenant.Timezone)},
			}
		}
	}

	return nil
}

func (v *TenantValidator) ValidateOffering(offering *model.ServiceOffering) error {
	if err := v.validate.Struct(offering); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *TenantValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be an E.164 phone number", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA timezone", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
