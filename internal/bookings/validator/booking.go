package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mais/pkg/logger"
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

// BookingValidator runs struct-tag validation plus the mode-aware checks
// that tags cannot express: a booking carries exactly the slot identity its
// tenant's booking mode calls for, and the slot lies in the bookable window.
type BookingValidator struct {
	validate    *validator.Validate
	horizonDays int
	logger      *logger.Logger
}

func NewBookingValidator(horizonDays int, log *logger.Logger) *BookingValidator {
	v := validator.New()

	log.Info("Booking validator initialized successfully", "horizon_days", horizonDays)

	return &BookingValidator{
		validate:    v,
		horizonDays: horizonDays,
		logger:      log,
	}
}

func (v *BookingValidator) ValidateCreate(booking *model.Booking, tenant *model.Tenant) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	switch tenant.BookingMode {
	case model.ModeDate:
		return v.validateDateMode(booking, tenant)
	case model.ModeTimeslot:
		return v.validateTimeslotMode(booking)
	default:
		return ValidationErrors{
			ValidationError{Field: "BookingMode", Message: fmt.Sprintf("tenant has unknown booking mode %q", tenant.BookingMode)},
		}
	}
}

func (v *BookingValidator) validateDateMode(booking *model.Booking, tenant *model.Tenant) error {
	var errs ValidationErrors

	if booking.Date == "" {
		errs = append(errs, ValidationError{Field: "Date", Message: "date is required for date-mode tenants"})
	}
	if booking.ServiceID != "" || booking.StartTime != nil || booking.EndTime != nil {
		errs = append(errs, ValidationError{Field: "ServiceID", Message: "service_id and times are not allowed for date-mode tenants"})
	}
	if len(errs) > 0 {
		return errs
	}

	loc := v.tenantLocation(tenant)
	day, err := time.ParseInLocation("2006-01-02", booking.Date, loc)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "Date", Message: "date must be in YYYY-MM-DD format"},
		}
	}

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if day.Before(today) {
		return ValidationErrors{
			ValidationError{Field: "Date", Message: "date cannot be in the past"},
		}
	}

	if day.After(today.AddDate(0, 0, v.horizonDays)) {
		return ValidationErrors{
			ValidationError{Field: "Date", Message: fmt.Sprintf("date is beyond the booking horizon of %d days", v.horizonDays)},
		}
	}

	return nil
}

func (v *BookingValidator) validateTimeslotMode(booking *model.Booking) error {
	var errs ValidationErrors

	if booking.ServiceID == "" {
		errs = append(errs, ValidationError{Field: "ServiceID", Message: "service_id is required for timeslot-mode tenants"})
	}
	if booking.StartTime == nil {
		errs = append(errs, ValidationError{Field: "StartTime", Message: "start_time is required for timeslot-mode tenants"})
	}
	if booking.EndTime == nil {
		errs = append(errs, ValidationError{Field: "EndTime", Message: "end_time is required for timeslot-mode tenants"})
	}
	if booking.Date != "" {
		errs = append(errs, ValidationError{Field: "Date", Message: "date is not allowed for timeslot-mode tenants"})
	}
	if len(errs) > 0 {
		return errs
	}

	// End-exclusive intervals: a slot ending at 10:00 does not clash with
	// one starting at 10:00.
	if !booking.EndTime.After(*booking.StartTime) {
		return ValidationErrors{
			ValidationError{Field: "EndTime", Message: "end_time must be after start_time"},
		}
	}

	now := time.Now()
	if booking.StartTime.Before(now) {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: "start_time cannot be in the past"},
		}
	}

	if booking.StartTime.After(now.AddDate(0, 0, v.horizonDays)) {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: fmt.Sprintf("start_time is beyond the booking horizon of %d days", v.horizonDays)},
		}
	}

	return nil
}

func (v *BookingValidator) tenantLocation(tenant *model.Tenant) *time.Location {
	if tenant.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		v.logger.Warn("Tenant has invalid timezone, falling back to UTC",
			"tenant_id", tenant.ID,
			"timezone", tenant.Timezone,
		)
		return time.UTC
	}
	return loc
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "datetime":
			message = fmt.Sprintf("%s must be in YYYY-MM-DD format", err.Field())
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
