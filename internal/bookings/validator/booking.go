package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stayhub/pkg/logger"
	"stayhub/pkg/model"

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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateCreate checks a booking request and returns the parsed stay
// dates. A stay must cover at least one night.
func (v *BookingValidator) ValidateCreate(req *model.BookingRequest) (time.Time, time.Time, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return time.Time{}, time.Time{}, v.translateValidationErrors(validationErrs)
		}
		return time.Time{}, time.Time{}, err
	}

	return v.parseDates(req.CheckIn, req.CheckOut)
}

// ValidateDateChange checks an update request and returns the parsed dates.
func (v *BookingValidator) ValidateDateChange(req *model.DateChangeRequest) (time.Time, time.Time, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return time.Time{}, time.Time{}, v.translateValidationErrors(validationErrs)
		}
		return time.Time{}, time.Time{}, err
	}

	return v.parseDates(req.CheckIn, req.CheckOut)
}

func (v *BookingValidator) parseDates(checkInStr, checkOutStr string) (time.Time, time.Time, error) {
	checkIn, err := time.ParseInLocation(model.DateLayout, checkInStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{
			ValidationError{Field: "CheckIn", Message: "check_in must be a valid date (YYYY-MM-DD)"},
		}
	}

	checkOut, err := time.ParseInLocation(model.DateLayout, checkOutStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{
			ValidationError{Field: "CheckOut", Message: "check_out must be a valid date (YYYY-MM-DD)"},
		}
	}

	if model.Nights(checkIn, checkOut) < 1 {
		return time.Time{}, time.Time{}, ValidationErrors{
			ValidationError{Field: "CheckOut", Message: "check_out must be at least one night after check_in"},
		}
	}

	return checkIn, checkOut, nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in the form %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
