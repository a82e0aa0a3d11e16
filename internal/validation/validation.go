package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRequired validates that a field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength validates the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ValidateUUID validates that a string is a valid UUID
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return errors.New(fieldName + " must be a valid UUID")
	}
	return nil
}

// ValidateTimeRange validates that an interval is well formed
func ValidateTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errors.New("start and end times are required")
	}
	if !end.After(start) {
		return errors.New("end time must be after start time")
	}
	return nil
}

// ValidateCapacity validates a shift capacity
func ValidateCapacity(capacity int) error {
	if capacity <= 0 {
		return errors.New("capacity must be a positive integer")
	}
	return nil
}

// ShiftValidation contains shift-specific validations
type ShiftValidation struct{}

// ValidateRole validates the role a shift needs filled
func (v ShiftValidation) ValidateRole(role string) error {
	if err := ValidateRequired(role, "role_needed"); err != nil {
		return err
	}
	return ValidateMaxLength(role, 100, "role_needed")
}

// WorkerValidation contains worker-specific validations
type WorkerValidation struct{}

// ValidateName validates a worker name
func (v WorkerValidation) ValidateName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 100, "name")
}

// ValidateEmail validates the basic shape of an email address
func (v WorkerValidation) ValidateEmail(email string) error {
	if err := ValidateRequired(email, "email"); err != nil {
		return err
	}
	if !strings.Contains(email, "@") {
		return errors.New("email must have a valid format")
	}
	return nil
}
