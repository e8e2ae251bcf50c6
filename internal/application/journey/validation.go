// Package journey provides application use cases for guest journey management.
package journey

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants for input limits.
const (
	MaxGuestIDLength = 64
	MaxNameLength    = 128
	MaxPhoneLength   = 20
	MaxEmailLength   = 256
	MaxFieldLength   = 256
	MaxPayloadKeys   = 32
)

// guestIDPattern validates guest ID format: alphanumeric with hyphens and underscores.
var guestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// phonePattern accepts digits with an optional leading plus and common separators.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{4,}$`)

// ValidateGuestID validates a guest ID format and length.
func ValidateGuestID(id string) error {
	if id == "" {
		return fmt.Errorf("guest ID is required")
	}
	if len(id) > MaxGuestIDLength {
		return fmt.Errorf("guest ID too long (max %d characters)", MaxGuestIDLength)
	}
	if !guestIDPattern.MatchString(id) {
		return fmt.Errorf("invalid guest ID format: must be alphanumeric with hyphens and underscores")
	}
	return nil
}

// ValidatePhone validates a phone number format and length.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if len(phone) > MaxPhoneLength {
		return fmt.Errorf("phone too long (max %d characters)", MaxPhoneLength)
	}
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("invalid phone format")
	}
	return nil
}

// ValidateSafeString validates a string for safe CLI usage.
// It checks length limits and rejects control characters that could cause issues.
func ValidateSafeString(s string, fieldName string, maxLen int) error {
	if len(s) > maxLen {
		return fmt.Errorf("%s too long (max %d characters)", fieldName, maxLen)
	}
	if strings.ContainsAny(s, "\x00\n\r\t") {
		return fmt.Errorf("%s contains invalid control characters", fieldName)
	}
	return nil
}

// ValidationError collects multiple validation errors.
type ValidationError struct {
	errors []string
}

// NewValidationError creates a new ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{errors: make([]string, 0)}
}

// Add adds an error to the collection.
func (v *ValidationError) Add(err error) {
	if err != nil {
		v.errors = append(v.errors, err.Error())
	}
}

// AddMessage adds an error message to the collection.
func (v *ValidationError) AddMessage(msg string) {
	v.errors = append(v.errors, msg)
}

// HasErrors returns true if there are validation errors.
func (v *ValidationError) HasErrors() bool {
	return len(v.errors) > 0
}

// Error returns the combined error message.
func (v *ValidationError) Error() string {
	if len(v.errors) == 0 {
		return ""
	}
	if len(v.errors) == 1 {
		return v.errors[0]
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(v.errors, "; "))
}

// ToError returns nil if no errors, otherwise returns the ValidationError.
func (v *ValidationError) ToError() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}
