package common

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns a combined error wrapping ErrValidation
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule defines a validation function
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Common validation rules

// Required validates that a value is not empty
func Required(fieldName string, value interface{}) *ValidationError {
	switch v := value.(type) {
	case nil:
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	}
	return nil
}

// MaxLength validates maximum string length in runes
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		if str, ok := value.(string); ok && utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at most %d characters long", max),
			}
		}
		return nil
	}
}

// CurrencyCode validates an ISO 4217 code known to x/text
func CurrencyCode(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return nil
	}
	if len(str) != 3 || strings.ToUpper(str) != str {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a 3-letter uppercase currency code"}
	}
	if _, err := currency.ParseISO(str); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is not a known ISO 4217 currency"}
	}
	return nil
}

// LocaleTag accepts the supported locale keys and otherwise a well-formed
// BCP 47 tag. Keys like "ua-UA" are not registered subtags, hence the lookup first.
func LocaleTag(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok || str == "" {
		return nil
	}
	if constants.IsSupportedLocale(str) {
		return nil
	}
	if _, err := language.Parse(constants.NormalizeLocale(str)); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a BCP 47 language tag"}
	}
	return nil
}

// IntentValue validates one of the known intent labels
func IntentValue(fieldName string, value interface{}) *ValidationError {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case constants.Intent:
		s = string(v)
	default:
		return nil
	}
	if !constants.IsValidIntent(s) {
		return &ValidationError{Field: fieldName, Value: value, Message: "is not a known intent"}
	}
	return nil
}

// NonNegativeCents validates an amount in minor units
func NonNegativeCents(fieldName string, value interface{}) *ValidationError {
	if v, ok := value.(int64); ok && v < 0 {
		return &ValidationError{Field: fieldName, Value: value, Message: "must not be negative"}
	}
	return nil
}

// NonEmptyList validates a list of strings has at least one non-blank entry
func NonEmptyList(fieldName string, value interface{}) *ValidationError {
	list, ok := value.([]string)
	if !ok {
		return nil
	}
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return &ValidationError{Field: fieldName, Value: value, Message: "must contain at least one entry"}
}

// ValidateAndReturnError is a helper to validate and return a gRPC error
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return InvalidArgumentError(validator.ErrorMessage())
	}
	return nil
}
