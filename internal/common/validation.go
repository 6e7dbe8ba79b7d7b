package common

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []FieldError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
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
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *FieldError

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

// Required rejects nil and blank strings.
func Required(fieldName string, value interface{}) *FieldError {
	if value == nil {
		return &FieldError{Field: fieldName, Value: value, Message: "is required"}
	}
	if s, ok := stringValue(value); ok && strings.TrimSpace(s) == "" {
		return &FieldError{Field: fieldName, Value: value, Message: "is required"}
	}
	if p, ok := value.(*string); ok && p == nil {
		return &FieldError{Field: fieldName, Value: value, Message: "is required"}
	}
	return nil
}

func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *FieldError {
		str, ok := stringValue(value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &FieldError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

var taxIDRegex = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)

// TaxID checks the NN.NNN.NNN/NNNN-NN layout when a value is present.
func TaxID(fieldName string, value interface{}) *FieldError {
	str, ok := stringValue(value)
	if !ok || str == "" {
		return nil
	}
	if !taxIDRegex.MatchString(str) {
		return &FieldError{
			Field:   fieldName,
			Value:   value,
			Message: "must match NN.NNN.NNN/NNNN-NN",
		}
	}
	return nil
}

// Positive rejects zero or negative integers when a value is present.
func Positive(fieldName string, value interface{}) *FieldError {
	switch v := value.(type) {
	case *int:
		if v != nil && *v <= 0 {
			return &FieldError{Field: fieldName, Value: *v, Message: "must be positive"}
		}
	case int:
		if v <= 0 {
			return &FieldError{Field: fieldName, Value: v, Message: "must be positive"}
		}
	}
	return nil
}

// ValidateAndReturnError validates and returns InvalidArgumentError if validation fails
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return InvalidArgumentError(validator.ErrorMessage())
	}
	return nil
}
