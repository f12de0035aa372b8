package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateRecord rejects records that must never reach the sink.
func ValidateRecord(r OutputRecord) error {
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Message: "record topic is required"}
	}
	if r.Key == "" {
		return &ValidationError{Field: "key", Message: "record key (call context) is required"}
	}
	return nil
}
