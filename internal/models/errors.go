package models

import "fmt"

// FieldError reports the first offending field of a lifecycle request. It is
// raised before any network side effect occurs.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func requiredField(name string) *FieldError {
	return &FieldError{Field: name, Reason: "is required"}
}

// DispatchError carries the push provider's rejection message verbatim.
type DispatchError struct {
	Provider string
	Message  string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
