package transform

import "fmt"

// FieldError reports the source column that made a row unusable.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field %s=%q: %s", e.Field, e.Value, e.Reason)
}

func missing(field string) *FieldError {
	return &FieldError{Field: field, Reason: "column missing"}
}
