package shot

import "fmt"

// ValidationError is returned when a request parameter fails validation.
// Reason distinguishes the failing field; all validation errors map to
// the same HTTP status.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation failure reasons.
const (
	ReasonMissingParameter = "missing_parameter"
	ReasonInvalidURL       = "invalid_url"
	ReasonInvalidWidth     = "invalid_width"
	ReasonInvalidHeight    = "invalid_height"
)

func missingParameter(name string) error {
	return &ValidationError{
		Reason:  ReasonMissingParameter,
		Message: fmt.Sprintf("missing required parameter: %s", name),
	}
}
