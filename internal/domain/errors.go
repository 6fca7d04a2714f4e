package domain

import "fmt"

type ValidationCode string

const (
	CodeLimitExceeded        ValidationCode = "LIMIT_EXCEEDED"
	CodeSameEndpoints        ValidationCode = "SAME_ENDPOINTS"
	CodeUnknownAirport       ValidationCode = "UNKNOWN_AIRPORT"
	CodeMissingSlot          ValidationCode = "MISSING_SLOT"
	CodeDateOutOfWindow      ValidationCode = "DATE_OUT_OF_WINDOW"
	CodeReturnMissing        ValidationCode = "RETURN_MISSING"
	CodeReturnBeforeOutbound ValidationCode = "RETURN_BEFORE_OUTBOUND"
)

// ValidationError reports a business-rule violation in extracted or accumulated slots.
// Two ValidationErrors match under errors.Is when their codes are equal.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("validation: %s", e.Code)
	}
	return fmt.Sprintf("validation: %s (%s)", e.Code, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// ErrLimitExceeded is returned when a passenger composition exceeds MaxPassengers.
var ErrLimitExceeded = &ValidationError{Code: CodeLimitExceeded, Message: "more than 9 passengers"}

func NewValidationError(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}
