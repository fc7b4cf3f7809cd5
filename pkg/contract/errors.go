package contract

import (
	"errors"
)

// ErrEmptySource is returned by New when no schema source is given.
var ErrEmptySource = errors.New("contract: schema source is required")

// ViolationError reports an exchange that does not match the contract.
// Message holds the matcher's message followed by the printed request and
// response.
type ViolationError struct {
	// Code is copied from the matcher error's ErrorCode, if it has one
	Code    string
	Message string
	Cause   error
}

func (e *ViolationError) Error() string {
	return e.Message
}

// Unwrap returns the matcher error.
func (e *ViolationError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the code of the matcher error.
func (e *ViolationError) ErrorCode() string {
	return e.Code
}

type coder interface {
	ErrorCode() string
}

// newViolationError builds the enriched error for a matcher failure.
func newViolationError(cause error, request, response string) *ViolationError {
	var code string
	var c coder
	if errors.As(cause, &c) {
		code = c.ErrorCode()
	}
	return &ViolationError{
		Code:    code,
		Message: cause.Error() + "\n\n" + request + "\n\n\n" + response + "\n",
		Cause:   cause,
	}
}
