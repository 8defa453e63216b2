package eircode

import (
	"errors"
	"fmt"
)

// ErrorDomain tags every error produced by this package's response handling.
const ErrorDomain = "EircodeAPI"

// CodeInvalidJSON is the code of errors for bodies that are not valid JSON.
const CodeInvalidJSON = 100

// ErrInvalidJSON is returned, wrapped with the decoder error, when a response
// body can't be parsed.
var ErrInvalidJSON = &APIError{Domain: ErrorDomain, Code: CodeInvalidJSON, Message: "Invalid JSON"}

// APIError is an error reported by the Autoaddress API in the "errors" array
// of a response, or the invalid JSON error.
type APIError struct {
	Domain  string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Domain, e.Code, e.Message)
}

// ValidationError is returned when call arguments fail validation. No request
// is sent in that case.
type ValidationError struct {
	Operation string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("eircode: invalid %s request: %v", e.Operation, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AsAPIError reports whether err is, or wraps, an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
