package binder

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying binding failures. Each ValidationError wraps
// one of them so callers can branch with errors.Is.
var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter value")
	ErrBodyMissing      = errors.New("request body missing")
	ErrBodyInvalid      = errors.New("request body does not match schema")
	ErrMalformedPayload = errors.New("malformed request payload")

	// ErrInvalidSignature is returned by SignatureOf for request struct
	// types the binder cannot serve. It surfaces at registration time,
	// never per request.
	ErrInvalidSignature = errors.New("invalid request signature")
)

// ValidationError is a client-facing binding failure. It names the offending
// parameter, the source it was read from, and what was expected.
type ValidationError struct {
	Field    string // declared parameter name
	Source   Source // where the value was looked up
	Expected string // expected type or shape, human readable
	Err      error  // one of the sentinel errors above
	Reason   string // extra detail, safe to show to clients
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s parameter %q: %v", e.Source, e.Field, e.Err)
	if e.Expected != "" {
		msg += ", expected " + e.Expected
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }
