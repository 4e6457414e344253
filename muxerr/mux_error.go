package muxerr

import (
	"errors"
	"fmt"
)

// Well-known error codes shared by the service layer and the connectors.
const (
	// CodeValidation marks rejected input: a missing tenant id, a malformed
	// entry, an unknown level. Surfaced to the caller immediately, never retried.
	CodeValidation = "validation"

	// CodeNotImplemented signals capability absence rather than operational
	// failure. The multi connector treats it as "try the next sub-connector";
	// every other caller treats it as a terminal failure.
	CodeNotImplemented = "not_implemented"

	// CodeNotFound marks a lookup miss (unregistered connector type, unknown entry).
	CodeNotFound = "not_found"

	// CodeBadCursor marks an unparseable pagination cursor.
	CodeBadCursor = "bad_cursor"

	// CodeConnector wraps operational failures inside a connector backend.
	CodeConnector = "connector_error"
)

// MuxError provides a typed error that callers match by code instead of message text.
type MuxError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e MuxError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e MuxError) Unwrap() error {
	return e.Err
}

// New constructs a typed MuxError.
func New(code, message string, err error) MuxError {
	return MuxError{Code: code, Message: message, Err: err}
}

// NotImplemented builds the distinguished capability-absence error for op.
func NotImplemented(op string) MuxError {
	return MuxError{Code: CodeNotImplemented, Message: op + " is not implemented"}
}

// As extracts a MuxError from err, unwrapping value and pointer forms.
func As(err error) *MuxError {
	var me MuxError
	if errors.As(err, &me) {
		return &me
	}
	var mePtr *MuxError
	if errors.As(err, &mePtr) {
		return mePtr
	}
	return nil
}

// HasCode reports whether err carries a MuxError with the given code anywhere
// in its chain.
func HasCode(err error, code string) bool {
	me := As(err)
	return me != nil && me.Code == code
}
