package city

import (
	"errors"
	"fmt"

	"cirrus/internal/openweather"
)

// ErrorKind categorizes engine failures for the caller.
type ErrorKind string

const (
	// KindNotFound indicates the operation referenced an unknown city.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindRemote indicates a reachable remote API answered with a
	// non-success status or an empty/invalid result set.
	KindRemote ErrorKind = "REMOTE_ERROR"

	// KindNetwork indicates a transport-level failure reaching a remote API.
	KindNetwork ErrorKind = "NETWORK_ERROR"

	// KindUnknown wraps any other failure with its original message.
	KindUnknown ErrorKind = "UNKNOWN"
)

// Error is the typed failure returned across the engine boundary. Raw
// remote or store errors never escape without being classified first.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an engine Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var engineErr *Error
	return errors.As(err, &engineErr) && engineErr.Kind == kind
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// classifyRemote maps a remote client failure onto the error taxonomy:
// status and decode failures mean the API was reachable but unusable,
// everything else is a transport problem.
func classifyRemote(err error, message string) *Error {
	var statusErr *openweather.StatusError
	var decodeErr *openweather.DecodeError
	if errors.As(err, &statusErr) || errors.As(err, &decodeErr) {
		return &Error{Kind: KindRemote, Message: message, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

func wrapUnknown(err error, message string) *Error {
	return &Error{Kind: KindUnknown, Message: message, Err: err}
}
