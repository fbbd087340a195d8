package authority

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call to an external authority.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindNetwork        ErrorKind = "network"
	KindAuthentication ErrorKind = "authentication"
	KindUpstream       ErrorKind = "upstream_status"
	KindBadResponse    ErrorKind = "bad_response"
	KindCircuitOpen    ErrorKind = "circuit_open"
	KindInternal       ErrorKind = "internal"
)

// Error is a normalized authority failure. Callers fall back or log; none of
// these kinds is retried here.
type Error struct {
	Kind       ErrorKind
	Client     string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("authority %s [%s]: %s", e.Client, e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// countsAsFailure reports whether the error should count toward opening the breaker.
// Client-side rejections (bad token, malformed request) do not.
func (e *Error) countsAsFailure() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork, KindBadResponse:
		return true
	case KindUpstream:
		return e.StatusCode >= 500
	}
	return false
}

// KindOf returns the kind of an authority error, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
