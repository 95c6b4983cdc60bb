package api

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned before any request is issued when the client has no
// auth token. Callers treat it as "no data", not as a failure to retry.
var ErrNoToken = errors.New("api: auth token missing")

type ErrorKind string

const (
	// KindAuth covers 401/403 responses: the UI should prompt re-login.
	KindAuth ErrorKind = "auth"
	// KindTimeout is the 10-second request deadline expiring, kept distinct
	// from other transport failures.
	KindTimeout ErrorKind = "timeout"
	// KindNetwork is any other transport-level failure.
	KindNetwork ErrorKind = "network"
	// KindRemote is a non-auth error status from the backend.
	KindRemote ErrorKind = "remote"
	// KindDecode is a malformed response body.
	KindDecode ErrorKind = "decode"
)

type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

func kindOf(err error) (ErrorKind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// IsAuth reports whether the error means the session needs a fresh login.
func IsAuth(err error) bool {
	if errors.Is(err, ErrNoToken) {
		return true
	}
	kind, ok := kindOf(err)
	return ok && kind == KindAuth
}

// IsTimeout reports whether the request ran into the fixed deadline.
func IsTimeout(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindTimeout
}
