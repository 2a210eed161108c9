package hubapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed hub API call. The set is closed: every
// failure maps to exactly one kind.
type ErrorKind int

const (
	// KindOther covers every status without a dedicated kind, transport
	// failures (status 0) and undecodable responses.
	KindOther ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// Sentinels for errors.Is. An *APIError matches the sentinel of its kind.
var (
	ErrUnauthorized = errors.New("hub api: unauthorized")
	ErrForbidden    = errors.New("hub api: forbidden")
	ErrNotFound     = errors.New("hub api: not found")
)

// APIError is returned by the fetcher for any non-2xx response or transport failure.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("hub api %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("hub api %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// kindForStatus maps an HTTP status onto the error taxonomy.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindOther
	}
}

// newStatusError builds the error for a non-2xx response. msg is the
// server-provided message, if any.
func newStatusError(status int, msg string) *APIError {
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", status)
	}
	return &APIError{Kind: kindForStatus(status), Status: status, Message: msg}
}

// newTransportError wraps a failure that produced no HTTP response.
func newTransportError(err error) *APIError {
	return &APIError{Kind: KindOther, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err. Errors that are not *APIError are KindOther.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}

// IsUnauthorized reports whether err is a 401 from the hub API.
func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}

// IsNotFound reports whether err is a 404 from the hub API.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// Message returns the user-facing message carried by err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
