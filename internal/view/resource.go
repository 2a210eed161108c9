// Package view implements the tri-state data loading used by every page: a
// section of a page is either still loading, loaded with data, loaded with
// nothing to show, or failed. Rendering is a pure function of that state.
package view

import (
	"context"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/telemetry"
)

// Status is the lifecycle state of a Resource.
type Status int

const (
	// StatusUnset means the data has not been requested yet.
	StatusUnset Status = iota
	// StatusLoading means a request is in flight.
	StatusLoading
	// StatusEmpty means the request completed with nothing to show.
	StatusEmpty
	// StatusReady means Data is populated.
	StatusReady
	// StatusFailed means the request failed; Message holds the inline error
	// unless the failure was an authorization one.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnset:
		return "unset"
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultErrorMessage is shown inline when a load fails and the caller did not
// provide a message of its own.
const DefaultErrorMessage = "An error occurred, please try again later."

// Resource holds the state of one loaded section of a page.
type Resource[T any] struct {
	Status  Status
	Data    T
	Message string
	Err     error
}

// Unset reports whether the data has not been requested yet.
func (r Resource[T]) Unset() bool { return r.Status == StatusUnset }

// Loading reports whether the resource is still being fetched.
func (r Resource[T]) Loading() bool { return r.Status == StatusLoading }

// Pending reports whether the data is not available yet, either because it
// was never requested or because the request is in flight.
func (r Resource[T]) Pending() bool { return r.Status == StatusUnset || r.Status == StatusLoading }

// Ready reports whether Data holds something to render.
func (r Resource[T]) Ready() bool { return r.Status == StatusReady }

// Empty reports whether the load completed with nothing to show.
func (r Resource[T]) Empty() bool { return r.Status == StatusEmpty }

// Failed reports whether the load failed.
func (r Resource[T]) Failed() bool { return r.Status == StatusFailed }

// Unauthorized reports whether the load failed because the session is no
// longer valid.
func (r Resource[T]) Unauthorized() bool {
	return r.Status == StatusFailed && hubapi.IsUnauthorized(r.Err)
}

// HasMessage reports whether an inline error should be rendered.
func (r Resource[T]) HasMessage() bool {
	return r.Status == StatusFailed && r.Message != ""
}

// Options tune how Load classifies results.
type Options[T any] struct {
	// Name labels the load in metrics ("repositories", "stats", ...).
	Name string
	// IsEmpty reports whether a successful result has nothing to show.
	IsEmpty func(T) bool
	// OnAuthError is called once when the load fails with Unauthorized.
	OnAuthError func(error)
	// ErrorMessage overrides DefaultErrorMessage. When MessageFor is set it
	// takes precedence.
	ErrorMessage string
	// MessageFor derives the inline message from the error. Returning "" falls
	// back to ErrorMessage.
	MessageFor func(error) string
	// OnTransition observes every status change.
	OnTransition func(Status)
}

// Load runs fetch and returns the resulting resource. NotFound counts as an
// empty result. Unauthorized triggers OnAuthError and sets no inline message;
// every other failure sets one.
func Load[T any](ctx context.Context, fetch func(context.Context) (T, error), opts Options[T]) Resource[T] {
	var r Resource[T]
	set := func(s Status) {
		r.Status = s
		if opts.OnTransition != nil {
			opts.OnTransition(s)
		}
	}

	set(StatusLoading)
	data, err := fetch(ctx)

	switch {
	case err == nil:
		r.Data = data
		if opts.IsEmpty != nil && opts.IsEmpty(data) {
			set(StatusEmpty)
		} else {
			set(StatusReady)
		}
		observe(opts.Name, r.Status.String())

	case hubapi.IsNotFound(err):
		set(StatusEmpty)
		observe(opts.Name, r.Status.String())

	case hubapi.IsUnauthorized(err):
		r.Err = err
		set(StatusFailed)
		observe(opts.Name, "unauthorized")
		if opts.OnAuthError != nil {
			opts.OnAuthError(err)
		}

	default:
		r.Err = err
		r.Message = messageFor(err, opts)
		set(StatusFailed)
		observe(opts.Name, r.Status.String())
	}
	return r
}

func messageFor[T any](err error, opts Options[T]) string {
	if opts.MessageFor != nil {
		if msg := opts.MessageFor(err); msg != "" {
			return msg
		}
	}
	if opts.ErrorMessage != "" {
		return opts.ErrorMessage
	}
	return DefaultErrorMessage
}

func observe(name, status string) {
	if name == "" {
		name = "unnamed"
	}
	telemetry.ViewLoadsTotal.WithLabelValues(name, status).Inc()
}

// ReadyWith returns a resource already populated with data.
func ReadyWith[T any](data T) Resource[T] {
	return Resource[T]{Status: StatusReady, Data: data}
}

// IsEmptySlice is an IsEmpty helper for list loads.
func IsEmptySlice[E any](s []E) bool { return len(s) == 0 }

// IsNil is an IsEmpty helper for pointer loads.
func IsNil[E any](p *E) bool { return p == nil }
