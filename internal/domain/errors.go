package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request rejected before any side effect.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCorruptState marks persisted data that failed validation.
	ErrCorruptState = errors.New("corrupt persisted state")
	// ErrNotRegistered is returned when the ticket flow is used before registration.
	ErrNotRegistered = errors.New("registration required")
	// ErrSuperseded marks a resolution result overtaken by a newer request.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNoActiveTicket is returned by operations that need an active ticket.
	ErrNoActiveTicket = errors.New("no active ticket")
)

// InvalidInput wraps ErrInvalidInput with a reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundError reports that a lookup matched nothing.
type NotFoundError struct {
	What  string
	Query string
}

func (e *NotFoundError) Error() string {
	what := e.What
	if what == "" {
		what = "location"
	}
	return fmt.Sprintf("%s %q not found", what, e.Query)
}

// GeocodeError wraps a transport or parse failure during geocoding.
type GeocodeError struct {
	Query string
	Err   error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("failed to geocode %q: %v", e.Query, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }
