package mutation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"jobmate/board-client/internal/gateway"
)

// Kind discriminates failures so callers can render an accurate message.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindTransient     Kind = "transient"
	KindConflict      Kind = "conflict"
)

// Error is returned by every failed mutation or refresh.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Classify wraps err with its Kind. An err that already carries a Kind is
// returned unchanged.
func Classify(op string, err error) *Error {
	var merr *Error
	if errors.As(err, &merr) {
		return merr
	}
	return &Error{Kind: kindOf(err), Op: op, Err: err}
}

func kindOf(err error) Kind {
	var (
		verr *ValidationError
		serr *gateway.StatusError
		terr *gateway.TransportError
		nerr net.Error
	)
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, gateway.ErrUnauthorized):
		return KindAuthorization
	case errors.As(err, &serr):
		switch {
		case serr.Code == http.StatusForbidden:
			return KindAuthorization
		case serr.Code == http.StatusRequestTimeout,
			serr.Code == http.StatusTooManyRequests,
			serr.Code >= 500:
			return KindTransient
		}
		return KindConflict
	case errors.As(err, &terr),
		errors.As(err, &nerr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransient
	}
	// Undecodable success body: outcome unknown.
	return KindTransient
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Kind, true
	}
	return "", false
}
