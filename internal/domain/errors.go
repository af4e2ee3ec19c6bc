package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError covers contention outcomes: slot conflicts, blackout hits
// and illegal status transitions. Details carries competing rows when the
// caller can act on them.
type ConflictError struct {
	Resource string
	Msg      string
	Details  any
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InsufficientError reports an entitlement balance failure. It is
// user-actionable, not retryable as-is.
type InsufficientError struct {
	Msg string
}

func (e InsufficientError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "insufficient entitlement"
}

// UnsupportedError marks a feature that is disabled in this deployment.
// Callers must treat it as "feature absent", never as "no availability".
type UnsupportedError struct {
	Feature string
}

func (e UnsupportedError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("%s not supported", e.Feature)
	}
	return "not supported"
}

// TransientError wraps store failures (lock wait timeout, deadlock,
// connection loss) where retrying the whole transaction is safe.
type TransientError struct {
	Msg string
	Err error
}

func (e TransientError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "transient store error"
}

func (e TransientError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInsufficient(err error) bool {
	var target InsufficientError
	return errors.As(err, &target)
}

func IsUnsupported(err error) bool {
	var target UnsupportedError
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target TransientError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
