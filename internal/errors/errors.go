package errors

import (
	"errors"
	"fmt"
)

// Common error types for the EcoLink front-end
var (
	// Authentication errors
	ErrLoginFailed  = errors.New("invalid credentials or service error")
	ErrMissingToken = errors.New("login response carried no access token")
	ErrTokenExpired = errors.New("token expired")

	// Workflow errors
	ErrInvalidStep  = errors.New("operation not allowed in current step")
	ErrTerminalStep = errors.New("already at final step")
	ErrInitialStep  = errors.New("already at first step")
	ErrSubmitted    = errors.New("registration already submitted")

	// Geolocation errors
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrLocateTimeout       = errors.New("geolocation timed out")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStale        = errors.New("result superseded by a newer request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}
