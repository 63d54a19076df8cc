package apiclient

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindRequest: the request could not be built (bad path, unencodable body, token source failure)
	KindRequest Kind = iota + 1
	// KindTransport: the request did not complete
	KindTransport
	// KindStatus: the API answered with a non-2xx status
	KindStatus
	// KindDecode: the response body was not what the caller expected
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned for every failed call
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("api %s %s: status %d", e.Method, e.Path, e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("api %s %s: decode response: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("api %s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
