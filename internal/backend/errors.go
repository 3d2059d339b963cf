package backend

import (
	"errors"
	"fmt"
)

// ServiceError is any non-success outcome of a backend call, including transport
// failures. Message holds the service-provided text and may be empty.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// MessageOr returns the service message, or fallback when the service gave none.
func (e *ServiceError) MessageOr(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// UserMessage extracts what to show for err: the service message if err is a
// ServiceError carrying one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.MessageOr(fallback)
	}
	return fallback
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.StatusCode == 401
}
