package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes of a backend call. Every error returned by a Backend
// matches exactly one of these with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
	ErrTimeout      = errors.New("request timed out")
	ErrNetwork      = errors.New("network error")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return ErrServer
}

// Classify returns the failure class of err, or nil when err is nil or
// does not belong to the taxonomy.
func Classify(err error) error {
	for _, class := range []error{ErrUnauthorized, ErrTimeout, ErrNetwork, ErrServer} {
		if errors.Is(err, class) {
			return class
		}
	}
	return nil
}
