package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches API errors with status 401.
	ErrUnauthorized = errors.New("store api: unauthorized")
	// ErrNotFound matches API errors with status 404.
	ErrNotFound = errors.New("store api: not found")
	// ErrConflict matches API errors with status 409.
	ErrConflict = errors.New("store api: conflict")
	// ErrRejected matches API errors with status 400 or 422.
	ErrRejected = errors.New("store api: request rejected")
)

// APIError is a non-2xx answer from the store API.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is lets callers match on the sentinel errors with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrRejected:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}
