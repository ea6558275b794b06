// Package storeerr defines the sentinel errors shared between the
// repository, service and handler layers. Handlers map them to HTTP
// status codes with errors.Is; everything else wraps them.
package storeerr

import "errors"

var (
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized means the presented credentials are invalid.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the principal is not allowed to act on the record.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid means the input failed validation.
	ErrInvalid = errors.New("invalid input")
)
