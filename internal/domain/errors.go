package domain

import "errors"

// Sentinel errors surfaced by services and mapped to HTTP status codes at
// the boundary (internal/http/response). Wrap with fmt.Errorf("...: %w", err)
// to add context without losing the mapping.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrDelivery        = errors.New("email delivery failed")
)
