package domain

import "errors"

var (
	// ErrNotFound is returned when a product or review is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when the caller is not eligible for the operation
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned when no valid identity accompanies a request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is returned when a concurrent writer changed the product (optimistic locking)
	ErrConflict = errors.New("conflict occurred")

	// ErrStoreUnavailable is returned when persistence or a collaborator fails transiently
	ErrStoreUnavailable = errors.New("store unavailable")
)
