package shared

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness constraint violation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or unverifiable bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInactiveUser indicates the authenticated account is disabled.
	ErrInactiveUser = errors.New("inactive user")
	// ErrForbidden indicates the caller lacks a required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates a malformed or invalid request payload.
	ErrValidation = errors.New("validation failed")
)
