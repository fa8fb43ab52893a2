package services

import "errors"

// Sentinel errors; handlers map these onto HTTP problem responses. Wrap with
// fmt.Errorf("%w: detail") to attach a caller-visible message.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")

	// ErrBadCreds covers unknown email, wrong password and inactive accounts
	// alike, so callers cannot probe which emails exist.
	ErrBadCreds = errors.New("invalid email or password")
)
