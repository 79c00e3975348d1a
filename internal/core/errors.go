package core

import "errors"

var (
	// authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// resource errors
	ErrNotFound  = errors.New("resource not found")
	ErrConflict  = errors.New("id conflict")
	ErrIntegrity = errors.New("image pool out of sync")

	ErrValidation = errors.New("validation failed")
)
