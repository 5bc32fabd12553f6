package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalid           = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("not signed in")
	ErrForbidden         = errors.New("not allowed")
	ErrGenerationFailed  = errors.New("recipe generation failed")
	ErrGeneratorDisabled = errors.New("recipe generation is not configured")
)
