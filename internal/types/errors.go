package types

import "errors"

// Sentinel errors shared across services and repositories. Handlers map
// these onto HTTP status codes in one place.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("resource conflict")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("access denied")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrContentEmpty        = errors.New("model returned no content")
)
