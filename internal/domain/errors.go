package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrCreatorInactive aborts context assembly before any computation runs.
	// Downstream generation must never receive a partial context for an ineligible account.
	ErrCreatorInactive = errors.New("creator not eligible")
	// ErrProviderUnavailable wraps failures of the required primary bundle fetch.
	ErrProviderUnavailable = errors.New("data provider unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrConflict            = errors.New("conflict")
)
