package domain

import "errors"

var (
	// ErrQuotaExceeded is returned when a player has used all guesses for the current UTC day.
	ErrQuotaExceeded = errors.New("daily limit reached")
	// ErrNoContentAvailable indicates the item collection is empty.
	ErrNoContentAvailable = errors.New("no content available")
	// ErrResponseTimeout is returned when an awaited reply did not arrive before the deadline.
	ErrResponseTimeout = errors.New("response timed out")
	// ErrMalformedSubmission indicates admin input that is not "prompt | answer | true/false".
	ErrMalformedSubmission = errors.New("malformed submission")
	// ErrPermissionDenied is returned when a non-admin calls an admin-only operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrPlayerNotFound indicates the player record does not exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrEmptyPrompt is returned when a submit or generate command carries no prompt text.
	ErrEmptyPrompt = errors.New("prompt is empty")
)
