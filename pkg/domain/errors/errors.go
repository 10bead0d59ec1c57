package errors

import "errors"

var (
	// requested entity is not found.
	ErrMissing = errors.New("missing")

	// the entity is already there; it violates an uniqueness.
	ErrConflict = errors.New("conflict")

	// the request is malformed.
	ErrInvalid = errors.New("invalid")
)

// the actor is not allowed to do the action.
var ErrNotAuthorized = errors.New("not authorized")
