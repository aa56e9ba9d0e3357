package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the API distinguishes.
// Anything that doesn't wrap one of these is an unclassified failure and
// collapses to a generic 500 at the HTTP boundary.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrAlreadyFollowing = errors.New("already following")
)

type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// AlreadyFollowing reports a duplicate follow attempt. It gets its own
// sentinel (not a generic conflict) because the API surfaces it as a
// distinct 400 response the frontend reacts to.
func AlreadyFollowing(targetID string) *AppError {
	return &AppError{
		Err:     ErrAlreadyFollowing,
		Message: fmt.Sprintf("already following user %s", targetID),
	}
}
