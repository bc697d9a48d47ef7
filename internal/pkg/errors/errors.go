package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for callers that are not a party to a resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState rejects an operation not valid for the row's current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrPayeeNotConfigured rejects a release when the creator has no payable gateway account.
	ErrPayeeNotConfigured = errors.New("payee not configured")
)
