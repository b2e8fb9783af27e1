package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrScopeDenied indicates the caller tried to read or select a company
	// or sub-unit outside their memberships.
	ErrScopeDenied = errors.New("scope denied")
	// ErrWriteDenied indicates the caller lacks the write capability or the
	// role required for a mutation.
	ErrWriteDenied = errors.New("write denied")
)
