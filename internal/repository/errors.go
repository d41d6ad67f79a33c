// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and middleware to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user
// is not authorized to perform an operation on a resource owned by
// someone else, while ErrEmailExists signals a unique constraint
// violation during registration.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering with an email address
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrTrackNotFound is returned when a track cannot be found.
var ErrTrackNotFound = errors.New("track not found")

// ErrPlaylistNotFound is returned when a playlist cannot be found.
var ErrPlaylistNotFound = errors.New("playlist not found")
