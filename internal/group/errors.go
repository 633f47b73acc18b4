package group

import "errors"

// Domain errors for the group package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, group.ErrInvalidHandle) {
//	    // handle does not name a live group
//	}
var (
	// ErrInvalidHandle is returned when a handle does not name a live group.
	ErrInvalidHandle = errors.New("group: invalid handle")

	// ErrGroupNotFound is returned when a group id does not exist.
	ErrGroupNotFound = errors.New("group: not found")

	// ErrGroupDestroyed is returned when an operation targets a group that
	// has already been destroyed.
	ErrGroupDestroyed = errors.New("group: destroyed")
)
