package param

import "errors"

// Domain errors for the param package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, param.ErrInvalidArgument) {
//	    // malformed or out-of-range request
//	}
var (
	// ErrInvalidArgument is returned for malformed or out-of-range request
	// data: bad flags, unrecognised parameter ids, illegal values.
	ErrInvalidArgument = errors.New("param: invalid argument")

	// ErrInvalidReference is returned when a caller-supplied handle does
	// not name a live group.
	ErrInvalidReference = errors.New("param: invalid group reference")

	// ErrWrongHierarchy is returned when the referenced group is not on
	// the unified hierarchy.
	ErrWrongHierarchy = errors.New("param: group not on unified hierarchy")

	// ErrPermissionDenied is returned when the caller is not authorized to
	// configure the target group. No further detail is exposed.
	ErrPermissionDenied = errors.New("param: permission denied")

	// ErrAllocFailed is returned when the driver could not allocate record
	// storage. No partial record is left behind.
	ErrAllocFailed = errors.New("param: allocation failed")

	// ErrNotSupported is returned when group integration is disabled or
	// the driver does not implement the parameter on current hardware.
	ErrNotSupported = errors.New("param: not supported")

	// ErrParamNotSet is returned by reads for groups that have never had
	// a parameter set.
	ErrParamNotSet = errors.New("param: no value set for group")

	// ErrRegistryClosed is returned by mutations after Shutdown.
	ErrRegistryClosed = errors.New("param: registry shut down")
)
