// Package group models the host resource-control-group subsystem that
// devparam integrates with.
//
// The parameter registry does not own groups; it only consumes three things
// from this package:
//
//   - resolving a caller-supplied handle to a live *Group
//   - a destruction broadcast it can subscribe to
//   - stable group identity (numeric id plus pointer identity)
//
// Groups live on a flat "unified" hierarchy. Ids may be reused after a
// group is destroyed, which is why consumers must compare groups by
// pointer identity rather than by id alone.
//
// # Key Types
//
//   - Group: a single resource-control group (immutable after creation)
//   - Service: creation, destruction, handle table and destruction broadcast
//
// # Thread Safety
//
// The Service is safe for concurrent use. Destruction callbacks are invoked
// after the Service releases its own lock, so subscribers may freely call
// back into the Service.
package group
