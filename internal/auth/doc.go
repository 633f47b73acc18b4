// Package auth decides whether a caller may configure parameters on a
// resource-control group.
//
// Two policies exist and are deliberate alternatives, selected by
// configuration rather than combined:
//
//   - CapabilityPolicy: the caller holds the resource-admin capability or
//     currently holds exclusive device-control (master) status.
//   - GroupAccessPolicy: the caller has write access to the group's own
//     control file, the same check the group subsystem applies to direct
//     writes.
//
// Which policy is correct is an open product question inherited from the
// subsystem's history; see DESIGN.md.
package auth
