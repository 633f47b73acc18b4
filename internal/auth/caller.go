package auth

// Capability represents a named privilege a caller may hold.
type Capability string

// Capability constants.
const (
	// CapResourceAdmin allows adjusting resource-control parameters for
	// any group, the analogue of a system resource-management privilege.
	CapResourceAdmin Capability = "resource:admin"
)

// Caller describes the identity attempting a parameter operation.
type Caller struct {
	// UID and GID are the caller's credentials, matched against the
	// group's control-file ownership by GroupAccessPolicy.
	UID int
	GID int

	// Capabilities are the privileges granted to the caller.
	Capabilities []Capability

	// Master reports whether the caller currently holds exclusive
	// device-control status on the target device.
	Master bool
}

// HasCapability returns true if the caller holds the given capability.
func (c *Caller) HasCapability(cap Capability) bool {
	if c == nil {
		return false
	}
	for _, have := range c.Capabilities {
		if have == cap {
			return true
		}
	}
	return false
}
