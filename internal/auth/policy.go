package auth

import (
	"fmt"
	"io/fs"

	"github.com/nerrad567/devparam-core/internal/group"
	"github.com/nerrad567/devparam-core/internal/infrastructure/config"
)

// Policy decides whether a caller may configure parameters on a group.
// Implementations return a plain allow/deny; callers surface the denial
// without further detail.
type Policy interface {
	// Allow reports whether the caller may set or read parameters on grp.
	Allow(caller *Caller, grp *group.Group) bool

	// Name returns the config name of the policy, for logging.
	Name() string
}

// FromConfig returns the policy selected by security.auth_policy.
func FromConfig(name string) (Policy, error) {
	switch name {
	case config.AuthPolicyCapability:
		return CapabilityPolicy{}, nil
	case config.AuthPolicyGroupAccess:
		return GroupAccessPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown auth policy %q", name)
	}
}

// CapabilityPolicy grants access to callers holding the resource-admin
// capability or exclusive device-control status. The target group is not
// consulted.
type CapabilityPolicy struct{}

// Allow implements Policy.
func (CapabilityPolicy) Allow(caller *Caller, _ *group.Group) bool {
	if caller == nil {
		return false
	}
	return caller.HasCapability(CapResourceAdmin) || caller.Master
}

// Name implements Policy.
func (CapabilityPolicy) Name() string { return config.AuthPolicyCapability }

// GroupAccessPolicy grants access to callers with write permission on the
// group's control file, mirroring the check the group subsystem itself
// applies to direct writes. Root always passes.
type GroupAccessPolicy struct{}

// Permission bit masks for the group control file.
const (
	ownerWriteBit fs.FileMode = 0200
	groupWriteBit fs.FileMode = 0020
	otherWriteBit fs.FileMode = 0002
)

// Allow implements Policy.
func (GroupAccessPolicy) Allow(caller *Caller, grp *group.Group) bool {
	if caller == nil || grp == nil {
		return false
	}
	if caller.UID == 0 {
		return true
	}

	mode := grp.Mode()
	switch {
	case caller.UID == grp.OwnerUID():
		return mode&ownerWriteBit != 0
	case caller.GID == grp.OwnerGID():
		return mode&groupWriteBit != 0
	default:
		return mode&otherWriteBit != 0
	}
}

// Name implements Policy.
func (GroupAccessPolicy) Name() string { return config.AuthPolicyGroupAccess }
