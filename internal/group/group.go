package group

import "io/fs"

// Hierarchy identifies which cgroup-style hierarchy a group lives on.
type Hierarchy string

// Supported hierarchies. Parameter requests are only accepted for groups
// on the unified hierarchy; the legacy value exists so resolution can
// report the difference between "not a group" and "wrong hierarchy".
const (
	HierarchyUnified Hierarchy = "unified"
	HierarchyLegacy  Hierarchy = "legacy"
)

// Group is a single resource-control group.
//
// A Group is immutable after creation and compared by pointer identity.
// The numeric id is stable for the group's lifetime but may be reused by
// a later group once this one is destroyed.
type Group struct {
	id        uint64
	name      string
	hierarchy Hierarchy
	ownerUID  int
	ownerGID  int
	mode      fs.FileMode
}

// ID returns the group's numeric id, used as the registry hash key.
func (g *Group) ID() uint64 { return g.id }

// Name returns the group's human-readable name.
func (g *Group) Name() string { return g.name }

// Hierarchy returns the hierarchy the group lives on.
func (g *Group) Hierarchy() Hierarchy { return g.hierarchy }

// OwnerUID returns the uid owning the group's control file.
func (g *Group) OwnerUID() int { return g.ownerUID }

// OwnerGID returns the gid owning the group's control file.
func (g *Group) OwnerGID() int { return g.ownerGID }

// Mode returns the permission bits of the group's control file.
func (g *Group) Mode() fs.FileMode { return g.mode }

// Spec describes a group to create.
type Spec struct {
	Name      string
	Hierarchy Hierarchy   // defaults to HierarchyUnified
	OwnerUID  int
	OwnerGID  int
	Mode      fs.FileMode // defaults to 0644
}
