package param

import "github.com/nerrad567/devparam-core/internal/group"

// Accessor is the allocation-free read path used by the driver's own
// runtime, as opposed to the configuration command path. It never creates
// records and never fails: a group with no record, a nil group, or an
// uninitialised accessor all yield the caller-supplied default.
type Accessor struct {
	reg *Registry
}

// NewAccessor creates an accessor over reg. A nil registry is allowed and
// makes every read return its default, which covers the case where group
// integration is disabled or not yet set up.
func NewAccessor(reg *Registry) *Accessor {
	return &Accessor{reg: reg}
}

// Read returns the value of paramID for g, or def if the accessor is not
// backed by a registry, g is nil, no record exists, or the driver does not
// recognise the parameter.
func (a *Accessor) Read(g *group.Group, paramID uint64, def int64) int64 {
	if a == nil || a.reg == nil || g == nil {
		return def
	}

	rec, ok := a.reg.Lookup(g)
	if !ok {
		return def
	}

	v, err := a.reg.Read(rec, paramID)
	if err != nil {
		return def
	}
	return v
}
