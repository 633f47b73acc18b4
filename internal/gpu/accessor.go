package gpu

import (
	"github.com/nerrad567/devparam-core/internal/group"
	"github.com/nerrad567/devparam-core/internal/param"
)

// Accessor is the driver runtime's read side for group parameters.
//
// It is used on scheduling and display paths, not by the configuration
// API, so it must be cheap and must never fail: groups without a record,
// a nil group (internally-created contexts with no owning process), or a
// driver running without group integration all read as defaults.
type Accessor struct {
	acc  *param.Accessor
	caps Caps
}

// NewAccessor creates an accessor over reg. reg may be nil when group
// integration is disabled; every read then returns its default.
func NewAccessor(reg *param.Registry, caps Caps) *Accessor {
	return &Accessor{
		acc:  param.NewAccessor(reg),
		caps: caps,
	}
}

// CurrentPriorityOffset returns the priority offset configured for g, or
// DefaultPriorityOffset if none is set.
func (a *Accessor) CurrentPriorityOffset(g *group.Group) int64 {
	if a == nil {
		return DefaultPriorityOffset
	}
	return a.acc.Read(g, ParamPriorityOffset, DefaultPriorityOffset)
}

// CurrentDisplayBoost returns the display boost configured for g, or the
// hardware default if none is set.
func (a *Accessor) CurrentDisplayBoost(g *group.Group) int64 {
	if a == nil {
		return 0
	}
	return a.acc.Read(g, ParamDisplayBoost, a.caps.DefaultDisplayBoost)
}

// EffectivePriority applies g's offset to a context's base priority and
// clamps the result to the device window.
func (a *Accessor) EffectivePriority(g *group.Group, base int64) int64 {
	prio := base
	if a != nil {
		prio += a.CurrentPriorityOffset(g)
		if prio > a.caps.PriorityMax {
			prio = a.caps.PriorityMax
		}
		if prio < a.caps.PriorityMin {
			prio = a.caps.PriorityMin
		}
	}
	return prio
}
