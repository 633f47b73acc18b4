package gpu

import "github.com/nerrad567/devparam-core/internal/infrastructure/config"

// Parameter ids in the driver-private range.
const (
	// ParamPriorityOffset shifts context scheduling priority for the group.
	ParamPriorityOffset uint64 = 0x1

	// ParamDisplayBoost sets the display bandwidth boost for the group.
	ParamDisplayBoost uint64 = 0x2
)

// User-visible priority range. Individual contexts pick a base priority in
// this range; the group offset shifts it within the device window.
const (
	MinUserPriority int64 = -1023
	MaxUserPriority int64 = 1023

	// DefaultPriorityOffset is what groups without a record get.
	DefaultPriorityOffset int64 = 0
)

// Caps describes the device limits the driver validates against.
type Caps struct {
	// PriorityMin and PriorityMax bound every effective priority the
	// device scheduler accepts.
	PriorityMin int64
	PriorityMax int64

	// MaxDisplayBoost is the highest boost the hardware supports.
	// Zero means display boost is not available on this hardware.
	MaxDisplayBoost int64

	// DefaultDisplayBoost is returned for groups with no boost configured.
	DefaultDisplayBoost int64
}

// CapsFromConfig builds Caps from the device configuration section.
func CapsFromConfig(cfg config.DeviceConfig) Caps {
	return Caps{
		PriorityMin:         cfg.PriorityMin,
		PriorityMax:         cfg.PriorityMax,
		MaxDisplayBoost:     cfg.MaxDisplayBoost,
		DefaultDisplayBoost: cfg.DefaultDisplayBoost,
	}
}

// MinPriorityOffset returns the lowest legal priority offset for the caps.
func (c Caps) MinPriorityOffset() int64 {
	return c.PriorityMin - MinUserPriority
}

// MaxPriorityOffset returns the highest legal priority offset for the caps.
func (c Caps) MaxPriorityOffset() int64 {
	return c.PriorityMax - MaxUserPriority
}
