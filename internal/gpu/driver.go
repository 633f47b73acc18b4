package gpu

import (
	"fmt"

	"github.com/nerrad567/devparam-core/internal/param"
)

// paramData is the driver's per-group record payload.
type paramData struct {
	priorityOffset int64
	displayBoost   int64
}

// Driver implements param.Driver for the GPU device.
type Driver struct {
	caps Caps
}

// NewDriver creates a driver validating against the given device caps.
func NewDriver(caps Caps) *Driver {
	return &Driver{caps: caps}
}

// Caps returns the device limits the driver was built with.
func (d *Driver) Caps() Caps { return d.caps }

// AllocParams implements param.Driver. Fields start at their documented
// defaults so a record created for one parameter reads sensibly for the
// others.
func (d *Driver) AllocParams() (param.Data, error) {
	return &paramData{
		priorityOffset: DefaultPriorityOffset,
		displayBoost:   d.caps.DefaultDisplayBoost,
	}, nil
}

// ValidateParam checks a parameter id and value against the device caps
// without touching any record. The command pipeline calls this before any
// record is created so an illegal request leaves no trace.
func (d *Driver) ValidateParam(paramID uint64, value int64) error {
	switch paramID {
	case ParamPriorityOffset:
		// The offset is legal only if a context at either extreme of the
		// user priority range stays inside the device window once shifted.
		// Compare against the precomputed bounds rather than shifting the
		// caller's value: value+MaxUserPriority overflows near the int64
		// extremes and would wrap back into range.
		if value < d.caps.MinPriorityOffset() || value > d.caps.MaxPriorityOffset() {
			return fmt.Errorf("%w: priority offset %d outside [%d, %d]",
				param.ErrInvalidArgument, value, d.caps.MinPriorityOffset(), d.caps.MaxPriorityOffset())
		}
		return nil

	case ParamDisplayBoost:
		if d.caps.MaxDisplayBoost == 0 {
			return fmt.Errorf("%w: display boost not available on this hardware", param.ErrNotSupported)
		}
		if value < 0 || value > d.caps.MaxDisplayBoost {
			return fmt.Errorf("%w: display boost %d outside [0, %d]",
				param.ErrInvalidArgument, value, d.caps.MaxDisplayBoost)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown parameter %#x", param.ErrInvalidArgument, paramID)
	}
}

// UpdateParam implements param.Driver.
func (d *Driver) UpdateParam(data param.Data, paramID uint64, value int64) error {
	if err := d.ValidateParam(paramID, value); err != nil {
		return err
	}

	pd := data.(*paramData)
	switch paramID {
	case ParamPriorityOffset:
		pd.priorityOffset = value
	case ParamDisplayBoost:
		pd.displayBoost = value
	}
	return nil
}

// ReadParam implements param.Driver.
func (d *Driver) ReadParam(data param.Data, paramID uint64) (int64, error) {
	pd := data.(*paramData)
	switch paramID {
	case ParamPriorityOffset:
		return pd.priorityOffset, nil
	case ParamDisplayBoost:
		return pd.displayBoost, nil
	default:
		return 0, fmt.Errorf("%w: unknown parameter %#x", param.ErrInvalidArgument, paramID)
	}
}
