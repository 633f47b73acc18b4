package param

// MaxDriverParam is the highest parameter id drivers may define. Ids above
// this range are reserved for values a core layer might define centrally;
// no such parameters exist today, so requests there are rejected outright.
const MaxDriverParam uint64 = 0xFFFFFF

// Data is the driver-opaque payload stored in a Record. The registry never
// inspects it; only the owning driver's callbacks do.
type Data any

// Driver is the extension contract a concrete driver implements to attach
// its own per-group parameter storage to a Registry.
//
// All callbacks are invoked with the registry mutex held, so they must not
// block on I/O or call back into the registry. They may assume exclusive
// access to the Data they are given.
type Driver interface {
	// AllocParams allocates storage for a group that has no record yet.
	// Fields should be initialised to their documented defaults.
	AllocParams() (Data, error)

	// UpdateParam assigns a value to one parameter slot.
	// Unrecognised ids or illegal values must be rejected with an error;
	// the registry returns it to the caller unchanged.
	UpdateParam(data Data, param uint64, value int64) error

	// ReadParam returns the current value of one parameter slot.
	ReadParam(data Data, param uint64) (int64, error)
}

// Remover is optionally implemented by drivers whose record storage needs
// explicit teardown. Drivers that don't implement it simply have their
// records dropped.
type Remover interface {
	RemoveParams(data Data)
}
