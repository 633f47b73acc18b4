package param

import (
	"fmt"
	"sync"

	"github.com/nerrad567/devparam-core/internal/group"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Record holds one group's driver-owned parameter storage.
//
// Records are owned exclusively by the Registry from creation until
// removal. At most one record exists per (device, group) pair. The payload
// is only mutated through registry methods while the registry mutex is
// held; callers treat a *Record as an opaque handle.
type Record struct {
	device  string
	group   *group.Group
	data    Data
	removed bool
}

// Group returns the group this record belongs to.
func (r *Record) Group() *group.Group { return r.group }

// Device returns the id of the device that owns this record.
func (r *Record) Device() string { return r.device }

// Registry is the per-device table of parameter records.
//
// The bucket table is keyed by group id; entries within a bucket are
// disambiguated by group pointer identity, so a reused id never aliases a
// dead group's record. A single mutex serializes every structural mutation
// and every driver callback.
//
// All public methods are thread-safe.
type Registry struct {
	device string
	driver Driver
	groups *group.Service
	logger Logger

	mu          sync.Mutex
	buckets     map[uint64][]*Record
	subID       int
	closed      bool
	destroyHook func(g *group.Group, recordsFreed int)
}

// NewRegistry creates a registry for one device and subscribes it to the
// group service's destruction broadcast. The caller must Shutdown the
// registry at device teardown.
func NewRegistry(device string, driver Driver, groups *group.Service) *Registry {
	r := &Registry{
		device:  device,
		driver:  driver,
		groups:  groups,
		logger:  noopLogger{},
		buckets: make(map[uint64][]*Record),
	}
	r.subID = groups.Subscribe(r.onGroupDestroyed)
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Device returns the id of the device this registry belongs to.
func (r *Registry) Device() string { return r.device }

// findLocked returns the record for g, comparing identity within the
// bucket. Caller must hold r.mu.
func (r *Registry) findLocked(g *group.Group) (*Record, int) {
	for i, rec := range r.buckets[g.ID()] {
		if rec.group == g {
			return rec, i
		}
	}
	return nil, -1
}

// insertLocked adds a record to its bucket. Caller must hold r.mu.
func (r *Registry) insertLocked(rec *Record) {
	id := rec.group.ID()
	r.buckets[id] = append(r.buckets[id], rec)
}

// exciseLocked removes the i-th record from g's bucket and marks it
// removed. Caller must hold r.mu.
func (r *Registry) exciseLocked(g *group.Group, i int) {
	id := g.ID()
	bucket := r.buckets[id]
	bucket[i] = bucket[len(bucket)-1]
	bucket = bucket[:len(bucket)-1]
	if len(bucket) == 0 {
		delete(r.buckets, id)
	} else {
		r.buckets[id] = bucket
	}
}

// freeLocked hands the record's payload back to the driver. Caller must
// hold r.mu; the record must already be excised, so this runs at most once
// per record.
func (r *Registry) freeLocked(rec *Record) {
	rec.removed = true
	if remover, ok := r.driver.(Remover); ok {
		remover.RemoveParams(rec.data)
	}
	rec.data = nil
}

// groupLiveLocked reports whether g is still the live group under its id.
// Caller must hold r.mu. A caller can arrive here with a group whose
// destruction broadcast already ran: the handle was resolved before the
// destroy won the race. Inserting a record for such a group would leak it
// until Shutdown, since its destruction event has already been delivered.
// The service removes a group from its table before broadcasting, so an
// identity lookup under the registry mutex closes that window. Lock order
// is safe: the service never holds its own lock while calling into the
// registry.
func (r *Registry) groupLiveLocked(g *group.Group) bool {
	live, ok := r.groups.Lookup(g.ID())
	return ok && live == g
}

// GetOrCreate returns the record for g, allocating one via the driver if
// none exists. The mutex is held across the whole find-or-insert sequence,
// so concurrent first-time callers observe a single record. A group whose
// destruction already completed is rejected rather than resurrected.
func (r *Registry) GetOrCreate(g *group.Group) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}

	if rec, _ := r.findLocked(g); rec != nil {
		return rec, nil
	}

	if !r.groupLiveLocked(g) {
		return nil, fmt.Errorf("%w: group destroyed", ErrInvalidReference)
	}

	data, err := r.driver.AllocParams()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocFailed, err)
	}

	rec := &Record{device: r.device, group: g, data: data}
	r.insertLocked(rec)

	r.logger.Debug("record created", "device", r.device, "group", g.ID())
	return rec, nil
}

// Lookup returns the record for g without creating one. This is the fast
// read path: a bounded bucket scan under the mutex, no allocation.
func (r *Registry) Lookup(g *group.Group) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, _ := r.findLocked(g)
	return rec, rec != nil
}

// Update assigns a parameter value on a record via the driver callback.
// The registry does not interpret the parameter id or validate ranges;
// that is wholly the driver's responsibility.
func (r *Registry) Update(rec *Record, paramID uint64, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.removed {
		return fmt.Errorf("%w: record removed", ErrInvalidReference)
	}
	return r.driver.UpdateParam(rec.data, paramID, value)
}

// Read returns a parameter value from a record via the driver callback.
func (r *Registry) Read(rec *Record, paramID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.removed {
		return 0, fmt.Errorf("%w: record removed", ErrInvalidReference)
	}
	return r.driver.ReadParam(rec.data, paramID)
}

// SetParam updates one parameter for g, creating the record first if
// needed. A failed request leaves no visible side effect: if the record is
// freshly allocated and the first update fails, the record is not inserted.
func (r *Registry) SetParam(g *group.Group, paramID uint64, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	if rec, _ := r.findLocked(g); rec != nil {
		return r.driver.UpdateParam(rec.data, paramID, value)
	}

	if !r.groupLiveLocked(g) {
		return fmt.Errorf("%w: group destroyed", ErrInvalidReference)
	}

	data, err := r.driver.AllocParams()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocFailed, err)
	}

	if err := r.driver.UpdateParam(data, paramID, value); err != nil {
		if remover, ok := r.driver.(Remover); ok {
			remover.RemoveParams(data)
		}
		return err
	}

	r.insertLocked(&Record{device: r.device, group: g, data: data})
	r.logger.Debug("record created", "device", r.device, "group", g.ID())
	return nil
}

// GetParam reads one parameter for g. Never creates a record; returns
// ErrParamNotSet if no parameter has ever been set on the group.
func (r *Registry) GetParam(g *group.Group, paramID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, _ := r.findLocked(g)
	if rec == nil {
		return 0, ErrParamNotSet
	}
	return r.driver.ReadParam(rec.data, paramID)
}

// Remove excises and frees the record for g, if any, reporting whether a
// record existed. Safe to call when no record exists, and safe to race
// with Shutdown: the presence check and excision happen under the same
// mutex, so each record is freed exactly once no matter which path gets
// there first.
func (r *Registry) Remove(g *group.Group) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, i := r.findLocked(g)
	if rec == nil {
		return false
	}
	r.exciseLocked(g, i)
	r.freeLocked(rec)

	r.logger.Debug("record removed", "device", r.device, "group", g.ID())
	return true
}

// Shutdown drains every remaining record and detaches the registry from
// the group service. It unsubscribes before draining so no new destruction
// event can observe the table mid-drain. Safe to call more than once.
func (r *Registry) Shutdown() {
	r.groups.Unsubscribe(r.subID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	count := 0
	for id, bucket := range r.buckets {
		for _, rec := range bucket {
			r.freeLocked(rec)
			count++
		}
		delete(r.buckets, id)
	}

	r.logger.Info("registry shut down", "device", r.device, "records_freed", count)
}

// Count returns the number of live records, for stats and tests.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, bucket := range r.buckets {
		n += len(bucket)
	}
	return n
}

// SetDestroyHook registers fn to be called after a destruction broadcast
// has cleaned up a group's state. recordsFreed is 0 or 1. The hook runs
// outside the registry mutex and must not call back into the group
// service's destroy path.
func (r *Registry) SetDestroyHook(fn func(g *group.Group, recordsFreed int)) {
	r.mu.Lock()
	r.destroyHook = fn
	r.mu.Unlock()
}

// onGroupDestroyed is the destruction-broadcast callback.
// Record absence is success: there may be nothing to clean up.
func (r *Registry) onGroupDestroyed(g *group.Group) {
	freed := 0
	if r.Remove(g) {
		freed = 1
	}

	r.mu.Lock()
	hook := r.destroyHook
	r.mu.Unlock()
	if hook != nil {
		hook(g, freed)
	}
}
