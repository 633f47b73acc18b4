package group

import (
	"io/fs"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Service.
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

// DestroyFunc is invoked when a group is destroyed. The callback runs
// after the Service has released its own lock, so it may call back into
// the Service.
type DestroyFunc func(*Group)

// Service manages the lifetime of groups, the handle table used to pass
// groups across the control API, and the destruction broadcast consumed
// by parameter registries.
//
// All public methods are thread-safe.
type Service struct {
	logger Logger

	mu      sync.RWMutex
	groups  map[uint64]*Group
	handles map[int]*Group
	subs    map[int]DestroyFunc

	nextID     uint64
	freeIDs    []uint64 // destroyed ids available for reuse, LIFO
	nextHandle int
	nextSub    int
}

// NewService creates an empty group service.
func NewService() *Service {
	return &Service{
		logger:     noopLogger{},
		groups:     make(map[uint64]*Group),
		handles:    make(map[int]*Group),
		subs:       make(map[int]DestroyFunc),
		nextID:     1,
		nextHandle: 3, // 0-2 look like stdio; avoids confusion in logs
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Create creates a new group from spec and returns it.
//
// Destroyed group ids are reused before new ids are allocated, matching
// hosts that recycle group identifiers. Consumers must therefore hold on
// to the *Group, not just its id.
func (s *Service) Create(spec Spec) *Group {
	if spec.Hierarchy == "" {
		spec.Hierarchy = HierarchyUnified
	}
	if spec.Mode == 0 {
		spec.Mode = fs.FileMode(0644)
	}

	s.mu.Lock()
	var id uint64
	if n := len(s.freeIDs); n > 0 {
		id = s.freeIDs[n-1]
		s.freeIDs = s.freeIDs[:n-1]
	} else {
		id = s.nextID
		s.nextID++
	}

	g := &Group{
		id:        id,
		name:      spec.Name,
		hierarchy: spec.Hierarchy,
		ownerUID:  spec.OwnerUID,
		ownerGID:  spec.OwnerGID,
		mode:      spec.Mode,
	}
	s.groups[id] = g
	s.mu.Unlock()

	s.logger.Info("group created", "id", id, "name", spec.Name, "hierarchy", spec.Hierarchy)
	return g
}

// Lookup returns the live group with the given id.
func (s *Service) Lookup(id uint64) (*Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	return g, ok
}

// Destroy removes the group and broadcasts its destruction to all
// subscribers. Handles referring to the group become invalid. Destroying
// an already-destroyed group is a no-op.
func (s *Service) Destroy(g *Group) {
	if g == nil {
		return
	}

	s.mu.Lock()
	current, ok := s.groups[g.id]
	if !ok || current != g {
		s.mu.Unlock()
		return
	}
	delete(s.groups, g.id)
	s.freeIDs = append(s.freeIDs, g.id)

	for h, hg := range s.handles {
		if hg == g {
			delete(s.handles, h)
		}
	}

	// Snapshot subscribers so callbacks run without the service lock held.
	subs := make([]DestroyFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.logger.Info("group destroyed", "id", g.id, "name", g.name)

	for _, fn := range subs {
		fn(g)
	}
}

// OpenHandle allocates a handle referring to the group, analogous to a
// process opening a file descriptor on the group's directory.
func (s *Service) OpenHandle(g *Group) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.groups[g.id]; !ok || current != g {
		return 0, ErrGroupDestroyed
	}

	h := s.nextHandle
	s.nextHandle++
	s.handles[h] = g
	return h, nil
}

// ResolveHandle returns the live group a handle refers to.
// Returns ErrInvalidHandle if the handle is unknown or its group is gone.
func (s *Service) ResolveHandle(h int) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.handles[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return g, nil
}

// CloseHandle releases a handle. Closing an unknown handle is a no-op.
func (s *Service) CloseHandle(h int) {
	s.mu.Lock()
	delete(s.handles, h)
	s.mu.Unlock()
}

// Subscribe registers a destruction callback and returns a subscription id
// for Unsubscribe. Each destroyed group is delivered to every subscriber
// exactly once.
func (s *Service) Subscribe(fn DestroyFunc) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return id
}

// Unsubscribe removes a destruction callback. After Unsubscribe returns,
// the callback will not be invoked for groups destroyed later; an
// in-flight broadcast snapshotted before the call may still deliver once.
func (s *Service) Unsubscribe(id int) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// List returns all live groups sorted by id.
func (s *Service) List() []*Group {
	s.mu.RLock()
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Count returns the number of live groups.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups)
}
