package param

import (
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/devparam-core/internal/group"
)

// testParam ids used by the mock driver.
const (
	testParamAlpha uint64 = 0x1
	testParamBeta  uint64 = 0x2
)

var errUnknownParam = errors.New("mockdriver: unknown param")

// mockData is the mock driver's per-group storage.
type mockData struct {
	alpha int64
	beta  int64
}

// MockDriver is a test implementation of Driver and Remover.
type MockDriver struct {
	mu       sync.Mutex
	allocs   int
	removes  int
	allocErr error
	// updateErr, when set, fails every UpdateParam call
	updateErr error
}

func (m *MockDriver) AllocParams() (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allocErr != nil {
		return nil, m.allocErr
	}
	m.allocs++
	return &mockData{}, nil
}

func (m *MockDriver) UpdateParam(data Data, paramID uint64, value int64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	d := data.(*mockData)
	switch paramID {
	case testParamAlpha:
		d.alpha = value
	case testParamBeta:
		d.beta = value
	default:
		return errUnknownParam
	}
	return nil
}

func (m *MockDriver) ReadParam(data Data, paramID uint64) (int64, error) {
	d := data.(*mockData)
	switch paramID {
	case testParamAlpha:
		return d.alpha, nil
	case testParamBeta:
		return d.beta, nil
	default:
		return 0, errUnknownParam
	}
}

func (m *MockDriver) RemoveParams(Data) {
	m.mu.Lock()
	m.removes++
	m.mu.Unlock()
}

func (m *MockDriver) removeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removes
}

func newTestRegistry(t *testing.T) (*Registry, *MockDriver, *group.Service) {
	t.Helper()
	driver := &MockDriver{}
	groups := group.NewService()
	reg := NewRegistry("card0", driver, groups)
	t.Cleanup(reg.Shutdown)
	return reg, driver, groups
}

func TestRegistry_GetOrCreateIdentity(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "batch"})

	first, err := reg.GetOrCreate(g)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := reg.GetOrCreate(g)
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}

	if first != second {
		t.Error("GetOrCreate() returned different records for the same group")
	}
	if driver.allocs != 1 {
		t.Errorf("driver allocations = %d, want 1", driver.allocs)
	}
}

func TestRegistry_ConcurrentFirstCreate(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "contended"})

	const callers = 16
	records := make([]*Record, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			rec, err := reg.GetOrCreate(g)
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			records[i] = rec
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < callers; i++ {
		if records[i] != records[0] {
			t.Fatal("concurrent GetOrCreate() produced more than one record")
		}
	}
	if driver.allocs != 1 {
		t.Errorf("driver allocations = %d, want exactly 1", driver.allocs)
	}
}

func TestRegistry_AllocFailureLeavesNoRecord(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "oom"})

	driver.allocErr = errors.New("out of memory")
	if _, err := reg.GetOrCreate(g); !errors.Is(err, ErrAllocFailed) {
		t.Fatalf("GetOrCreate() error = %v, want ErrAllocFailed", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after failed alloc, want 0", reg.Count())
	}

	// Recovery: once allocation succeeds the record appears.
	driver.allocErr = nil
	if _, err := reg.GetOrCreate(g); err != nil {
		t.Fatalf("GetOrCreate() after recovery error = %v", err)
	}
}

func TestRegistry_SetParamRoundTrip(t *testing.T) {
	reg, _, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "rt"})

	if err := reg.SetParam(g, testParamAlpha, 42); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}

	got, err := reg.GetParam(g, testParamAlpha)
	if err != nil {
		t.Fatalf("GetParam() error = %v", err)
	}
	if got != 42 {
		t.Errorf("GetParam() = %d, want 42", got)
	}
}

func TestRegistry_SetParamFirstUpdateFailure(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "bad-first"})

	// Unknown param on a group with no record: nothing may be inserted.
	if err := reg.SetParam(g, 0x999, 1); !errors.Is(err, errUnknownParam) {
		t.Fatalf("SetParam() error = %v, want driver error", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after failed first set, want 0", reg.Count())
	}
	if driver.removeCount() != 1 {
		t.Errorf("orphaned storage freed %d times, want 1", driver.removeCount())
	}

	if _, err := reg.GetParam(g, testParamAlpha); !errors.Is(err, ErrParamNotSet) {
		t.Errorf("GetParam() error = %v, want ErrParamNotSet", err)
	}
}

func TestRegistry_GetParamNeverCreates(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "readonly"})

	if _, err := reg.GetParam(g, testParamAlpha); !errors.Is(err, ErrParamNotSet) {
		t.Fatalf("GetParam() error = %v, want ErrParamNotSet", err)
	}
	if driver.allocs != 0 {
		t.Errorf("GetParam() triggered %d allocations, want 0", driver.allocs)
	}
	if _, ok := reg.Lookup(g); ok {
		t.Error("Lookup() found a record after read-only access")
	}
}

func TestRegistry_GroupDestructionFreesOnce(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "doomed"})

	if err := reg.SetParam(g, testParamAlpha, 7); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}

	groups.Destroy(g)

	if _, ok := reg.Lookup(g); ok {
		t.Error("Lookup() found a record after group destruction")
	}
	if driver.removeCount() != 1 {
		t.Errorf("cleanup ran %d times, want exactly 1", driver.removeCount())
	}

	// Explicit removal after the broadcast already cleaned up: no-op.
	reg.Remove(g)
	if driver.removeCount() != 1 {
		t.Errorf("cleanup ran %d times after redundant Remove, want 1", driver.removeCount())
	}
}

func TestRegistry_RemoveWithoutRecordIsNoop(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "empty"})

	reg.Remove(g)
	reg.Remove(g)

	if driver.removeCount() != 0 {
		t.Errorf("cleanup ran %d times for a group with no record, want 0", driver.removeCount())
	}
}

func TestRegistry_IDReuseDoesNotAliasRecords(t *testing.T) {
	reg, _, groups := newTestRegistry(t)

	g1 := groups.Create(group.Spec{Name: "old"})
	if err := reg.SetParam(g1, testParamAlpha, 99); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}
	groups.Destroy(g1)

	g2 := groups.Create(group.Spec{Name: "new"})
	if g2.ID() != g1.ID() {
		t.Fatalf("expected id reuse, got %d and %d", g1.ID(), g2.ID())
	}

	// The new group with the recycled id must not observe the old value.
	if _, err := reg.GetParam(g2, testParamAlpha); !errors.Is(err, ErrParamNotSet) {
		t.Errorf("GetParam() on reused id error = %v, want ErrParamNotSet", err)
	}
}

func TestRegistry_ShutdownDrainsExactlyOnce(t *testing.T) {
	driver := &MockDriver{}
	groups := group.NewService()
	reg := NewRegistry("card0", driver, groups)

	var created []*group.Group
	for i := 0; i < 8; i++ {
		g := groups.Create(group.Spec{Name: "g"})
		created = append(created, g)
		if err := reg.SetParam(g, testParamAlpha, int64(i)); err != nil {
			t.Fatalf("SetParam() error = %v", err)
		}
	}

	// Race device teardown against group destruction. Every record must be
	// freed exactly once regardless of which path wins each group.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reg.Shutdown()
	}()
	for _, g := range created {
		wg.Add(1)
		go func(g *group.Group) {
			defer wg.Done()
			groups.Destroy(g)
		}(g)
	}
	wg.Wait()

	if got := driver.removeCount(); got != len(created) {
		t.Errorf("cleanup ran %d times, want exactly %d", got, len(created))
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after shutdown, want 0", reg.Count())
	}

	// Mutations after shutdown are refused.
	g := groups.Create(group.Spec{Name: "late"})
	if _, err := reg.GetOrCreate(g); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("GetOrCreate() after shutdown error = %v, want ErrRegistryClosed", err)
	}

	// Shutdown is idempotent.
	reg.Shutdown()
}

func TestRegistry_UpdateOnRemovedRecordFails(t *testing.T) {
	reg, _, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "stale"})

	rec, err := reg.GetOrCreate(g)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	groups.Destroy(g)

	if err := reg.Update(rec, testParamAlpha, 1); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Update() on removed record error = %v, want ErrInvalidReference", err)
	}
	if _, err := reg.Read(rec, testParamAlpha); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Read() on removed record error = %v, want ErrInvalidReference", err)
	}
}

func TestRegistry_ConcurrentMixedOperations(t *testing.T) {
	reg, _, groups := newTestRegistry(t)

	gs := make([]*group.Group, 4)
	for i := range gs {
		gs[i] = groups.Create(group.Spec{Name: "mixed"})
	}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g := gs[i%len(gs)]
			switch i % 3 {
			case 0:
				_ = reg.SetParam(g, testParamAlpha, int64(i))
			case 1:
				_, _ = reg.GetParam(g, testParamAlpha)
			case 2:
				if rec, ok := reg.Lookup(g); ok {
					_, _ = reg.Read(rec, testParamBeta)
				}
			}
		}(i)
	}
	wg.Wait()

	if reg.Count() > len(gs) {
		t.Errorf("Count() = %d, want at most %d", reg.Count(), len(gs))
	}
}

func TestRegistry_DestroyHook(t *testing.T) {
	reg, _, groups := newTestRegistry(t)

	type hookCall struct {
		id    uint64
		freed int
	}
	var calls []hookCall
	reg.SetDestroyHook(func(g *group.Group, recordsFreed int) {
		calls = append(calls, hookCall{g.ID(), recordsFreed})
	})

	withRecord := groups.Create(group.Spec{Name: "with"})
	without := groups.Create(group.Spec{Name: "without"})
	if err := reg.SetParam(withRecord, 0x1, 5); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}

	groups.Destroy(withRecord)
	groups.Destroy(without)

	if len(calls) != 2 {
		t.Fatalf("hook calls = %d, want 2", len(calls))
	}
	if calls[0].id != withRecord.ID() || calls[0].freed != 1 {
		t.Errorf("first call = %+v, want freed 1", calls[0])
	}
	if calls[1].id != without.ID() || calls[1].freed != 0 {
		t.Errorf("second call = %+v, want freed 0", calls[1])
	}
}

func TestRegistry_DestroyedGroupCannotGainRecord(t *testing.T) {
	reg, driver, groups := newTestRegistry(t)
	g := groups.Create(group.Spec{Name: "gone"})

	// The caller resolved its handle before the destroy won the race and
	// now arrives at the registry with a stale group pointer.
	groups.Destroy(g)

	if err := reg.SetParam(g, testParamAlpha, 7); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("SetParam() after destroy error = %v, want ErrInvalidReference", err)
	}
	if _, err := reg.GetOrCreate(g); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("GetOrCreate() after destroy error = %v, want ErrInvalidReference", err)
	}

	if _, ok := reg.Lookup(g); ok {
		t.Error("Lookup() found a record for a destroyed group")
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d, want 0", reg.Count())
	}
	if driver.allocs != 0 {
		t.Errorf("driver allocations = %d, want 0", driver.allocs)
	}

	// A new group recycling the id is unaffected.
	reused := groups.Create(group.Spec{Name: "fresh"})
	if reused.ID() != g.ID() {
		t.Fatalf("expected id reuse, got %d and %d", g.ID(), reused.ID())
	}
	if err := reg.SetParam(reused, testParamAlpha, 3); err != nil {
		t.Fatalf("SetParam() on recycled id error = %v", err)
	}
	if err := reg.SetParam(g, testParamAlpha, 9); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("SetParam() on stale pointer error = %v, want ErrInvalidReference", err)
	}
	if got, err := reg.GetParam(reused, testParamAlpha); err != nil || got != 3 {
		t.Errorf("GetParam(recycled) = %d, %v; want 3, nil", got, err)
	}
}
