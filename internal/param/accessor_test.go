package param

import (
	"testing"

	"github.com/nerrad567/devparam-core/internal/group"
)

func TestAccessor_DefaultWhenNoRecord(t *testing.T) {
	reg, _, groups := newTestRegistry(t)
	acc := NewAccessor(reg)
	g := groups.Create(group.Spec{Name: "fresh"})

	if got := acc.Read(g, testParamAlpha, 5); got != 5 {
		t.Errorf("Read() = %d, want default 5", got)
	}
	if reg.Count() != 0 {
		t.Error("accessor read created a record")
	}
}

func TestAccessor_ReturnsStoredValue(t *testing.T) {
	reg, _, groups := newTestRegistry(t)
	acc := NewAccessor(reg)
	g := groups.Create(group.Spec{Name: "configured"})

	if err := reg.SetParam(g, testParamAlpha, -12); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}

	if got := acc.Read(g, testParamAlpha, 0); got != -12 {
		t.Errorf("Read() = %d, want -12", got)
	}
}

func TestAccessor_SafeBeforeInitialisation(t *testing.T) {
	groups := group.NewService()
	g := groups.Create(group.Spec{Name: "early"})

	t.Run("nil accessor", func(t *testing.T) {
		var acc *Accessor
		if got := acc.Read(g, testParamAlpha, 3); got != 3 {
			t.Errorf("Read() = %d, want default 3", got)
		}
	})

	t.Run("nil registry", func(t *testing.T) {
		acc := NewAccessor(nil)
		if got := acc.Read(g, testParamAlpha, 3); got != 3 {
			t.Errorf("Read() = %d, want default 3", got)
		}
	})

	t.Run("nil group", func(t *testing.T) {
		reg, _, _ := newTestRegistry(t)
		acc := NewAccessor(reg)
		if got := acc.Read(nil, testParamAlpha, 3); got != 3 {
			t.Errorf("Read() = %d, want default 3", got)
		}
	})
}

func TestAccessor_UnknownParamFallsBack(t *testing.T) {
	reg, _, groups := newTestRegistry(t)
	acc := NewAccessor(reg)
	g := groups.Create(group.Spec{Name: "partial"})

	if err := reg.SetParam(g, testParamAlpha, 1); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}

	if got := acc.Read(g, 0x999, 8); got != 8 {
		t.Errorf("Read() for unknown param = %d, want default 8", got)
	}
}

func TestAccessor_DefaultAfterDestruction(t *testing.T) {
	reg, _, groups := newTestRegistry(t)
	acc := NewAccessor(reg)
	g := groups.Create(group.Spec{Name: "gone"})

	if err := reg.SetParam(g, testParamAlpha, 77); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}
	groups.Destroy(g)

	if got := acc.Read(g, testParamAlpha, 0); got != 0 {
		t.Errorf("Read() after destruction = %d, want default 0", got)
	}
}
