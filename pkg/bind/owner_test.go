package bind

import (
	"testing"

	verrors "github.com/vango-dev/vstore/internal/errors"
)

func TestOwnerHierarchy(t *testing.T) {
	root := NewOwner(nil, nil)
	child := NewOwner(root, nil)
	grandchild := NewOwner(child, nil)

	if child.Parent() != root {
		t.Error("child.Parent() should be root")
	}
	if len(root.Children()) != 1 {
		t.Errorf("root has %d children, want 1", len(root.Children()))
	}
	if root.ID() == child.ID() {
		t.Error("owners should have distinct IDs")
	}

	var order []string
	root.OnCleanup(func() { order = append(order, "root") })
	child.OnCleanup(func() { order = append(order, "child") })
	grandchild.OnCleanup(func() { order = append(order, "grandchild") })

	root.Dispose()

	want := []string{"grandchild", "child", "root"}
	if len(order) != len(want) {
		t.Fatalf("cleanup order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("cleanup order = %v, want %v", order, want)
			break
		}
	}
	if !grandchild.IsDisposed() {
		t.Error("grandchild should be disposed")
	}
}

func TestOwnerDisposeRemovesFromParent(t *testing.T) {
	root := NewOwner(nil, nil)
	child := NewOwner(root, nil)

	child.Dispose()
	child.Dispose()

	if len(root.Children()) != 0 {
		t.Errorf("root has %d children after child disposal, want 0", len(root.Children()))
	}
}

func TestOnCleanupAfterDispose(t *testing.T) {
	o := NewOwner(nil, nil)
	o.Dispose()

	ran := false
	o.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after Dispose should run immediately")
	}
}

func TestMarkDirty(t *testing.T) {
	rerenders := 0
	o := NewOwner(nil, func() { rerenders++ })

	o.MarkDirty()
	if !o.TakeDirty() {
		t.Error("TakeDirty() = false after MarkDirty")
	}
	if o.TakeDirty() {
		t.Error("TakeDirty() should clear the flag")
	}
	if rerenders != 1 {
		t.Errorf("rerenders = %d, want 1", rerenders)
	}

	o.Dispose()
	o.MarkDirty()
	if rerenders != 1 {
		t.Error("disposed owner should not rerender")
	}
}

func TestHookSlots(t *testing.T) {
	o := NewOwner(nil, nil)

	o.StartRender()
	if o.UseHookSlot() != nil {
		t.Error("first render should have no slot")
	}
	o.SetHookSlot("a")
	o.EndRender()

	o.StartRender()
	if got := o.UseHookSlot(); got != "a" {
		t.Errorf("UseHookSlot() = %v, want a", got)
	}
	o.EndRender()

	if o.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", o.Renders())
	}
}

func TestHookOrderValidation(t *testing.T) {
	DebugMode = true
	defer func() { DebugMode = false }()

	tests := []struct {
		name   string
		second []HookType
	}{
		{"different hook", []HookType{HookSelector}},
		{"extra hook", []HookType{HookStore, HookStore}},
		{"missing hook", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOwner(nil, nil)
			o.Render(func() { o.TrackHook(HookStore) })

			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Fatalf("recovered %v, want an error", r)
				}
				if verrors.Code(err) != "E023" {
					t.Errorf("Code = %q, want E023", verrors.Code(err))
				}
			}()
			o.Render(func() {
				for _, h := range tt.second {
					o.TrackHook(h)
				}
			})
		})
	}
}

func TestHookTypeString(t *testing.T) {
	tests := []struct {
		h    HookType
		want string
	}{
		{HookStore, "Store"},
		{HookSelector, "Selector"},
		{HookType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
