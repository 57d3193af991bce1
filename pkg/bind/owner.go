package bind

import (
	"fmt"
	"sync"
	"sync/atomic"

	verrors "github.com/vango-dev/vstore/internal/errors"
)

// DebugMode enables hook order validation on every render.
var DebugMode = false

// HookType identifies the type of hook call for order validation.
type HookType uint8

const (
	HookStore HookType = iota + 1
	HookSelector
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookStore:
		return "Store"
	case HookSelector:
		return "Selector"
	default:
		return "Unknown"
	}
}

var ownerIDs atomic.Uint64

// Owner is the scope of one mounted component. When an Owner is disposed,
// its children are disposed and its cleanups run, which releases every store
// subscription made through its hooks.
//
// Rendering is single-threaded per owner: StartRender, the hooks and
// EndRender must not be called concurrently for the same Owner.
type Owner struct {
	id     uint64
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	disposed atomic.Bool
	dirty    atomic.Bool
	renders  atomic.Int64

	// rerender is called when a hook's store changes. nil means the owner
	// is only marked dirty.
	rerender func()

	// Dev-mode hook order tracking (only used when DebugMode is true)
	hookOrder   []HookType
	hookIndex   int
	renderCount int

	hookSlots   []any
	hookSlotIdx int
}

// NewOwner creates an Owner below parent (nil for a root). rerender, which
// may be nil, is called whenever a subscribed store changes in a way the
// component depends on.
func NewOwner(parent *Owner, rerender func()) *Owner {
	o := &Owner{
		id:       ownerIDs.Add(1),
		parent:   parent,
		rerender: rerender,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// Renders returns the number of completed renders.
func (o *Owner) Renders() int {
	return int(o.renders.Load())
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// Children returns a copy of the child owners.
func (o *Owner) Children() []*Owner {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	return append([]*Owner(nil), o.children...)
}

// OnCleanup registers a cleanup function to run when this Owner is disposed.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		// Already disposed, run cleanup immediately
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// MarkDirty flags the owner for re-render and calls the rerender callback.
// It does nothing once the owner is disposed.
func (o *Owner) MarkDirty() {
	if o.disposed.Load() {
		return
	}
	o.dirty.Store(true)
	if o.rerender != nil {
		o.rerender()
	}
}

// TakeDirty reports whether the owner was marked dirty since the last call
// and clears the flag.
func (o *Owner) TakeDirty() bool {
	return o.dirty.Swap(false)
}

// Dispose disposes this Owner and all its children, then runs its cleanups.
// Children are disposed and cleanups run in reverse registration order.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// =============================================================================
// Render Phase
// =============================================================================

// StartRender is called at the beginning of a component render. It resets
// the hook slot index and clears the dirty flag.
func (o *Owner) StartRender() {
	o.hookSlotIdx = 0
	o.dirty.Store(false)

	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender is called at the end of a component render.
// In debug mode, it validates that all expected hooks were called.
func (o *Owner) EndRender() {
	o.renders.Add(1)

	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(hookOrderError(fmt.Sprintf("expected %d hooks, got %d", len(o.hookOrder), o.hookIndex)))
	}
}

// Render runs fn between StartRender and EndRender.
func (o *Owner) Render(fn func()) {
	o.StartRender()
	fn()
	o.EndRender()
}

// TrackHook records a hook call during render for order validation.
// In debug mode, a hook called out of order panics with an E023 error.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}

	if o.renderCount == 0 {
		o.hookOrder = append(o.hookOrder, ht)
	} else {
		if o.hookIndex >= len(o.hookOrder) {
			panic(hookOrderError(fmt.Sprintf("extra %s hook at index %d", ht, o.hookIndex)))
		}
		if expected := o.hookOrder[o.hookIndex]; expected != ht {
			panic(hookOrderError(fmt.Sprintf("index %d: expected %s, got %s", o.hookIndex, expected, ht)))
		}
	}
	o.hookIndex++
}

func hookOrderError(detail string) *verrors.Error {
	return verrors.New("E023").
		WithDetail(detail).
		WithSuggestion("Call hooks unconditionally and in the same order on every render.")
}

// =============================================================================
// Hook Slot Storage for Stable Identity
// =============================================================================

// UseHookSlot returns the stored value for the current hook slot, or nil on
// the first render, in which case the caller creates the value and stores it
// with SetHookSlot.
//
//	func UseThing(o *bind.Owner) *Thing {
//	    if slot := o.UseHookSlot(); slot != nil {
//	        return slot.(*Thing)
//	    }
//	    t := newThing()
//	    o.SetHookSlot(t)
//	    return t
//	}
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil (first render).
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}
