package bind

import "github.com/vango-dev/vstore/pkg/store"

// storeHook is the slot value of UseStore.
type storeHook struct {
	unsubscribe func()
}

// UseStore returns the current value of s and re-renders o on every
// accepted write to s. The subscription is made on the first render and
// removed when o is disposed.
func UseStore[T any](o *Owner, s *store.Store[T]) T {
	o.TrackHook(HookStore)

	if o.UseHookSlot() == nil {
		h := &storeHook{unsubscribe: s.Subscribe(func(T) { o.MarkDirty() })}
		o.OnCleanup(h.unsubscribe)
		o.SetHookSlot(h)
	}
	return s.Get()
}

// UseSelector returns conv applied to the value of s and re-renders o only
// when that result changes under the store's comparator.
//
// The selection is created on the first render and closed when o is
// disposed. conv is captured on the first render; later renders reuse it.
func UseSelector[T, R any](o *Owner, s *store.Store[T], conv func(T) R) R {
	o.TrackHook(HookSelector)

	if slot := o.UseHookSlot(); slot != nil {
		return slot.(*store.Selection[R]).Get()
	}

	sel := store.Select(s, conv, func(R) { o.MarkDirty() })
	o.OnCleanup(sel.Close)
	o.SetHookSlot(sel)
	return sel.Get()
}

// UseSelect is the former name of UseSelector.
//
// Deprecated: Use UseSelector.
func UseSelect[T, R any](o *Owner, s *store.Store[T], conv func(T) R) R {
	return UseSelector(o, s, conv)
}
