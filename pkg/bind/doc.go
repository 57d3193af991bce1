// Package bind connects stores to a component lifecycle.
//
// An Owner is the scope of one mounted component. Hooks called during a
// render store their state in the owner's hook slots, so the same call site
// gets the same subscription on every render. Disposing the owner (unmount)
// runs its cleanups, which removes every subscription the hooks created.
//
//	owner := bind.NewOwner(nil, func() { scheduleRender(c) })
//
//	func (c *Counter) Render(o *bind.Owner) string {
//	    o.StartRender()
//	    defer o.EndRender()
//	    doubled := bind.UseSelector(o, count, func(n int) int { return n * 2 })
//	    return fmt.Sprint(doubled)
//	}
//
// UseStore re-renders the owner on every accepted write to the store.
// UseSelector re-renders it only when the selected value changes.
package bind
