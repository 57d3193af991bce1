package bind

import "sync"

// View renders a component. It calls hooks on o and returns the
// component's output. A view must not write to stores.
type View func(o *Owner) string

// RenderFunc observes completed renders.
type RenderFunc func(c *Component)

// Component is a mounted View. It renders once on Mount and again,
// synchronously, every time one of its hooks marks its owner dirty.
// Components do not re-render their children; each one reacts to its own
// hooks only.
type Component struct {
	name     string
	owner    *Owner
	view     View
	onRender RenderFunc

	mu  sync.Mutex
	out string
}

// Mount creates a component below parent (nil for a root) and renders it.
// onRender may be nil.
func Mount(parent *Owner, name string, view View, onRender RenderFunc) *Component {
	c := &Component{
		name:     name,
		view:     view,
		onRender: onRender,
	}
	c.owner = NewOwner(parent, c.refresh)
	c.render()
	return c
}

// refresh renders the component if a hook marked it dirty since the last
// render started. Marks that arrive before a render starts share it.
func (c *Component) refresh() {
	if c.owner.TakeDirty() {
		c.render()
	}
}

func (c *Component) render() {
	c.mu.Lock()
	c.owner.Render(func() {
		c.out = c.view(c.owner)
	})
	c.mu.Unlock()

	if c.onRender != nil {
		c.onRender(c)
	}
}

// Name returns the name given to Mount.
func (c *Component) Name() string { return c.name }

// Owner returns the component's owner, for mounting children.
func (c *Component) Owner() *Owner { return c.owner }

// Output returns the result of the last render.
func (c *Component) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out
}

// Renders returns the number of completed renders.
func (c *Component) Renders() int { return c.owner.Renders() }

// Unmount disposes the component and its children, releasing every
// subscription made by their hooks.
func (c *Component) Unmount() { c.owner.Dispose() }
