package component

import (
	"fmt"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
)

// Factory builds the component for id. It must handle every valid id.
type Factory func(id action.ComponentID) Component

// Registry holds at most one live component per identity, created lazily.
type Registry struct {
	factory Factory
	src     api.DataSource
	sender  action.Sender
	live    []Component
}

// NewRegistry returns an empty registry.
func NewRegistry(factory Factory, src api.DataSource, sender action.Sender) *Registry {
	return &Registry{
		factory: factory,
		src:     src,
		sender:  sender,
		live:    make([]Component, len(action.AllComponents())),
	}
}

// Ensure returns the live component for id, creating and initialising it on
// first use.
func (r *Registry) Ensure(id action.ComponentID) (Component, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, int(id))
	}
	if c := r.live[id]; c != nil {
		return c, nil
	}
	c := r.factory(id)
	if c == nil || c.ID() != id {
		panic(fmt.Sprintf("component factory returned wrong component for %s", id))
	}
	if err := c.RegisterActionHandler(r.sender); err != nil {
		return nil, fmt.Errorf("register %s: %w", id, err)
	}
	if err := c.Init(r.src); err != nil {
		return nil, fmt.Errorf("init %s: %w", id, err)
	}
	r.live[id] = c
	events.UI.ComponentCreated(id.String())
	return c, nil
}

// Get returns the live component for id.
func (r *Registry) Get(id action.ComponentID) (Component, bool) {
	if !id.Valid() {
		return nil, false
	}
	c := r.live[id]
	return c, c != nil
}

// Each calls fn for every live component in ComponentID order. Components
// created by fn are not visited in the same pass.
func (r *Registry) Each(fn func(Component) error) error {
	snapshot := append([]Component(nil), r.live...)
	for _, c := range snapshot {
		if c == nil {
			continue
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// Live lists the identities of live components.
func (r *Registry) Live() []action.ComponentID {
	var out []action.ComponentID
	for id, c := range r.live {
		if c != nil {
			out = append(out, action.ComponentID(id))
		}
	}
	return out
}

// Close releases every live component.
func (r *Registry) Close() {
	for id, c := range r.live {
		if closer, ok := c.(Closer); ok {
			closer.Close()
		}
		r.live[id] = nil
	}
}
