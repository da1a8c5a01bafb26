// Package component defines the contract between the root dispatcher and the
// widgets it hosts.
package component

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
)

// ErrUnknownID is returned for identities outside the closed set.
var ErrUnknownID = errors.New("unknown component id")

// Area is the cell size a component may draw into.
type Area struct {
	Width  int
	Height int
}

// Component is a stateful widget owned by the UI loop. Only the UI loop calls
// these methods, so implementations need no internal locking for their own
// fields.
type Component interface {
	ID() action.ComponentID
	// Init runs once when the component becomes live.
	Init(src api.DataSource) error
	RegisterActionHandler(sender action.Sender) error
	HandleKeyEvent(msg tea.KeyMsg) (action.Action, error)
	// Update is called for every dispatched action.
	Update(a action.Action) (action.Action, error)
	// Draw renders the current state. It performs no I/O.
	Draw(area Area) (string, error)
}

// Shortcutter is implemented by components that advertise key bindings in
// the footer and help popup.
type Shortcutter interface {
	Shortcuts() []key.Binding
}

// Closer is implemented by components holding background resources.
type Closer interface {
	Close()
}

// Base provides no-op defaults and stores the sender and data source.
type Base struct {
	id     action.ComponentID
	Sender action.Sender
	Source api.DataSource
}

// NewBase returns a Base for id.
func NewBase(id action.ComponentID) Base {
	return Base{id: id}
}

func (b *Base) ID() action.ComponentID { return b.id }

func (b *Base) Init(src api.DataSource) error {
	b.Source = src
	return nil
}

func (b *Base) RegisterActionHandler(sender action.Sender) error {
	b.Sender = sender
	return nil
}

func (b *Base) HandleKeyEvent(tea.KeyMsg) (action.Action, error) { return nil, nil }

func (b *Base) Update(action.Action) (action.Action, error) { return nil, nil }

// Send enqueues a, ignoring a nil sender.
func (b *Base) Send(a action.Action) error {
	if b.Sender == nil || a == nil {
		return nil
	}
	return b.Sender.Send(a)
}
