package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/data/dispatcher"
	"github.com/potoo0/mihomo-tui-sub000/internal/model"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
)

// connections is the live connections table. Paused, it keeps showing the
// last computed view while the stream keeps filling the buffer.
type connections struct {
	component.Base
	tabState
	dispatcher *dispatcher.Dispatcher
	list       *listView[*api.Connection]
}

func newConnections(deps Deps) *connections {
	d := deps.Dispatcher
	if d == nil {
		d = dispatcher.New(dispatcher.Stores{
			Connections: store.NewConnectionStore(store.ConnsBufferSize, model.ConnectionColumns()),
		}, nil)
	}
	list := newListView(d.Stores().Connections.Store, deps.Styles)
	list.rowStyle = func(c *api.Connection) *lipgloss.Style {
		if c.Inactive {
			return deps.Styles.InactiveRow
		}
		return nil
	}
	return &connections{
		Base:       component.NewBase(action.Connections),
		dispatcher: d,
		list:       list,
	}
}

func (c *connections) Shortcuts() []key.Binding {
	return append([]key.Binding{keyEnter, keyTerminate, keyTerminateAll, keyLive, keyCapture}, tableKeys...)
}

func (c *connections) live() bool {
	return c.dispatcher.Live(api.EndpointConnections)
}

func (c *connections) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if c.list.handleKey(msg) {
		return nil, nil
	}
	switch {
	case key.Matches(msg, keySearch):
		return action.Focus{ID: action.Search}, nil
	case key.Matches(msg, keyEnter):
		if conn, ok := c.list.selected(); ok {
			return action.ConnectionDetailOpen{Index: c.list.cursor.Index, Conn: conn}, nil
		}
	case key.Matches(msg, keyTerminate):
		if conn, ok := c.list.selected(); ok {
			return action.ConnectionTerminateRequest{Conn: conn}, nil
		}
	case key.Matches(msg, keyTerminateAll):
		return action.ConnectionTerminateRequest{}, nil
	case key.Matches(msg, keyLive):
		on := !c.live()
		c.dispatcher.SetLive(api.EndpointConnections, on)
		if on {
			c.list.refresh()
		}
		return action.LiveMode{On: on}, nil
	case key.Matches(msg, keyCapture):
		c.dispatcher.SetCapture(!c.dispatcher.Capture())
	}
	return nil, nil
}

func (c *connections) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		if c.switchTo(action.Connections, a) {
			if err := c.Send(action.SearchInputSet{Pattern: c.list.pattern()}); err != nil {
				return nil, err
			}
			return action.LiveMode{On: c.live()}, nil
		}
	case action.SearchInputChanged:
		if c.active {
			c.list.setPattern(a.Pattern)
		}
	case action.Tick:
		if c.live() && c.list.store.Stale() {
			c.list.refresh()
		} else {
			c.list.sync()
		}
	case action.RequestConnectionDetail:
		conn, ok := c.list.store.Get(a.Index)
		if !ok {
			return nil, nil
		}
		c.list.cursor.Index = a.Index
		return action.ConnectionDetailOpen{Index: a.Index, Conn: conn}, nil
	}
	return nil, nil
}

func (c *connections) Draw(area component.Area) (string, error) {
	title := "Connections"
	if c.dispatcher.Capture() {
		title += " (capture)"
	}
	return c.list.draw(area, title), nil
}
