package ui

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/bus"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

const (
	defaultTickRate  = 4.0
	defaultFrameRate = 30.0
)

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	// TickRate and FrameRate are in hertz.
	TickRate  float64
	FrameRate float64
	// Width and Height seed the layout before the first resize.
	Width  int
	Height int
	// Cancel is called once when the program quits.
	Cancel context.CancelFunc
	Styles *theme.Styles
}

// Model implements the Bubble Tea model for the dashboard.
type Model struct {
	bus      *bus.Bus
	registry *component.Registry
	styles   *theme.Styles
	cancel   context.CancelFunc

	active action.ComponentID
	focus  []action.ComponentID

	width    int
	height   int
	frame    string
	drawErr  string
	quitting bool

	tickEvery  time.Duration
	frameEvery time.Duration

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the root model. The registry must send to b.
func NewModel(b *bus.Bus, registry *component.Registry, opts Options) *Model {
	if opts.TickRate <= 0 {
		opts.TickRate = defaultTickRate
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = defaultFrameRate
	}
	if opts.Styles == nil {
		opts.Styles = theme.Default()
	}
	m := &Model{
		bus:        b,
		registry:   registry,
		styles:     opts.Styles,
		cancel:     opts.Cancel,
		active:     action.Overview,
		width:      opts.Width,
		height:     opts.Height,
		tickEvery:  rateToInterval(opts.TickRate),
		frameEvery: rateToInterval(opts.FrameRate),
	}
	for _, id := range []action.ComponentID{action.Root, action.Header, action.Footer, action.Search} {
		m.ensure(id)
	}
	m.registerHandlers()
	return m
}

func rateToInterval(hz float64) time.Duration {
	return time.Duration(float64(time.Second) / hz)
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	m.start()
	return tea.Batch(
		waitForActions(m.bus),
		tickAfter(m.tickEvery),
		frameAfter(m.frameEvery),
	)
}

// start queues the initial tab.
func (m *Model) start() {
	m.send(action.TabSwitch{To: action.Overview})
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 2)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, m.drain()...)
	return m, finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tea.ResumeMsg{}):     m.handleResumeMsg,
		reflect.TypeOf(busReadyMsg{}):       m.handleBusReadyMsg,
		reflect.TypeOf(busClosedMsg{}):      m.handleBusClosedMsg,
		reflect.TypeOf(tickMsg{}):           m.handleTickMsg,
		reflect.TypeOf(frameMsg{}):          m.handleFrameMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func finishUpdate(cmds []tea.Cmd) tea.Cmd {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

// drain dispatches queued actions until the bus is empty, including the ones
// produced while dispatching.
func (m *Model) drain() []tea.Cmd {
	var cmds []tea.Cmd
	traced := 0
	for !m.quitting {
		a, ok := m.bus.TryRecv()
		if !ok {
			break
		}
		if !action.Periodic(a) {
			events.Action.Dispatch(action.Name(a))
			traced++
		}
		if cmd := m.dispatch(a); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if traced > 0 {
		events.Action.Drained(traced)
	}
	return cmds
}

func (m *Model) dispatch(a action.Action) tea.Cmd {
	cmd := m.apply(a)
	if m.quitting {
		return cmd
	}
	m.broadcast(a)
	switch a.(type) {
	case action.Render, action.Resize:
		m.redraw()
	}
	return cmd
}

// apply performs the effects the model owns before components see a.
func (m *Model) apply(a action.Action) tea.Cmd {
	switch a := a.(type) {
	case action.Quit:
		m.quit()
		return tea.Quit
	case action.Suspend:
		return tea.Suspend
	case action.ClearScreen:
		return tea.ClearScreen
	case action.Resize:
		m.width, m.height = a.Width, a.Height
	case action.TabSwitch:
		m.switchTab(a.To)
	case action.Focus:
		m.pushFocus(a.ID)
	case action.Unfocus:
		m.popFocus()
	case action.ToggleHelp:
		if top, ok := m.top(); ok && top == action.Help {
			m.popFocus()
		} else {
			m.pushFocus(action.Help)
		}
	case action.ConnectionDetailOpen:
		m.pushFocus(action.ConnectionDetail)
	case action.ConnectionTerminateRequest:
		m.pushFocus(action.ConnectionTerminate)
	case action.ProxyDetailOpen:
		m.pushFocus(action.ProxyDetail)
	case action.ProxySettingOpen:
		m.pushFocus(action.ProxySetting)
	case action.ProxyProviderDetailOpen:
		m.pushFocus(action.ProxyProviderDetail)
	case action.Error:
		events.Action.Error(a.Title, errorDetail(a))
		m.pushFocus(action.ErrorOverlay)
	}
	return nil
}

func (m *Model) broadcast(a action.Action) {
	_ = m.registry.Each(func(c component.Component) error {
		next, err := c.Update(a)
		if err != nil {
			m.fail(c.ID().String(), err)
		}
		m.send(next)
		return nil
	})
}

func (m *Model) quit() {
	if m.quitting {
		return
	}
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	m.bus.Close()
}

func (m *Model) send(a action.Action) {
	if a == nil {
		return
	}
	if err := m.bus.Send(a); err != nil {
		logging.Debugf("ui: drop %s: %v", action.Name(a), err)
	}
}

// fail reports err through the error overlay.
func (m *Model) fail(title string, err error) {
	if err == nil {
		return
	}
	m.send(action.NewError(title, err))
}

func (m *Model) ensure(id action.ComponentID) (component.Component, bool) {
	c, err := m.registry.Ensure(id)
	if err != nil {
		logging.Error(err)
		if id != action.ErrorOverlay {
			m.fail(id.String(), err)
		}
		return nil, false
	}
	return c, true
}

func (m *Model) switchTab(to action.ComponentID) {
	if action.TabIndex(to) < 0 {
		return
	}
	if _, ok := m.ensure(to); !ok {
		return
	}
	if to != m.active {
		events.UI.TabSwitch(m.active.String(), to.String())
	}
	m.active = to
	m.announce()
}

// pushFocus puts id on top of the focus stack, moving it there when it is
// already present.
func (m *Model) pushFocus(id action.ComponentID) {
	if _, ok := m.ensure(id); !ok {
		return
	}
	for i, existing := range m.focus {
		if existing == id {
			m.focus = append(m.focus[:i], m.focus[i+1:]...)
			break
		}
	}
	m.focus = append(m.focus, id)
	events.UI.Focus(id.String(), len(m.focus))
	m.announce()
}

func (m *Model) popFocus() {
	top, ok := m.top()
	if !ok {
		return
	}
	m.focus = m.focus[:len(m.focus)-1]
	events.UI.Unfocus(top.String(), len(m.focus))
	if next, ok := m.top(); ok {
		m.send(action.Focus{ID: next})
	}
	m.announce()
}

func (m *Model) top() (action.ComponentID, bool) {
	if len(m.focus) == 0 {
		return 0, false
	}
	return m.focus[len(m.focus)-1], true
}

// announce publishes the bindings of whatever receives keys now. The help
// popup keeps describing the component underneath it.
func (m *Model) announce() {
	target := m.active
	if top, ok := m.top(); ok {
		target = top
	}
	if target == action.Help {
		return
	}
	m.send(action.Shortcuts{Bindings: shortcutsOf(m.registry, target)})
}

func shortcutsOf(r *component.Registry, id action.ComponentID) []key.Binding {
	c, ok := r.Get(id)
	if !ok {
		return nil
	}
	if s, ok := c.(component.Shortcutter); ok {
		return s.Shortcuts()
	}
	return nil
}

func errorDetail(e action.Error) error {
	if e.Detail == "" {
		return nil
	}
	return errors.New(e.Detail)
}

// Active reports the tab on screen.
func (m *Model) Active() action.ComponentID {
	return m.active
}

// FocusStack returns a copy of the focus stack, bottom first.
func (m *Model) FocusStack() []action.ComponentID {
	return append([]action.ComponentID(nil), m.focus...)
}
