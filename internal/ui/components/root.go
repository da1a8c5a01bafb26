package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
)

// root owns the global key map. It receives keys only while no popup or the
// search bar holds focus.
type root struct {
	component.Base
	active action.ComponentID
}

func newRoot(Deps) *root {
	return &root{Base: component.NewBase(action.Root), active: action.Tabs[0]}
}

// GlobalKeys lists the bindings handled by the root component.
func GlobalKeys() []key.Binding {
	return []key.Binding{keyTab, keyNextTab, keyPrevTab, keyHelp, keySuspend, keyQuit}
}

func (r *root) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyQuit):
		return action.Quit{}, nil
	case key.Matches(msg, keyHelp):
		return action.ToggleHelp{}, nil
	case key.Matches(msg, keySuspend):
		return action.Suspend{}, nil
	case key.Matches(msg, keyNextTab):
		return action.TabSwitch{To: r.offset(1)}, nil
	case key.Matches(msg, keyPrevTab):
		return action.TabSwitch{To: r.offset(-1)}, nil
	case key.Matches(msg, keyTab) && len(msg.Runes) == 1:
		n := int(msg.Runes[0] - '1')
		if n >= 0 && n < len(action.Tabs) {
			return action.TabSwitch{To: action.Tabs[n]}, nil
		}
	}
	return nil, nil
}

func (r *root) offset(delta int) action.ComponentID {
	i := action.TabIndex(r.active)
	if i < 0 {
		i = 0
	}
	n := len(action.Tabs)
	return action.Tabs[((i+delta)%n+n)%n]
}

func (r *root) Update(a action.Action) (action.Action, error) {
	if sw, ok := a.(action.TabSwitch); ok && action.TabIndex(sw.To) >= 0 {
		r.active = sw.To
	}
	return nil, nil
}

func (r *root) Draw(component.Area) (string, error) {
	return "", nil
}
