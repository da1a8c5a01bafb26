package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
)

// handleKeyMsg routes a key press. ctrl+c always quits; otherwise the top of
// the focus stack takes the key, or the root component followed by the
// active tab when nothing is focused.
func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.quitting {
		return nil
	}
	if keyMsg.Type == tea.KeyCtrlC {
		m.send(action.Quit{})
		return nil
	}
	if top, ok := m.top(); ok {
		if c, ok := m.registry.Get(top); ok {
			m.forwardKey(c, keyMsg)
		}
		return nil
	}
	if root, ok := m.registry.Get(action.Root); ok {
		if m.forwardKey(root, keyMsg) {
			return nil
		}
	}
	if c, ok := m.registry.Get(m.active); ok {
		m.forwardKey(c, keyMsg)
	}
	return nil
}

// forwardKey hands msg to c and queues its result. It reports whether c
// produced an action.
func (m *Model) forwardKey(c component.Component, msg tea.KeyMsg) bool {
	a, err := c.HandleKeyEvent(msg)
	if err != nil {
		m.fail(c.ID().String(), err)
		return true
	}
	m.send(a)
	return a != nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	events.UI.Resize(size.Width, size.Height)
	m.send(action.Resize{Width: size.Width, Height: size.Height})
	return nil
}
