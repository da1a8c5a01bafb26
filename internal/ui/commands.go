package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/bus"
)

// busReadyMsg reports that the bus may hold actions.
type busReadyMsg struct{}

// busClosedMsg reports that the bus will not signal again.
type busClosedMsg struct{}

type tickMsg struct{}

type frameMsg struct{}

func waitForActions(b *bus.Bus) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-b.Ready(); !ok {
			return busClosedMsg{}
		}
		return busReadyMsg{}
	}
}

func tickAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{} })
}

func frameAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return frameMsg{} })
}

// handleBusReadyMsg only re-arms the waiter; Update drains after every
// handler.
func (m *Model) handleBusReadyMsg(tea.Msg) tea.Cmd {
	if m.quitting || m.bus.Closed() {
		return nil
	}
	return waitForActions(m.bus)
}

func (m *Model) handleBusClosedMsg(tea.Msg) tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quit()
	return tea.Quit
}

func (m *Model) handleTickMsg(tea.Msg) tea.Cmd {
	if m.quitting {
		return nil
	}
	m.send(action.Tick{})
	return tickAfter(m.tickEvery)
}

func (m *Model) handleFrameMsg(tea.Msg) tea.Cmd {
	if m.quitting {
		return nil
	}
	m.send(action.Render{})
	return frameAfter(m.frameEvery)
}

func (m *Model) handleResumeMsg(tea.Msg) tea.Cmd {
	m.send(action.Resume{})
	m.send(action.ClearScreen{})
	return nil
}
