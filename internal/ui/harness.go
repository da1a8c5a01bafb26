package ui

import tea "github.com/charmbracelet/bubbletea"

// Harness drives the UI model programmatically for integration tests. Timer
// and bus waiting commands are never executed; Drain stands in for a bus
// wake-up.
type Harness struct {
	model *Model
	cmds  []tea.Cmd
}

// NewHarness creates a harness for the provided model and queues the initial
// tab.
func NewHarness(model *Model) *Harness {
	h := &Harness{model: model}
	if model != nil {
		model.start()
		h.Drain()
	}
	return h
}

// Send routes a message through the model and keeps the returned command.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	_, cmd := h.model.Update(msg)
	if cmd != nil {
		h.cmds = append(h.cmds, cmd)
	}
}

// Drain processes everything queued on the bus.
func (h *Harness) Drain() {
	h.Send(busReadyMsg{})
}

// Key sends a key press described the way tea.KeyMsg.String prints it.
func (h *Harness) Key(s string) {
	h.Send(keyMsg(s))
}

// Render dispatches a frame.
func (h *Harness) Render() string {
	h.Send(frameMsg{})
	return h.View()
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
