package components

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

// tabState tracks whether a tab is the one on screen.
type tabState struct {
	active bool
}

// switchTo applies a TabSwitch and reports whether self just became active.
func (t *tabState) switchTo(self action.ComponentID, a action.TabSwitch) bool {
	was := t.active
	t.active = a.To == self
	return t.active && !was
}

// searchable reports whether the search bar filters id.
func searchable(id action.ComponentID) bool {
	switch id {
	case action.Connections, action.Logs, action.Rules, action.RuleProviders:
		return true
	default:
		return false
	}
}

// throbber cycles spinner frames on every tick while something loads.
type throbber struct {
	frame   int
	loading bool
}

func (t *throbber) start() { t.loading = true }
func (t *throbber) stop()  { t.loading = false }

func (t *throbber) tick() {
	if t.loading {
		t.frame++
	}
}

func (t throbber) view() string {
	if !t.loading {
		return ""
	}
	frames := spinner.MiniDot.Frames
	return " " + frames[t.frame%len(frames)]
}

// popupSize returns the inner size of a popup drawn over area.
func popupSize(area component.Area) (int, int) {
	w := area.Width * 4 / 5
	if w > 120 {
		w = 120
	}
	if w < 20 {
		w = area.Width
	}
	h := area.Height * 4 / 5
	if h < 5 {
		h = area.Height
	}
	// border and horizontal padding
	return max(w-4, 1), max(h-2, 1)
}

// renderPopup frames body with a title. Lines beyond height are dropped.
func renderPopup(style, titleStyle *lipgloss.Style, title, body string, width, height int) string {
	lines := strings.Split(body, "\n")
	if len(lines) > height-1 {
		lines = lines[:max(height-1, 0)]
	}
	content := titleStyle.Render(title)
	if len(lines) > 0 {
		content += "\n" + strings.Join(lines, "\n")
	}
	return style.Width(width + 2).Render(content)
}

// mutation runs fn through the command bus and sends then on success.
func mutation(bus *command.Bus, id, label string, fn func(ctx context.Context) error, then action.Action) {
	if bus == nil {
		return
	}
	bus.Execute(command.Request{ID: id, Label: label, Run: fn, Then: then})
}
