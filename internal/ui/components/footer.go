package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

// errorTicks is how long the last error stays in the footer.
const errorTicks = 20

type footer struct {
	component.Base
	styles *theme.Styles
	help   help.Model

	bindings  []key.Binding
	live      bool
	liveKnown bool
	lastErr   string
	errLeft   int
}

func newFooter(deps Deps) *footer {
	h := help.New()
	h.Styles.ShortKey = *deps.Styles.Key
	h.Styles.ShortDesc = *deps.Styles.Footer
	h.Styles.ShortSeparator = *deps.Styles.Muted
	return &footer{Base: component.NewBase(action.Footer), styles: deps.Styles, help: h}
}

func (f *footer) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.Shortcuts:
		f.bindings = a.Bindings
	case action.TabSwitch:
		f.liveKnown = false
	case action.LiveMode:
		f.live = a.On
		f.liveKnown = true
	case action.Error:
		f.lastErr = a.Title
		if a.Detail != "" {
			f.lastErr += ": " + a.Detail
		}
		f.errLeft = errorTicks
	case action.Tick:
		if f.errLeft > 0 {
			f.errLeft--
			if f.errLeft == 0 {
				f.lastErr = ""
			}
		}
	}
	return nil, nil
}

func (f *footer) Draw(area component.Area) (string, error) {
	badge := ""
	if f.liveKnown {
		if f.live {
			badge = f.styles.Live.Render("LIVE") + " "
		} else {
			badge = f.styles.Paused.Render("PAUSED") + " "
		}
	}
	room := area.Width - lipgloss.Width(badge)
	if room < 1 {
		return badge, nil
	}
	if f.lastErr != "" {
		return badge + f.styles.Error.Render(truncate.StringWithTail(f.lastErr, uint(room), "…")), nil
	}
	f.help.Width = room
	bindings := f.bindings
	if len(bindings) == 0 {
		bindings = GlobalKeys()
	}
	return badge + f.help.ShortHelpView(bindings), nil
}
