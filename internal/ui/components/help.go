package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

// helpPopup lists the global keys next to the bindings of the active view.
type helpPopup struct {
	component.Base
	styles   *theme.Styles
	help     help.Model
	bindings []key.Binding
}

func newHelp(deps Deps) *helpPopup {
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = *deps.Styles.Key
	h.Styles.FullDesc = *deps.Styles.Info
	return &helpPopup{Base: component.NewBase(action.Help), styles: deps.Styles, help: h}
}

func (h *helpPopup) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if key.Matches(msg, keyClose) || key.Matches(msg, keyHelp) {
		return action.Unfocus{}, nil
	}
	return nil, nil
}

func (h *helpPopup) Update(a action.Action) (action.Action, error) {
	if s, ok := a.(action.Shortcuts); ok {
		h.bindings = s.Bindings
	}
	return nil, nil
}

func (h *helpPopup) Draw(area component.Area) (string, error) {
	w, ht := popupSize(area)
	h.help.Width = w
	groups := [][]key.Binding{GlobalKeys()}
	if len(h.bindings) > 0 {
		groups = append(groups, h.bindings)
	}
	body := h.help.FullHelpView(groups)
	return renderPopup(h.styles.Popup, h.styles.Title, "Help", body, w, ht), nil
}
