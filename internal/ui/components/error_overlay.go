package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

// maxErrors bounds the overlay history.
const maxErrors = 10

var keyDismiss = binding("esc", "dismiss", "esc", "enter", "q")

type errorOverlay struct {
	component.Base
	styles *theme.Styles
	errs   []action.Error
}

func newErrorOverlay(deps Deps) *errorOverlay {
	return &errorOverlay{Base: component.NewBase(action.ErrorOverlay), styles: deps.Styles}
}

func (e *errorOverlay) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if key.Matches(msg, keyDismiss) {
		e.errs = nil
		return action.Unfocus{}, nil
	}
	return nil, nil
}

func (e *errorOverlay) Update(a action.Action) (action.Action, error) {
	if err, ok := a.(action.Error); ok {
		e.errs = append(e.errs, err)
		if len(e.errs) > maxErrors {
			e.errs = e.errs[len(e.errs)-maxErrors:]
		}
	}
	return nil, nil
}

func (e *errorOverlay) Draw(area component.Area) (string, error) {
	w, h := popupSize(area)
	var b strings.Builder
	for i := len(e.errs) - 1; i >= 0; i-- {
		err := e.errs[i]
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(e.styles.Error.Render(err.Title))
		if err.Detail != "" {
			b.WriteString("\n")
			b.WriteString(wordwrap.String(err.Detail, w))
		}
	}
	return renderPopup(e.styles.ErrorPopup, e.styles.Title, "Error", b.String(), w, h), nil
}
