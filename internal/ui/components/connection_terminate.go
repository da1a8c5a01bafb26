package components

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

// connectionTerminate asks before closing one connection or all of them.
type connectionTerminate struct {
	component.Base
	styles   *theme.Styles
	commands *command.Bus
	conn     *api.Connection
}

func newConnectionTerminate(deps Deps) *connectionTerminate {
	return &connectionTerminate{
		Base:     component.NewBase(action.ConnectionTerminate),
		styles:   deps.Styles,
		commands: deps.Commands,
	}
}

func (t *connectionTerminate) Shortcuts() []key.Binding {
	return []key.Binding{keyConfirm, keyCancel}
}

func (t *connectionTerminate) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyConfirm):
		t.terminate()
		return action.Unfocus{}, nil
	case key.Matches(msg, keyCancel):
		return action.Unfocus{}, nil
	}
	return nil, nil
}

func (t *connectionTerminate) terminate() {
	src := t.Source
	if src == nil {
		return
	}
	if t.conn == nil {
		mutation(t.commands, "connections:close-all", "Close all connections", src.CloseAllConnections, nil)
		return
	}
	id := t.conn.ID
	mutation(t.commands, "connections:close", "Close connection", func(ctx context.Context) error {
		return src.DeleteConnection(ctx, id)
	}, nil)
}

func (t *connectionTerminate) Update(a action.Action) (action.Action, error) {
	if req, ok := a.(action.ConnectionTerminateRequest); ok {
		t.conn = req.Conn
	}
	return nil, nil
}

func (t *connectionTerminate) Draw(area component.Area) (string, error) {
	w, h := popupSize(component.Area{Width: min(area.Width, 70), Height: min(area.Height, 8)})
	question := "Close all connections?"
	if t.conn != nil {
		question = "Close connection to " + t.conn.HostPort() + "?"
	}
	body := question + "\n\n" + t.styles.Key.Render("y") + " confirm   " + t.styles.Key.Render("n") + " cancel"
	return renderPopup(t.styles.Popup, t.styles.Title, "Terminate", body, w, h), nil
}
