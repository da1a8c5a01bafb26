package components

import (
	"encoding/json"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

// connectionDetail shows one connection as indented JSON.
type connectionDetail struct {
	component.Base
	styles    *theme.Styles
	clipboard func(string) error

	index  int
	conn   *api.Connection
	body   string
	notice string
	vp     viewport.Model
}

func newConnectionDetail(deps Deps) *connectionDetail {
	return &connectionDetail{
		Base:      component.NewBase(action.ConnectionDetail),
		styles:    deps.Styles,
		clipboard: deps.Clipboard,
		vp:        viewport.New(0, 0),
	}
}

func (d *connectionDetail) Shortcuts() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyNext, keyPrev, keyCopy, keyTerminate, keyClose}
}

func (d *connectionDetail) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyClose):
		return action.Unfocus{}, nil
	case key.Matches(msg, keyCopy):
		if err := d.clipboard(d.body); err != nil {
			return action.NewError("Copy connection", err), nil
		}
		d.notice = "copied to clipboard"
	case key.Matches(msg, keyNext):
		return action.RequestConnectionDetail{Index: d.index + 1}, nil
	case key.Matches(msg, keyPrev):
		if d.index > 0 {
			return action.RequestConnectionDetail{Index: d.index - 1}, nil
		}
	case key.Matches(msg, keyTerminate):
		if d.conn != nil {
			return action.ConnectionTerminateRequest{Conn: d.conn}, nil
		}
	default:
		d.vp, _ = d.vp.Update(msg)
	}
	return nil, nil
}

func (d *connectionDetail) Update(a action.Action) (action.Action, error) {
	open, ok := a.(action.ConnectionDetailOpen)
	if !ok || open.Conn == nil {
		return nil, nil
	}
	body, err := json.MarshalIndent(open.Conn, "", "  ")
	if err != nil {
		return nil, err
	}
	d.index = open.Index
	d.conn = open.Conn
	d.body = string(body)
	d.notice = ""
	d.vp.SetContent(d.body)
	d.vp.GotoTop()
	return nil, nil
}

func (d *connectionDetail) Draw(area component.Area) (string, error) {
	w, h := popupSize(area)
	d.vp.Width = w
	d.vp.Height = max(h-2, 1)
	title := "Connection"
	if d.conn != nil {
		title += " " + d.conn.HostPort()
	}
	body := d.vp.View()
	if d.notice != "" {
		body += "\n" + d.styles.Muted.Render(d.notice)
	}
	return renderPopup(d.styles.Popup, d.styles.Title, title, body, w, h), nil
}
