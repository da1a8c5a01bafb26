package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/bytes"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

type header struct {
	component.Base
	styles   *theme.Styles
	commands *command.Bus

	active  action.ComponentID
	version api.Version
	traffic api.Traffic
	memory  api.Memory
	stat    api.ConnectionStat
}

func newHeader(deps Deps) *header {
	return &header{
		Base:     component.NewBase(action.Header),
		styles:   deps.Styles,
		commands: deps.Commands,
		active:   action.Tabs[0],
	}
}

func (h *header) Init(src api.DataSource) error {
	if err := h.Base.Init(src); err != nil {
		return err
	}
	if h.commands != nil && src != nil {
		command.Query(h.commands, "version", "Load version", src.Version, func(v api.Version) action.Action {
			return action.VersionLoaded{Version: v}
		})
	}
	return nil
}

func (h *header) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		if action.TabIndex(a.To) >= 0 {
			h.active = a.To
		}
	case action.VersionLoaded:
		h.version = a.Version
	case action.TrafficUpdate:
		h.traffic = a.Traffic
	case action.MemoryUpdate:
		h.memory = a.Memory
	case action.ConnectionStats:
		h.stat = a.Stat
	}
	return nil, nil
}

func (h *header) Draw(area component.Area) (string, error) {
	tabs := make([]string, 0, len(action.Tabs))
	for i, id := range action.Tabs {
		label := fmt.Sprintf("%d %s", i+1, id.ShortName())
		if id == h.active {
			tabs = append(tabs, h.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, h.styles.Tab.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := h.status()
	room := area.Width - lipgloss.Width(left) - 1
	if room <= 0 {
		return truncate.String(left, uint(max(area.Width, 0))), nil
	}
	status = truncate.StringWithTail(status, uint(room), "…")
	pad := area.Width - lipgloss.Width(left) - lipgloss.Width(status)
	return left + strings.Repeat(" ", max(pad, 1)) + h.styles.Header.Render(status), nil
}

func (h *header) status() string {
	parts := []string{
		"↑ " + bytes.Rate(h.traffic.Up),
		"↓ " + bytes.Rate(h.traffic.Down),
		fmt.Sprintf("conn %d", h.stat.Count),
	}
	if h.memory.InUse > 0 {
		parts = append(parts, "mem "+bytes.Size(h.memory.InUse))
	}
	if v := h.version.String(); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " · ")
}
