package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/bytes"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/table"
	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/state"
)

// proxyProviderDetail shows the members of one provider. It follows new
// provider snapshots by name.
type proxyProviderDetail struct {
	component.Base
	styles    *theme.Styles
	commands  *command.Bus
	providers *store.Value[[]proxy.ProviderView]

	gen    uint64
	view   *proxy.ProviderView
	cursor state.Cursor
	page   int
}

func newProxyProviderDetail(deps Deps) *proxyProviderDetail {
	return &proxyProviderDetail{
		Base:      component.NewBase(action.ProxyProviderDetail),
		styles:    deps.Styles,
		commands:  deps.Commands,
		providers: deps.Providers,
	}
}

func (d *proxyProviderDetail) Shortcuts() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyHealthCheck, keyUpdate, keyClose}
}

func (d *proxyProviderDetail) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyClose):
		return action.Unfocus{}, nil
	case key.Matches(msg, keyUp):
		d.cursor.MoveCursorUp()
	case key.Matches(msg, keyDown):
		d.cursor.MoveCursorDown()
	case key.Matches(msg, keyPageUp):
		d.cursor.MoveCursorPageUp(d.page)
	case key.Matches(msg, keyPageDown):
		d.cursor.MoveCursorPageDown(d.page)
	case key.Matches(msg, keyHealthCheck):
		if d.view != nil {
			providerHealthCheck(d.commands, d.Source, d.view.Provider.Name)
		}
	case key.Matches(msg, keyUpdate):
		if d.view != nil && d.view.Provider.Updatable() {
			providerUpdate(d.commands, d.Source, d.view.Provider.Name)
		}
	}
	return nil, nil
}

func (d *proxyProviderDetail) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.ProxyProviderDetailOpen:
		if a.Provider != nil {
			d.view = a.Provider
			d.gen = d.providers.Generation()
			d.cursor = state.Cursor{}
			d.cursor.SetTotal(len(a.Provider.Children))
		}
	case action.Render, action.Tick:
		d.follow()
	}
	return nil, nil
}

// follow swaps in the provider of the same name from a newer snapshot.
func (d *proxyProviderDetail) follow() {
	if d.view == nil || d.providers.Generation() == d.gen {
		return
	}
	d.gen = d.providers.Generation()
	views, _ := d.providers.Get()
	for i := range views {
		if views[i].Provider.Name == d.view.Provider.Name {
			v := views[i]
			d.view = &v
			d.cursor.SetTotal(len(v.Children))
			return
		}
	}
}

func (d *proxyProviderDetail) Draw(area component.Area) (string, error) {
	w, h := popupSize(area)
	if d.view == nil {
		return renderPopup(d.styles.Popup, d.styles.Title, "Provider", "", w, h), nil
	}
	v := d.view
	var b strings.Builder
	info := fmt.Sprintf("%s · updated %s", v.Provider.VehicleType, bytes.Ago(v.Provider.UpdatedAt))
	if v.HasUsage() {
		info += " · " + usageText(*v) + " · expires " + expireText(v.Provider.SubscriptionInfo)
	}
	b.WriteString(d.styles.Muted.Render(info))

	visible := max(h-4, 1)
	d.page = visible
	d.cursor.EnsureCursorVisible(visible)
	rows := [][]string{{"Name", "Type", "Delay"}}
	end := min(d.cursor.ViewportOffset+visible, len(v.Children))
	for _, c := range v.Children[d.cursor.ViewportOffset:end] {
		rows = append(rows, []string{c.Name, c.Type, d.styles.Quality(c.Quality).Render(c.Latency.String())})
	}
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight}, w)
	b.WriteString("\n")
	b.WriteString(d.styles.TableHeader.Render(lines[0]))
	for i, line := range lines[1:] {
		b.WriteString("\n")
		if d.cursor.ViewportOffset+i == d.cursor.Index {
			b.WriteString(d.styles.SelectedRow.Render(line))
		} else {
			b.WriteString(line)
		}
	}
	title := fmt.Sprintf("%s  %s", v.Provider.Name, histogramText(d.styles, v.Histogram))
	return renderPopup(d.styles.Popup, d.styles.Title, title, b.String(), w, h), nil
}
