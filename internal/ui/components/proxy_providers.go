package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/bytes"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/table"
	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
	"github.com/potoo0/mihomo-tui-sub000/internal/settings"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/state"
)

type proxyProviders struct {
	component.Base
	tabState
	styles    *theme.Styles
	commands  *command.Bus
	settings  *settings.Handle
	providers *store.Value[[]proxy.ProviderView]

	gen     uint64
	list    []proxy.ProviderView
	cursor  state.Cursor
	page    int
	loading throbber
}

func newProxyProviders(deps Deps) *proxyProviders {
	return &proxyProviders{
		Base:      component.NewBase(action.ProxyProviders),
		styles:    deps.Styles,
		commands:  deps.Commands,
		settings:  deps.Settings,
		providers: deps.Providers,
	}
}

func (p *proxyProviders) Shortcuts() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyEnter, keyHealthCheck, keyUpdate, keyRefresh}
}

func (p *proxyProviders) Init(src api.DataSource) error {
	if err := p.Base.Init(src); err != nil {
		return err
	}
	p.fetch()
	return nil
}

func (p *proxyProviders) fetch() {
	if p.commands == nil || p.Source == nil {
		return
	}
	p.loading.start()
	providers, handle := p.providers, p.settings
	command.Query(p.commands, "providers", "Load proxy providers", p.Source.Providers, func(m map[string]api.Provider) action.Action {
		providers.Set(proxy.BuildProviders(m, handle.Threshold()))
		return action.Render{}
	})
}

func (p *proxyProviders) sync() {
	gen := p.providers.Generation()
	if gen == p.gen {
		return
	}
	p.gen = gen
	p.list, _ = p.providers.Get()
	p.loading.stop()
	p.cursor.SetTotal(len(p.list))
}

func (p *proxyProviders) selected() (proxy.ProviderView, bool) {
	if p.cursor.Index < 0 || p.cursor.Index >= len(p.list) {
		return proxy.ProviderView{}, false
	}
	return p.list[p.cursor.Index], true
}

func (p *proxyProviders) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyUp):
		p.cursor.MoveCursorUp()
	case key.Matches(msg, keyDown):
		p.cursor.MoveCursorDown()
	case key.Matches(msg, keyPageUp):
		p.cursor.MoveCursorPageUp(p.page)
	case key.Matches(msg, keyPageDown):
		p.cursor.MoveCursorPageDown(p.page)
	case key.Matches(msg, keyHome):
		p.cursor.MoveCursorHome()
	case key.Matches(msg, keyEnd):
		p.cursor.MoveCursorEnd()
	case key.Matches(msg, keyEnter):
		if v, ok := p.selected(); ok {
			return action.ProxyProviderDetailOpen{Provider: &v}, nil
		}
	case key.Matches(msg, keyHealthCheck):
		if v, ok := p.selected(); ok {
			providerHealthCheck(p.commands, p.Source, v.Provider.Name)
			p.loading.start()
		}
	case key.Matches(msg, keyUpdate):
		if v, ok := p.selected(); ok && v.Provider.Updatable() {
			providerUpdate(p.commands, p.Source, v.Provider.Name)
			p.loading.start()
		}
	case key.Matches(msg, keyRefresh):
		return action.ProxyProviderRefresh{}, nil
	}
	return nil, nil
}

func providerHealthCheck(bus *command.Bus, src api.DataSource, name string) {
	if src == nil {
		return
	}
	mutation(bus, "providers:healthcheck", "Health check "+name, func(ctx context.Context) error {
		return src.HealthCheckProvider(ctx, name)
	}, action.ProxyProviderRefresh{})
}

func providerUpdate(bus *command.Bus, src api.DataSource, name string) {
	if src == nil {
		return
	}
	mutation(bus, "providers:update", "Update "+name, func(ctx context.Context) error {
		return src.UpdateProvider(ctx, name)
	}, action.ProxyProviderRefresh{})
}

func (p *proxyProviders) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		p.switchTo(action.ProxyProviders, a)
	case action.Error:
		p.loading.stop()
	case action.Tick:
		p.loading.tick()
		p.sync()
	case action.Render:
		p.sync()
	case action.ProxyProviderRefresh:
		p.fetch()
	}
	return nil, nil
}

func (p *proxyProviders) Draw(area component.Area) (string, error) {
	visible := max(area.Height-2, 1)
	p.page = visible
	p.cursor.SetTotal(len(p.list))
	p.cursor.EnsureCursorVisible(visible)

	rows := [][]string{{"Name", "Vehicle", "Proxies", "Quality", "Usage", "Expire", "Updated"}}
	end := min(p.cursor.ViewportOffset+visible, len(p.list))
	for _, v := range p.list[p.cursor.ViewportOffset:end] {
		rows = append(rows, []string{
			v.Provider.Name,
			v.Provider.VehicleType,
			fmt.Sprint(len(v.Provider.Proxies)),
			histogramText(p.styles, v.Histogram),
			usageText(v),
			expireText(v.Provider.SubscriptionInfo),
			bytes.Ago(v.Provider.UpdatedAt),
		})
	}
	aligns := []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignLeft, table.AlignRight, table.AlignLeft, table.AlignLeft}
	lines := table.Format(rows, aligns, area.Width)

	var b strings.Builder
	b.WriteString(p.styles.Title.Render(fmt.Sprintf("Proxy providers [%d]%s", len(p.list), p.loading.view())))
	b.WriteString("\n")
	b.WriteString(p.styles.TableHeader.Render(lines[0]))
	for i, line := range lines[1:] {
		b.WriteString("\n")
		if p.cursor.ViewportOffset+i == p.cursor.Index {
			b.WriteString(p.styles.SelectedRow.Render(line))
		} else {
			b.WriteString(p.styles.Row.Render(line))
		}
	}
	return b.String(), nil
}

func usageText(v proxy.ProviderView) string {
	if !v.HasUsage() {
		return "-"
	}
	info := v.Provider.SubscriptionInfo
	return fmt.Sprintf("%s / %s (%s)", bytes.Size(info.Used()), bytes.Size(info.Total), bytes.Percent(v.UsagePercent))
}

func expireText(info *api.SubscriptionInfo) string {
	if info == nil || info.ExpireAt().IsZero() {
		return "-"
	}
	return info.ExpireAt().Format(time.DateOnly)
}
