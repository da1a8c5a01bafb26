package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
	"github.com/potoo0/mihomo-tui-sub000/internal/settings"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/state"
)

// proxies lists the proxy groups as two line cards: a summary and a
// histogram of member latencies. It also executes every proxy mutation so
// that each one is followed by a single refetch.
type proxies struct {
	component.Base
	tabState
	styles   *theme.Styles
	commands *command.Bus
	settings *settings.Handle
	graph    *store.Value[*proxy.Graph]

	gen     uint64
	groups  []proxy.GroupView
	cursor  state.Cursor
	page    int
	loading throbber
}

func newProxies(deps Deps) *proxies {
	return &proxies{
		Base:     component.NewBase(action.Proxies),
		styles:   deps.Styles,
		commands: deps.Commands,
		settings: deps.Settings,
		graph:    deps.Graph,
	}
}

func (p *proxies) Shortcuts() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyEnter, keyTest, keyRefresh, keySettings}
}

func (p *proxies) Init(src api.DataSource) error {
	if err := p.Base.Init(src); err != nil {
		return err
	}
	p.fetch()
	return nil
}

// fetch reloads every proxy and publishes a new graph. Qualities use the
// threshold current when the response lands.
func (p *proxies) fetch() {
	if p.commands == nil || p.Source == nil {
		return
	}
	p.loading.start()
	graph, handle := p.graph, p.settings
	command.Query(p.commands, "proxies", "Load proxies", p.Source.Proxies, func(m map[string]api.Proxy) action.Action {
		graph.Set(proxy.NewGraph(m, handle.Threshold()))
		return action.ProxyDetailRefresh{Index: -1}
	})
}

func (p *proxies) sync() {
	gen := p.graph.Generation()
	if gen == p.gen {
		return
	}
	p.gen = gen
	if g, ok := p.graph.Get(); ok && g != nil {
		p.groups = g.Groups()
	}
	p.loading.stop()
	p.cursor.SetTotal(len(p.groups))
}

func (p *proxies) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
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
		if g, ok := p.selected(); ok {
			return action.ProxyDetailOpen{Group: &g}, nil
		}
	case key.Matches(msg, keyTest):
		if g, ok := p.selected(); ok {
			return action.ProxyGroupTestRequest{Name: g.Name}, nil
		}
	case key.Matches(msg, keyRefresh):
		return action.ProxiesRefresh{}, nil
	case key.Matches(msg, keySettings):
		return action.ProxySettingOpen{}, nil
	}
	return nil, nil
}

func (p *proxies) selected() (proxy.GroupView, bool) {
	if p.cursor.Index < 0 || p.cursor.Index >= len(p.groups) {
		return proxy.GroupView{}, false
	}
	return p.groups[p.cursor.Index], true
}

func (p *proxies) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		p.switchTo(action.Proxies, a)
	case action.Error:
		p.loading.stop()
	case action.Tick:
		p.loading.tick()
		p.sync()
	case action.Render, action.ProxyDetailRefresh:
		p.sync()
	case action.ProxiesRefresh:
		p.fetch()
	case action.ProxyUpdateRequest:
		p.run("proxies:select", "Select proxy", func(ctx context.Context, src api.DataSource, _ settings.Settings) error {
			return src.UpdateSelectedProxy(ctx, a.Group, a.Name)
		})
	case action.ProxyTestRequest:
		p.run("proxies:test", "Test proxy", func(ctx context.Context, src api.DataSource, s settings.Settings) error {
			_, err := src.TestProxy(ctx, a.Name, s.TestURL, s.TimeoutDuration())
			return err
		})
	case action.ProxyGroupTestRequest:
		p.run("proxies:test-group", "Test group", func(ctx context.Context, src api.DataSource, s settings.Settings) error {
			_, err := src.TestGroup(ctx, a.Name, s.TestURL, s.TimeoutDuration())
			return err
		})
	}
	return nil, nil
}

// run executes a mutation with the settings current at request time and
// refetches the proxies afterwards.
func (p *proxies) run(id, label string, fn func(context.Context, api.DataSource, settings.Settings) error) {
	src := p.Source
	if src == nil {
		return
	}
	s := p.settings.Get()
	p.loading.start()
	mutation(p.commands, id, label, func(ctx context.Context) error {
		return fn(ctx, src, s)
	}, action.ProxiesRefresh{})
}

func (p *proxies) Draw(area component.Area) (string, error) {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render(fmt.Sprintf("Proxies [%d]%s", len(p.groups), p.loading.view())))
	visible := max((area.Height-1)/2, 1)
	p.page = visible
	p.cursor.SetTotal(len(p.groups))
	p.cursor.EnsureCursorVisible(visible)

	threshold := p.settings.Threshold()
	end := min(p.cursor.ViewportOffset+visible, len(p.groups))
	for i := p.cursor.ViewportOffset; i < end; i++ {
		g := p.groups[i]
		name := p.styles.Row.Render(g.Name)
		if i == p.cursor.Index {
			name = p.styles.SelectedRow.Render(g.Name)
		}
		q := proxy.Classify(g.Latency, threshold)
		line := fmt.Sprintf("%s %s → %s %s",
			name,
			p.styles.Muted.Render(g.Type),
			g.Now,
			p.styles.Quality(q).Render(g.Latency.String()))
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n  ")
		b.WriteString(histogramBar(p.styles, g.Histogram, max(area.Width-4, 1)))
	}
	return b.String(), nil
}

// histogramBar draws one block per member, scaled down to width, coloured by
// latency bucket.
func histogramBar(styles *theme.Styles, h proxy.Histogram, width int) string {
	total := h.Total()
	if total == 0 {
		return styles.Muted.Render("(empty)")
	}
	var b strings.Builder
	for q := proxy.Fast; q <= proxy.NotConnected; q++ {
		n := h[q]
		if total > width {
			n = h[q] * width / total
			if h[q] > 0 && n == 0 {
				n = 1
			}
		}
		if n > 0 {
			b.WriteString(styles.Quality(q).Render(strings.Repeat("■", n)))
		}
	}
	return b.String()
}

// histogramText renders bucket counts, e.g. "3/1/0/2".
func histogramText(styles *theme.Styles, h proxy.Histogram) string {
	parts := make([]string, 0, len(h))
	for q := proxy.Fast; q <= proxy.NotConnected; q++ {
		parts = append(parts, styles.Quality(q).Render(fmt.Sprint(h[q])))
	}
	return strings.Join(parts, "/")
}
