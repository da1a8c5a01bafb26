package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/table"
	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/state"
)

var keySelect = binding("enter", "select", "enter")

// proxyDetail lists the members of one group.
type proxyDetail struct {
	component.Base
	styles *theme.Styles
	graph  *store.Value[*proxy.Graph]

	group  *proxy.GroupView
	cursor state.Cursor
	page   int
}

func newProxyDetail(deps Deps) *proxyDetail {
	return &proxyDetail{
		Base:   component.NewBase(action.ProxyDetail),
		styles: deps.Styles,
		graph:  deps.Graph,
	}
}

func (d *proxyDetail) Shortcuts() []key.Binding {
	return []key.Binding{keyUp, keyDown, keySelect, keyTest, keyGroupTest, keyClose}
}

// selectable reports whether the core accepts a manual choice for the group.
func (d *proxyDetail) selectable() bool {
	return d.group != nil && (d.group.Type == "Selector" || d.group.Name == proxy.GlobalGroup)
}

func (d *proxyDetail) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
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
	case key.Matches(msg, keyHome):
		d.cursor.MoveCursorHome()
	case key.Matches(msg, keyEnd):
		d.cursor.MoveCursorEnd()
	case key.Matches(msg, keySelect):
		if c, ok := d.child(); ok && d.selectable() && !c.Selected {
			return action.ProxyUpdateRequest{Group: d.group.Name, Name: c.Name}, nil
		}
	case key.Matches(msg, keyTest):
		if c, ok := d.child(); ok {
			return action.ProxyTestRequest{Name: c.Name}, nil
		}
	case key.Matches(msg, keyGroupTest):
		if d.group != nil {
			return action.ProxyGroupTestRequest{Name: d.group.Name}, nil
		}
	}
	return nil, nil
}

func (d *proxyDetail) child() (proxy.ChildView, bool) {
	if d.group == nil || d.cursor.Index < 0 || d.cursor.Index >= len(d.group.Children) {
		return proxy.ChildView{}, false
	}
	return d.group.Children[d.cursor.Index], true
}

func (d *proxyDetail) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.ProxyDetailOpen:
		if a.Group == nil {
			return nil, nil
		}
		d.set(a.Group)
		d.cursor.Index = 0
		for i, c := range d.group.Children {
			if c.Selected {
				d.cursor.Index = i
				break
			}
		}
	case action.ProxyDetailRefresh:
		if d.group == nil {
			return nil, nil
		}
		g, ok := d.graph.Get()
		if !ok || g == nil {
			return nil, nil
		}
		if v, ok := g.Group(d.group.Name); ok {
			d.set(&v)
			if a.Index >= 0 {
				d.cursor.Index = a.Index
				d.cursor.SetTotal(len(v.Children))
			}
		}
	}
	return nil, nil
}

func (d *proxyDetail) set(g *proxy.GroupView) {
	d.group = g
	d.cursor.SetTotal(len(g.Children))
}

func (d *proxyDetail) Draw(area component.Area) (string, error) {
	w, h := popupSize(area)
	if d.group == nil {
		return renderPopup(d.styles.Popup, d.styles.Title, "Proxy group", "", w, h), nil
	}
	g := d.group
	threshold := proxy.DefaultThreshold
	if graph, ok := d.graph.Get(); ok && graph != nil {
		threshold = graph.Threshold()
	}
	visible := max(h-3, 1)
	d.page = visible
	d.cursor.EnsureCursorVisible(visible)

	rows := [][]string{{"", "Name", "Type", "Delay"}}
	end := min(d.cursor.ViewportOffset+visible, len(g.Children))
	for _, c := range g.Children[d.cursor.ViewportOffset:end] {
		mark := " "
		if c.Selected {
			mark = "●"
		}
		rows = append(rows, []string{mark, c.Name, c.Type, d.styles.Quality(c.Quality).Render(c.Latency.String())})
	}
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignRight}, w)
	var b strings.Builder
	b.WriteString(d.styles.TableHeader.Render(lines[0]))
	for i, line := range lines[1:] {
		b.WriteString("\n")
		if d.cursor.ViewportOffset+i == d.cursor.Index {
			b.WriteString(d.styles.SelectedRow.Render(line))
		} else {
			b.WriteString(line)
		}
	}
	q := proxy.Classify(g.Latency, threshold)
	title := fmt.Sprintf("%s (%s) → %s %s  %s", g.Name, g.Type, g.Now,
		d.styles.Quality(q).Render(g.Latency.String()), histogramText(d.styles, g.Histogram))
	return renderPopup(d.styles.Popup, d.styles.Title, title, b.String(), w, h), nil
}
