// Package proxy resolves proxy groups to the node they currently route
// through and aggregates latency quality per group.
package proxy

import (
	"slices"
	"sort"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
)

// GlobalGroup is the group whose member order defines display order.
const GlobalGroup = "GLOBAL"

// maxResolveDepth bounds selection chains read from the core.
const maxResolveDepth = 64

// ChildView is a group member as displayed in the detail popup.
type ChildView struct {
	Name     string
	Type     string
	Latency  Latency
	Quality  Quality
	Selected bool
	Group    bool
}

// GroupView is a selectable group with its aggregated member quality.
type GroupView struct {
	Name      string
	Type      string
	Now       string
	TestURL   string
	Latency   Latency
	Children  []ChildView
	Histogram Histogram
}

// Graph is an immutable snapshot of GET /proxies. A refresh builds a new
// graph rather than mutating the old one.
type Graph struct {
	nodes     map[string]api.Proxy
	threshold Threshold
	order     map[string]int
	latency   map[string]Latency
}

// NewGraph indexes proxies. threshold is used for every classification made
// through the graph.
func NewGraph(proxies map[string]api.Proxy, threshold Threshold) *Graph {
	g := &Graph{
		nodes:     make(map[string]api.Proxy, len(proxies)),
		threshold: threshold,
		order:     map[string]int{},
		latency:   make(map[string]Latency, len(proxies)),
	}
	for name, p := range proxies {
		if p.Name == "" {
			p.Name = name
		}
		g.nodes[name] = p
	}
	if global, ok := g.nodes[GlobalGroup]; ok {
		for i, name := range global.All {
			if _, seen := g.order[name]; !seen {
				g.order[name] = i
			}
		}
	}
	for name := range g.nodes {
		leaf, _ := g.Resolve(name)
		g.latency[name] = LatestDelay(leaf.History)
	}
	return g
}

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Threshold returns the classification threshold.
func (g *Graph) Threshold() Threshold { return g.threshold }

// Get looks up a node by name.
func (g *Graph) Get(name string) (api.Proxy, bool) {
	p, ok := g.nodes[name]
	return p, ok
}

// Resolve follows the selected member from name until it reaches a node that
// has no selection or no members. A cycle or a chain deeper than
// maxResolveDepth stops at the last node reached.
func (g *Graph) Resolve(name string) (api.Proxy, bool) {
	cur, ok := g.nodes[name]
	if !ok {
		return api.Proxy{}, false
	}
	visited := map[string]struct{}{cur.Name: {}}
	for depth := 0; depth < maxResolveDepth; depth++ {
		if cur.Now == "" || len(cur.All) == 0 {
			break
		}
		if _, seen := visited[cur.Now]; seen {
			break
		}
		next, ok := g.nodes[cur.Now]
		if !ok {
			break
		}
		visited[cur.Now] = struct{}{}
		cur = next
	}
	return cur, true
}

// Latency is the latest delay of the node name resolves to.
func (g *Graph) Latency(name string) Latency {
	return g.latency[name]
}

// LatestDelay returns the most recent sample of history.
func LatestDelay(history []api.DelayHistory) Latency {
	if len(history) == 0 {
		return Latency{}
	}
	return Latency{Delay: history[len(history)-1].Delay, Known: true}
}

// Histogram tallies the quality of each direct member of group.
func (g *Graph) Histogram(group string) Histogram {
	var h Histogram
	p, ok := g.nodes[group]
	if !ok {
		return h
	}
	for _, child := range p.All {
		h.Add(Classify(g.Latency(child), g.threshold))
	}
	return h
}

// SortIndex is the position of name within GLOBAL. Names missing from GLOBAL
// sort after every listed one.
func (g *Graph) SortIndex(name string) int {
	if i, ok := g.order[name]; ok {
		return i
	}
	if global, ok := g.nodes[GlobalGroup]; ok {
		return len(global.All)
	}
	return 0
}

// Visible reports whether p is a group shown on the proxies tab.
func Visible(p api.Proxy) bool {
	return !p.Hidden && len(p.All) > 0
}

// Groups returns the visible groups ordered by SortIndex, then by name.
func (g *Graph) Groups() []GroupView {
	names := make([]string, 0, len(g.nodes))
	for name, p := range g.nodes {
		if Visible(p) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	slices.SortStableFunc(names, func(a, b string) int {
		return g.SortIndex(a) - g.SortIndex(b)
	})
	out := make([]GroupView, 0, len(names))
	for _, name := range names {
		view, _ := g.Group(name)
		out = append(out, view)
	}
	return out
}

// Group builds the view of a single group. Members are ordered like GLOBAL.
func (g *Graph) Group(name string) (GroupView, bool) {
	p, ok := g.nodes[name]
	if !ok {
		return GroupView{}, false
	}
	view := GroupView{
		Name:    p.Name,
		Type:    p.Type,
		Now:     p.Now,
		TestURL: p.TestURL,
		Latency: g.Latency(name),
	}
	view.Children = make([]ChildView, 0, len(p.All))
	for _, child := range p.All {
		l := g.Latency(child)
		q := Classify(l, g.threshold)
		view.Histogram.Add(q)
		cv := ChildView{Name: child, Latency: l, Quality: q, Selected: child == p.Now}
		if node, ok := g.nodes[child]; ok {
			cv.Type = node.Type
			cv.Group = len(node.All) > 0
		}
		view.Children = append(view.Children, cv)
	}
	slices.SortStableFunc(view.Children, func(a, b ChildView) int {
		return g.SortIndex(a.Name) - g.SortIndex(b.Name)
	})
	return view, true
}
