package proxy

import (
	"testing"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
)

func node(name string, delays ...int64) api.Proxy {
	p := api.Proxy{Name: name, Type: "Shadowsocks"}
	for _, d := range delays {
		p.History = append(p.History, api.DelayHistory{Delay: d})
	}
	return p
}

func group(name, now string, members ...string) api.Proxy {
	return api.Proxy{Name: name, Type: "Selector", Now: now, All: members}
}

func graphOf(nodes ...api.Proxy) *Graph {
	m := make(map[string]api.Proxy, len(nodes))
	for _, n := range nodes {
		m[n.Name] = n
	}
	return NewGraph(m, DefaultThreshold)
}

func TestResolveFollowsSelection(t *testing.T) {
	g := graphOf(
		group("A", "B", "B", "x"),
		group("B", "C", "C"),
		node("C", 120),
		node("x"),
	)
	leaf, ok := g.Resolve("A")
	if !ok || leaf.Name != "C" {
		t.Fatalf("expected A to resolve to C, got %q", leaf.Name)
	}
	if l := g.Latency("A"); !l.Known || l.Delay != 120 {
		t.Fatalf("expected group latency from leaf, got %#v", l)
	}
	if _, ok := g.Resolve("missing"); ok {
		t.Fatalf("expected unknown name to fail")
	}
}

func TestResolveStopsOnCycle(t *testing.T) {
	g := graphOf(
		group("A", "B", "B"),
		group("B", "A", "A"),
	)
	leaf, ok := g.Resolve("A")
	if !ok || leaf.Name != "B" {
		t.Fatalf("expected cycle to stop at B, got %q", leaf.Name)
	}
	self := graphOf(group("S", "S", "S"))
	if leaf, _ := self.Resolve("S"); leaf.Name != "S" {
		t.Fatalf("expected self selection to stop at S, got %q", leaf.Name)
	}
}

func TestResolveStopsAtDanglingSelection(t *testing.T) {
	g := graphOf(group("A", "gone", "gone"))
	leaf, _ := g.Resolve("A")
	if leaf.Name != "A" {
		t.Fatalf("expected dangling selection to stop at A, got %q", leaf.Name)
	}
}

func TestResolveBoundsDepth(t *testing.T) {
	m := map[string]api.Proxy{}
	const n = maxResolveDepth * 2
	for i := 0; i < n; i++ {
		name := string(rune('a'+i%26)) + string(rune('0'+i/26))
		next := string(rune('a'+(i+1)%26)) + string(rune('0'+(i+1)/26))
		m[name] = group(name, next, next)
	}
	g := NewGraph(m, DefaultThreshold)
	leaf, ok := g.Resolve("a0")
	if !ok || leaf.Name == "" {
		t.Fatalf("expected bounded resolution to return a node")
	}
}

func TestHistogramBuckets(t *testing.T) {
	g := graphOf(
		group("G", "fast", "fast", "medium", "slow", "none"),
		node("fast", 50),
		node("medium", 600),
		node("slow", 1200),
		node("none"),
	)
	h := g.Histogram("G")
	want := Histogram{1, 1, 1, 1}
	if h != want {
		t.Fatalf("expected %v, got %v", want, h)
	}
	if h.Total() != 4 {
		t.Fatalf("expected 4 samples, got %d", h.Total())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		latency Latency
		want    Quality
	}{
		{Latency{}, NotConnected},
		{Latency{Delay: 0, Known: true}, NotConnected},
		{Latency{Delay: -1, Known: true}, NotConnected},
		{Latency{Delay: 499, Known: true}, Fast},
		{Latency{Delay: 500, Known: true}, Medium},
		{Latency{Delay: 999, Known: true}, Medium},
		{Latency{Delay: 1000, Known: true}, Slow},
	}
	for _, tc := range cases {
		if got := Classify(tc.latency, DefaultThreshold); got != tc.want {
			t.Fatalf("classify %#v: expected %s, got %s", tc.latency, tc.want, got)
		}
	}
	if got := Classify(Latency{Delay: 150, Known: true}, Threshold{Good: 100, Bad: 200}); got != Medium {
		t.Fatalf("expected custom threshold to apply, got %s", got)
	}
}

func TestGroupsFollowGlobalOrder(t *testing.T) {
	g := graphOf(
		group(GlobalGroup, "Auto", "Select", "Auto"),
		group("Auto", "n1", "n1"),
		group("Select", "Auto", "Auto", "n1"),
		group("Zeta", "n1", "n1"),
		group("Alpha", "n1", "n1"),
		api.Proxy{Name: "Hidden", Type: "Selector", Hidden: true, All: []string{"n1"}},
		group("Empty", ""),
		node("n1", 80),
	)
	groups := g.Groups()
	var names []string
	for _, v := range groups {
		names = append(names, v.Name)
	}
	want := []string{"Select", "Auto", "Alpha", GlobalGroup, "Zeta"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if g.SortIndex("unknown") != 2 {
		t.Fatalf("expected unknown names to sort last, got %d", g.SortIndex("unknown"))
	}
}

func TestGroupView(t *testing.T) {
	g := graphOf(
		group("Select", "Auto", "Auto", "n2"),
		group("Auto", "n1", "n1"),
		node("n1", 80),
		node("n2", 0),
	)
	v, ok := g.Group("Select")
	if !ok {
		t.Fatalf("expected group view")
	}
	if len(v.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(v.Children))
	}
	if !v.Children[0].Selected || !v.Children[0].Group || v.Children[0].Latency.Delay != 80 {
		t.Fatalf("unexpected first child %#v", v.Children[0])
	}
	if v.Children[1].Quality != NotConnected {
		t.Fatalf("expected timed out child to be not connected, got %s", v.Children[1].Quality)
	}
	if v.Latency.String() != "80" {
		t.Fatalf("expected group latency 80, got %s", v.Latency)
	}
}

func TestBuildProviders(t *testing.T) {
	providers := map[string]api.Provider{
		"default": {Name: "default", VehicleType: "Compatible"},
		"compat":  {Name: "compat", VehicleType: "Compatible"},
		"sub": {
			Name:             "sub",
			VehicleType:      "HTTP",
			Proxies:          []api.Proxy{node("a", 100), node("b", 700), node("c")},
			SubscriptionInfo: &api.SubscriptionInfo{Download: 30, Upload: 20, Total: 200},
		},
		"file": {Name: "file", VehicleType: "File", Proxies: []api.Proxy{node("d", 2000)}},
	}
	views := BuildProviders(providers, DefaultThreshold)
	if len(views) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(views))
	}
	if views[0].Provider.Name != "file" || views[1].Provider.Name != "sub" {
		t.Fatalf("expected providers sorted by name")
	}
	if views[0].HasUsage() {
		t.Fatalf("expected file provider without usage")
	}
	if views[1].UsagePercent != 25 {
		t.Fatalf("expected 25%% usage, got %v", views[1].UsagePercent)
	}
	if views[1].Histogram != (Histogram{1, 1, 0, 1}) {
		t.Fatalf("unexpected histogram %v", views[1].Histogram)
	}
}

func TestGroupChildrenFollowGlobalOrder(t *testing.T) {
	g := graphOf(
		group(GlobalGroup, "", "n3", "n1"),
		group("Select", "n1", "n1", "n2", "n3"),
		node("n1", 10),
		node("n2", 20),
		node("n3", 30),
	)
	v, _ := g.Group("Select")
	got := []string{v.Children[0].Name, v.Children[1].Name, v.Children[2].Name}
	want := []string{"n3", "n1", "n2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
