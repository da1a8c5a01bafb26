package proxy

import (
	"sort"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
)

// ProviderView is a proxy provider with member quality and traffic usage.
type ProviderView struct {
	Provider  api.Provider
	Histogram Histogram
	// UsagePercent is negative when the provider reports no subscription.
	UsagePercent float64
	Children     []ChildView
}

// HasUsage reports whether UsagePercent is meaningful.
func (v ProviderView) HasUsage() bool { return v.UsagePercent >= 0 }

// BuildProviders converts GET /providers/proxies into display rows. The
// built-in "default" provider and compatible providers are skipped.
func BuildProviders(providers map[string]api.Provider, t Threshold) []ProviderView {
	out := make([]ProviderView, 0, len(providers))
	for name, p := range providers {
		if p.Name == "" {
			p.Name = name
		}
		if p.Name == "default" || p.VehicleType == "Compatible" {
			continue
		}
		out = append(out, buildProvider(p, t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Provider.Name < out[j].Provider.Name
	})
	return out
}

func buildProvider(p api.Provider, t Threshold) ProviderView {
	view := ProviderView{Provider: p, UsagePercent: -1}
	for _, node := range p.Proxies {
		l := LatestDelay(node.History)
		q := Classify(l, t)
		view.Histogram.Add(q)
		view.Children = append(view.Children, ChildView{Name: node.Name, Type: node.Type, Latency: l, Quality: q})
	}
	if info := p.SubscriptionInfo; info != nil {
		view.UsagePercent = 0
		if info.Total > 0 {
			view.UsagePercent = float64(info.Used()) * 100 / float64(info.Total)
		}
	}
	return view
}
