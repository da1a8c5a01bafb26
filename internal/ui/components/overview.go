package components

import (
	"fmt"
	"strings"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/data/dispatcher"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/bytes"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// overview shows the aggregate counters and short histories of memory and
// traffic.
type overview struct {
	component.Base
	styles *theme.Styles
	stores *dispatcher.Stores

	version api.Version
	stat    api.ConnectionStat
}

func newOverview(deps Deps) *overview {
	o := &overview{Base: component.NewBase(action.Overview), styles: deps.Styles}
	if deps.Dispatcher != nil {
		stores := deps.Dispatcher.Stores()
		o.stores = &stores
	}
	return o
}

func (o *overview) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.VersionLoaded:
		o.version = a.Version
	case action.ConnectionStats:
		o.stat = a.Stat
	}
	return nil, nil
}

func (o *overview) Draw(area component.Area) (string, error) {
	label := func(s string) string { return o.styles.Header.Render(fmt.Sprintf("%-12s", s)) }
	version := o.version.String()
	if version == "" {
		version = "-"
	}
	lines := []string{
		label("Core") + version,
		label("Connections") + fmt.Sprintf("%d", o.stat.Count),
		label("Downloaded") + bytes.Size(o.stat.DownTotal),
		label("Uploaded") + bytes.Size(o.stat.UpTotal),
	}
	if o.stores != nil {
		width := max(area.Width-30, 1)
		var mem, up, down []uint64
		for _, m := range o.stores.Memory.Raw() {
			mem = append(mem, m.InUse)
		}
		for _, t := range o.stores.Traffic.Raw() {
			up = append(up, t.Up)
			down = append(down, t.Down)
		}
		lines = append(lines, "",
			label("Memory")+fmt.Sprintf("%-14s", bytes.Size(last(mem)))+o.styles.Info.Render(Sparkline(mem, width)),
			label("Upload")+fmt.Sprintf("%-14s", bytes.Rate(last(up)))+o.styles.Fast.Render(Sparkline(up, width)),
			label("Download")+fmt.Sprintf("%-14s", bytes.Rate(last(down)))+o.styles.Medium.Render(Sparkline(down, width)),
		)
	}
	if len(lines) > area.Height {
		lines = lines[:max(area.Height, 0)]
	}
	return strings.Join(lines, "\n"), nil
}

// Sparkline renders the last width samples scaled to the largest of them.
func Sparkline(samples []uint64, width int) string {
	if width <= 0 || len(samples) == 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	var peak uint64
	for _, v := range samples {
		peak = max(peak, v)
	}
	out := make([]rune, len(samples))
	for i, v := range samples {
		if peak == 0 {
			out[i] = sparkLevels[0]
			continue
		}
		out[i] = sparkLevels[v*uint64(len(sparkLevels)-1)/peak]
	}
	return string(out)
}

func last(v []uint64) uint64 {
	if len(v) == 0 {
		return 0
	}
	return v[len(v)-1]
}
