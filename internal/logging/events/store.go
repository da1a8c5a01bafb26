package events

import "github.com/potoo0/mihomo-tui-sub000/internal/logging"

type StoreTracer struct{}

var Store = StoreTracer{}

func (StoreTracer) ComputeView(store, pattern string, raw, view int) {
	logging.Trace("store.view", map[string]interface{}{
		"store":   store,
		"pattern": pattern,
		"raw":     raw,
		"view":    view,
	})
}
