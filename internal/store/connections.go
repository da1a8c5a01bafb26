package store

import (
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// ConnectionStore keeps the latest connections snapshot with derived
// transfer rates. In capture mode, connections that disappear from a
// snapshot are kept as inactive rows until they are evicted.
type ConnectionStore struct {
	*Store[*api.Connection]
	rates *RateTracker
}

// NewConnectionStore creates a store bounded by capacity.
func NewConnectionStore(capacity int, cols view.Columns[*api.Connection]) *ConnectionStore {
	return &ConnectionStore{
		Store: New("connections", capacity, cols),
		rates: NewRateTracker(),
	}
}

// PushSnapshot replaces the raw buffer with conns. Each record is copied so
// that rows already handed to the UI are never mutated.
func (s *ConnectionStore) PushSnapshot(conns []api.Connection, capture bool) {
	next := make(map[string]Counters, len(conns))
	rows := make([]*api.Connection, 0, len(conns))
	seen := make(map[string]struct{}, len(conns))
	for i := range conns {
		c := conns[i]
		if delta, ok := s.rates.Observe(next, c.ID, Counters{Up: c.Upload, Down: c.Download}); ok {
			c.UploadRate = delta.Up
			c.DownloadRate = delta.Down
		}
		c.Inactive = false
		seen[c.ID] = struct{}{}
		rows = append(rows, &c)
	}
	s.rates.Commit(next)

	s.mu.Lock()
	defer s.mu.Unlock()
	if capture {
		rows = appendVanished(rows, s.raw.Items(), seen, s.raw.Cap())
	}
	s.replaceLocked(rows)
}

// appendVanished appends rows from prev that are absent from seen, marked
// inactive, keeping the most recent ones when the store would overflow.
func appendVanished(rows, prev []*api.Connection, seen map[string]struct{}, capacity int) []*api.Connection {
	var gone []*api.Connection
	for _, p := range prev {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		c := *p
		c.Inactive = true
		c.UploadRate = 0
		c.DownloadRate = 0
		gone = append(gone, &c)
	}
	room := capacity - len(rows)
	if room <= 0 {
		return rows
	}
	if len(gone) > room {
		gone = gone[len(gone)-room:]
	}
	return append(rows, gone...)
}
