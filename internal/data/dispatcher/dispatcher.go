// Package dispatcher routes decoded stream frames into the shared stores and
// forwards aggregate values to the UI as actions.
package dispatcher

import (
	"sync"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/ingest"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
)

// Stores are the buffers fed by the streaming endpoints.
type Stores struct {
	Memory      *store.Store[api.Memory]
	Traffic     *store.Store[api.Traffic]
	Connections *store.ConnectionStore
	Logs        *store.Store[api.Log]
}

// Dispatcher is shared between ingestion tasks and the UI. Every method is
// safe for concurrent use.
type Dispatcher struct {
	stores Stores
	sender action.Sender

	mu      sync.Mutex
	live    map[api.Endpoint]bool
	capture bool
}

// New returns a dispatcher. Connections and logs start in live mode.
func New(stores Stores, sender action.Sender) *Dispatcher {
	return &Dispatcher{
		stores: stores,
		sender: sender,
		live: map[api.Endpoint]bool{
			api.EndpointConnections: true,
			api.EndpointLogs:        true,
		},
	}
}

// Stores returns the buffers.
func (d *Dispatcher) Stores() Stores { return d.stores }

// SetLive toggles immediate recomputation for endpoint.
func (d *Dispatcher) SetLive(endpoint api.Endpoint, on bool) {
	d.mu.Lock()
	d.live[endpoint] = on
	d.mu.Unlock()
}

// Live reports whether endpoint recomputes on push.
func (d *Dispatcher) Live(endpoint api.Endpoint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live[endpoint]
}

// SetCapture toggles retention of closed connections.
func (d *Dispatcher) SetCapture(on bool) {
	d.mu.Lock()
	d.capture = on
	d.mu.Unlock()
}

// Capture reports whether closed connections are retained.
func (d *Dispatcher) Capture() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture
}

// Handler returns the frame handler for endpoint.
func (d *Dispatcher) Handler(endpoint api.Endpoint) ingest.HandleFunc {
	switch endpoint {
	case api.EndpointMemory:
		return ingest.JSON(d.Memory)
	case api.EndpointTraffic:
		return ingest.JSON(d.Traffic)
	case api.EndpointConnections:
		return ingest.JSON(d.Connections)
	case api.EndpointLogs:
		return ingest.JSON(d.Log)
	default:
		return nil
	}
}

// Memory records a memory sample. The core sends a zero sample first, which
// is dropped.
func (d *Dispatcher) Memory(m api.Memory) {
	if m.InUse == 0 && m.OSLimit == 0 {
		return
	}
	d.stores.Memory.Push(m)
	d.send(action.MemoryUpdate{Memory: m})
}

// Traffic records a traffic sample.
func (d *Dispatcher) Traffic(t api.Traffic) {
	d.stores.Traffic.Push(t)
	d.send(action.TrafficUpdate{Traffic: t})
}

// Connections replaces the connection table with snap.
func (d *Dispatcher) Connections(snap api.ConnectionsSnapshot) {
	d.stores.Connections.PushSnapshot(snap.Connections, d.Capture())
	d.refresh(api.EndpointConnections, d.stores.Connections.Refresh)
	d.send(action.ConnectionStats{Stat: snap.Stat()})
}

// Log appends one log line.
func (d *Dispatcher) Log(l api.Log) {
	d.stores.Logs.Push(l)
	d.refresh(api.EndpointLogs, d.stores.Logs.Refresh)
}

// refresh recomputes the view after every push while endpoint is live. A
// paused endpoint is recomputed by its tab on demand.
func (d *Dispatcher) refresh(endpoint api.Endpoint, fn func()) {
	if d.Live(endpoint) {
		fn()
	}
}

func (d *Dispatcher) send(a action.Action) {
	if d.sender == nil {
		return
	}
	if err := d.sender.Send(a); err != nil {
		logging.Debugf("dispatcher: drop %s: %v", action.Name(a), err)
	}
}
