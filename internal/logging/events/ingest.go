package events

import "github.com/potoo0/mihomo-tui-sub000/internal/logging"

type IngestTracer struct{}

var Ingest = IngestTracer{}

func (IngestTracer) Start(endpoint string, params map[string]string) {
	logging.Trace("ingest.start", map[string]interface{}{"endpoint": endpoint, "params": params})
}

func (IngestTracer) Restart(endpoint string, params map[string]string) {
	logging.Trace("ingest.restart", map[string]interface{}{"endpoint": endpoint, "params": params})
}

func (IngestTracer) State(endpoint, from, to string) {
	logging.Trace("ingest.state", map[string]interface{}{"endpoint": endpoint, "from": from, "to": to})
}

func (IngestTracer) Malformed(endpoint string, err error) {
	logging.Trace("ingest.malformed", map[string]interface{}{"endpoint": endpoint, "error": err.Error()})
}

func (IngestTracer) Stop(endpoint string, items int) {
	logging.Trace("ingest.stop", map[string]interface{}{"endpoint": endpoint, "items": items})
}
