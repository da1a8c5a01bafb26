package events

import "github.com/potoo0/mihomo-tui-sub000/internal/logging"

type UITracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) TabSwitch(from, to string) {
	logging.Trace("ui.tab", map[string]interface{}{"from": from, "to": to})
}

func (UITracer) Focus(id string, depth int) {
	logging.Trace("ui.focus", map[string]interface{}{"id": id, "depth": depth})
}

func (UITracer) Unfocus(id string, depth int) {
	logging.Trace("ui.unfocus", map[string]interface{}{"id": id, "depth": depth})
}

func (UITracer) ComponentCreated(id string) {
	logging.Trace("ui.component.created", map[string]interface{}{"id": id})
}

func (UITracer) Resize(width, height int) {
	logging.Trace("ui.resize", map[string]interface{}{"width": width, "height": height})
}

// Dispatch is skipped for the periodic tick and render actions.
func (ActionTracer) Dispatch(kind string) {
	logging.Trace("action.dispatch", map[string]interface{}{"action": kind})
}

func (ActionTracer) Drained(count int) {
	logging.Trace("action.drained", map[string]interface{}{"count": count})
}

func (ActionTracer) Error(title string, err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"title": title, "error": err.Error()})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Success(id, label string) {
	logging.Trace("command.success", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Failure(id, label string, err error) {
	logging.Trace("command.failure", map[string]interface{}{"id": id, "label": label, "error": err.Error()})
}
