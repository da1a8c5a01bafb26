package components

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/data/dispatcher"
	"github.com/potoo0/mihomo-tui-sub000/internal/ingest"
	"github.com/potoo0/mihomo-tui-sub000/internal/model"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
)

// logs streams core log lines. The stream starts when the tab is first shown
// and restarts whenever the level filter changes.
type logs struct {
	component.Base
	tabState
	dispatcher *dispatcher.Dispatcher
	supervisor *ingest.Supervisor
	clipboard  func(string) error
	list       *listView[api.Log]
	level      api.LogLevel
}

func newLogs(deps Deps) *logs {
	d := deps.Dispatcher
	if d == nil {
		d = dispatcher.New(dispatcher.Stores{
			Logs: store.New("logs", store.LogsBufferSize, model.LogColumns()),
		}, nil)
	}
	list := newListView(d.Stores().Logs, deps.Styles)
	list.rowStyle = func(l api.Log) *lipgloss.Style {
		switch api.LogLevel(strings.ToLower(l.Type)) {
		case api.LogLevelError:
			return deps.Styles.Error
		case api.LogLevelWarning:
			return deps.Styles.Medium
		case api.LogLevelDebug:
			return deps.Styles.Muted
		}
		return nil
	}
	return &logs{
		Base:       component.NewBase(action.Logs),
		dispatcher: d,
		supervisor: deps.Supervisor,
		clipboard:  deps.Clipboard,
		list:       list,
		level:      api.LogLevelInfo,
	}
}

func (l *logs) Shortcuts() []key.Binding {
	return append([]key.Binding{keyLevel, keyLive, keyCopy}, tableKeys...)
}

func (l *logs) Init(src api.DataSource) error {
	if err := l.Base.Init(src); err != nil {
		return err
	}
	if l.supervisor == nil {
		return nil
	}
	_, err := l.supervisor.Ensure(api.EndpointLogs, l.params(), l.dispatcher.Handler(api.EndpointLogs))
	return err
}

func (l *logs) params() url.Values {
	return url.Values{"level": {string(l.level)}}
}

func (l *logs) live() bool {
	return l.dispatcher.Live(api.EndpointLogs)
}

// nextLevel cycles error, warning, info, debug.
func nextLevel(cur api.LogLevel) api.LogLevel {
	for i, lv := range api.LogLevels {
		if lv == cur {
			return api.LogLevels[(i+1)%len(api.LogLevels)]
		}
	}
	return api.LogLevelInfo
}

func (l *logs) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if l.list.handleKey(msg) {
		return nil, nil
	}
	switch {
	case key.Matches(msg, keySearch):
		return action.Focus{ID: action.Search}, nil
	case key.Matches(msg, keyLevel):
		return action.LogLevelChanged{Level: nextLevel(l.level)}, nil
	case key.Matches(msg, keyLive):
		on := !l.live()
		l.dispatcher.SetLive(api.EndpointLogs, on)
		if on {
			l.list.refresh()
		}
		return action.LiveMode{On: on}, nil
	case key.Matches(msg, keyCopy):
		if entry, ok := l.list.selected(); ok {
			if err := l.clipboard(entry.Payload); err != nil {
				return action.NewError("Copy log line", err), nil
			}
		}
	}
	return nil, nil
}

func (l *logs) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		if l.switchTo(action.Logs, a) {
			if err := l.Send(action.SearchInputSet{Pattern: l.list.pattern()}); err != nil {
				return nil, err
			}
			if l.supervisor != nil {
				if _, err := l.supervisor.Ensure(api.EndpointLogs, l.params(), l.dispatcher.Handler(api.EndpointLogs)); err != nil {
					return action.NewError("Restart log stream", err), nil
				}
			}
			return action.LiveMode{On: l.live()}, nil
		}
	case action.SearchInputChanged:
		if l.active {
			l.list.setPattern(a.Pattern)
		}
	case action.Tick:
		if l.live() && l.list.store.Stale() {
			l.list.refresh()
		} else {
			l.list.sync()
		}
	case action.LogLevelChanged:
		if a.Level == l.level {
			return nil, nil
		}
		l.level = a.Level
		if l.supervisor == nil {
			return nil, nil
		}
		if _, err := l.supervisor.Start(api.EndpointLogs, l.params(), l.dispatcher.Handler(api.EndpointLogs)); err != nil {
			return action.NewError("Restart log stream", err), nil
		}
	}
	return nil, nil
}

func (l *logs) Draw(area component.Area) (string, error) {
	return l.list.draw(area, "Logs ("+string(l.level)+")"), nil
}
