// Package action defines the closed set of events that drive component state.
// Every variant is an immutable value; large payloads travel by pointer and
// must not be mutated after emission.
package action

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
)

// Action is implemented only by the types in this package.
type Action interface {
	isAction()
}

// Sender enqueues actions for the dispatcher.
type Sender interface {
	Send(Action) error
}

type (
	Tick        struct{}
	Render      struct{}
	Suspend     struct{}
	Resume      struct{}
	ClearScreen struct{}
	Quit        struct{}
	ToggleHelp  struct{}
	Unfocus     struct{}

	Resize struct {
		Width  int
		Height int
	}

	// Error is surfaced through the error overlay and the footer.
	Error struct {
		Title  string
		Detail string
	}

	TabSwitch struct {
		To ComponentID
	}

	Focus struct {
		ID ComponentID
	}

	Shortcuts struct {
		Bindings []key.Binding
	}

	// SearchInputChanged is emitted when the user edits the filter. A nil
	// pattern clears the filter.
	SearchInputChanged struct {
		Pattern *string
	}

	// SearchInputSet replaces the search text without a change notification.
	SearchInputSet struct {
		Pattern *string
	}

	LiveMode struct {
		On bool
	}

	RequestConnectionDetail struct {
		Index int
	}

	// ConnectionDetailOpen carries the connection at Index of the current
	// connections view.
	ConnectionDetailOpen struct {
		Index int
		Conn  *api.Connection
	}

	// ConnectionTerminateRequest asks for confirmation before closing Conn,
	// or every connection when Conn is nil.
	ConnectionTerminateRequest struct {
		Conn *api.Connection
	}

	ConnectionStats struct {
		Stat api.ConnectionStat
	}

	MemoryUpdate struct {
		Memory api.Memory
	}

	TrafficUpdate struct {
		Traffic api.Traffic
	}

	VersionLoaded struct {
		Version api.Version
	}

	ProxiesRefresh struct{}

	ProxyDetailOpen struct {
		Group *proxy.GroupView
	}

	// ProxyDetailRefresh is sent when a new proxies snapshot lands. The detail
	// popup re-reads its group and, when Index >= 0, moves its cursor there.
	ProxyDetailRefresh struct {
		Index int
	}

	ProxyUpdateRequest struct {
		Group string
		Name  string
	}

	ProxyTestRequest struct {
		Name string
	}

	ProxyGroupTestRequest struct {
		Name string
	}

	ProxySettingOpen struct{}

	ProxyProviderRefresh struct{}

	ProxyProviderDetailOpen struct {
		Provider *proxy.ProviderView
	}

	LogLevelChanged struct {
		Level api.LogLevel
	}
)

func (Tick) isAction()                       {}
func (Render) isAction()                     {}
func (Suspend) isAction()                    {}
func (Resume) isAction()                     {}
func (ClearScreen) isAction()                {}
func (Quit) isAction()                       {}
func (ToggleHelp) isAction()                 {}
func (Unfocus) isAction()                    {}
func (Resize) isAction()                     {}
func (Error) isAction()                      {}
func (TabSwitch) isAction()                  {}
func (Focus) isAction()                      {}
func (Shortcuts) isAction()                  {}
func (SearchInputChanged) isAction()         {}
func (SearchInputSet) isAction()             {}
func (LiveMode) isAction()                   {}
func (RequestConnectionDetail) isAction()    {}
func (ConnectionDetailOpen) isAction()       {}
func (ConnectionTerminateRequest) isAction() {}
func (ConnectionStats) isAction()            {}
func (MemoryUpdate) isAction()               {}
func (TrafficUpdate) isAction()              {}
func (VersionLoaded) isAction()              {}
func (ProxiesRefresh) isAction()             {}
func (ProxyDetailOpen) isAction()            {}
func (ProxyDetailRefresh) isAction()         {}
func (ProxyUpdateRequest) isAction()         {}
func (ProxyTestRequest) isAction()           {}
func (ProxyGroupTestRequest) isAction()      {}
func (ProxySettingOpen) isAction()           {}
func (ProxyProviderRefresh) isAction()       {}
func (ProxyProviderDetailOpen) isAction()    {}
func (LogLevelChanged) isAction()            {}

// NewError builds an Error action from a failed operation.
func NewError(title string, err error) Error {
	if err == nil {
		return Error{Title: title}
	}
	return Error{Title: title, Detail: err.Error()}
}

// Name returns the variant name used in trace output.
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", a)[len("action."):]
}

// Periodic reports whether a is one of the timer driven actions that are too
// frequent to trace.
func Periodic(a Action) bool {
	switch a.(type) {
	case Tick, Render:
		return true
	default:
		return false
	}
}

// Pattern wraps s as a search pattern; blank input means no filter.
func Pattern(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
