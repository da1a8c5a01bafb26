// Package components holds the widgets hosted by the root dispatcher: the
// header and footer, the search bar, one component per tab and the popups.
package components

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/data/dispatcher"
	"github.com/potoo0/mihomo-tui-sub000/internal/ingest"
	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
	"github.com/potoo0/mihomo-tui-sub000/internal/settings"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

// Deps are the shared handles passed to every component constructor.
type Deps struct {
	Dispatcher *dispatcher.Dispatcher
	Supervisor *ingest.Supervisor
	Commands   *command.Bus
	Settings   *settings.Handle
	Styles     *theme.Styles
	// Graph holds the latest proxies snapshot, shared by the proxies tab and
	// the group detail popup.
	Graph *store.Value[*proxy.Graph]
	// Providers holds the latest proxy providers snapshot.
	Providers *store.Value[[]proxy.ProviderView]
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

func (d Deps) withDefaults() Deps {
	if d.Styles == nil {
		d.Styles = theme.Default()
	}
	if d.Graph == nil {
		d.Graph = &store.Value[*proxy.Graph]{}
	}
	if d.Providers == nil {
		d.Providers = &store.Value[[]proxy.ProviderView]{}
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}
	if d.Settings == nil {
		d.Settings = settings.NewHandle(settings.Default(), "")
	}
	return d
}

// New builds the component for id.
func New(id action.ComponentID, deps Deps) component.Component {
	deps = deps.withDefaults()
	switch id {
	case action.Help:
		return newHelp(deps)
	case action.Root:
		return newRoot(deps)
	case action.Header:
		return newHeader(deps)
	case action.Footer:
		return newFooter(deps)
	case action.Overview:
		return newOverview(deps)
	case action.ConnectionDetail:
		return newConnectionDetail(deps)
	case action.ConnectionTerminate:
		return newConnectionTerminate(deps)
	case action.Connections:
		return newConnections(deps)
	case action.Proxies:
		return newProxies(deps)
	case action.ProxyDetail:
		return newProxyDetail(deps)
	case action.ProxySetting:
		return newProxySetting(deps)
	case action.ProxyProviders:
		return newProxyProviders(deps)
	case action.ProxyProviderDetail:
		return newProxyProviderDetail(deps)
	case action.Logs:
		return newLogs(deps)
	case action.Rules:
		return newRules(deps)
	case action.Search:
		return newSearch(deps)
	case action.RuleProviders:
		return newRuleProviders(deps)
	case action.CoreConfig:
		return newCoreConfig(deps)
	case action.ErrorOverlay:
		return newErrorOverlay(deps)
	default:
		panic(fmt.Sprintf("no component for %s", id))
	}
}

// Factory adapts New to the registry.
func Factory(deps Deps) component.Factory {
	deps = deps.withDefaults()
	return func(id action.ComponentID) component.Component {
		return New(id, deps)
	}
}
