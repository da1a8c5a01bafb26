package action

// ComponentID identifies a visual unit. The set is closed; the registry holds
// at most one live instance per identity.
type ComponentID int

const (
	Help ComponentID = iota
	Root
	Header
	Footer
	Overview
	ConnectionDetail
	ConnectionTerminate
	Connections
	Proxies
	ProxyDetail
	ProxySetting
	ProxyProviders
	ProxyProviderDetail
	Logs
	Rules
	Search
	RuleProviders
	CoreConfig
	ErrorOverlay

	componentCount
)

var componentNames = [...]string{
	Help:                "Help",
	Root:                "Root",
	Header:              "Header",
	Footer:              "Footer",
	Overview:            "Overview",
	ConnectionDetail:    "ConnectionDetail",
	ConnectionTerminate: "ConnectionTerminate",
	Connections:         "Connections",
	Proxies:             "Proxies",
	ProxyDetail:         "ProxyDetail",
	ProxySetting:        "ProxySetting",
	ProxyProviders:      "ProxyProviders",
	ProxyProviderDetail: "ProxyProviderDetail",
	Logs:                "Logs",
	Rules:               "Rules",
	Search:              "Search",
	RuleProviders:       "RuleProviders",
	CoreConfig:          "CoreConfig",
	ErrorOverlay:        "ErrorOverlay",
}

// Tabs lists the header tabs in display order. The index drives numeric
// shortcuts and tab cycling.
var Tabs = []ComponentID{
	Overview,
	Connections,
	Proxies,
	ProxyProviders,
	Logs,
	Rules,
	RuleProviders,
	CoreConfig,
}

// AllComponents returns every identity in dispatch order.
func AllComponents() []ComponentID {
	ids := make([]ComponentID, 0, componentCount)
	for id := ComponentID(0); id < componentCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Valid reports whether id belongs to the closed identity set.
func (id ComponentID) Valid() bool {
	return id >= 0 && id < componentCount
}

func (id ComponentID) String() string {
	if !id.Valid() {
		return "Unknown"
	}
	return componentNames[id]
}

// ShortName is the label used in the tab bar.
func (id ComponentID) ShortName() string {
	switch id {
	case Overview:
		return "View"
	case Connections:
		return "Conn"
	case Proxies:
		return "Pxy"
	case ProxyProviders:
		return "Pxy-Pr"
	case Logs:
		return "Log"
	case Rules:
		return "Rule"
	case RuleProviders:
		return "Rule-Pr"
	case CoreConfig:
		return "Cfg"
	default:
		return id.String()
	}
}

// TabIndex returns the position of id in Tabs, or -1.
func TabIndex(id ComponentID) int {
	for i, tab := range Tabs {
		if tab == id {
			return i
		}
	}
	return -1
}

// IsPopup reports whether id is drawn as an overlay that takes key focus.
func (id ComponentID) IsPopup() bool {
	switch id {
	case Help, ConnectionDetail, ConnectionTerminate, ProxyDetail, ProxySetting,
		ProxyProviderDetail, ErrorOverlay:
		return true
	default:
		return false
	}
}
