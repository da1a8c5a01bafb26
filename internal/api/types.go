package api

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Version is the payload of GET /version.
type Version struct {
	Meta    bool   `json:"meta"`
	Version string `json:"version"`
}

// String renders the core name together with its version.
func (v Version) String() string {
	if v.Version == "" {
		return ""
	}
	if v.Meta {
		return "Clash(Meta) " + v.Version
	}
	return "Clash " + v.Version
}

// Memory is one frame of the /memory stream.
type Memory struct {
	InUse   uint64 `json:"inuse"`
	OSLimit uint64 `json:"oslimit"`
}

// Traffic is one frame of the /traffic stream, in bytes per second.
type Traffic struct {
	Up   uint64 `json:"up"`
	Down uint64 `json:"down"`
}

// ConnectionsSnapshot is one frame of the /connections stream.
type ConnectionsSnapshot struct {
	DownloadTotal uint64       `json:"downloadTotal"`
	UploadTotal   uint64       `json:"uploadTotal"`
	Connections   []Connection `json:"connections"`
	Memory        uint64       `json:"memory"`
}

// ConnectionStat summarises a snapshot for the overview and header.
type ConnectionStat struct {
	Count     int
	Memory    uint64
	DownTotal uint64
	UpTotal   uint64
}

// Stat derives the aggregate counters for s.
func (s ConnectionsSnapshot) Stat() ConnectionStat {
	return ConnectionStat{
		Count:     len(s.Connections),
		Memory:    s.Memory,
		DownTotal: s.DownloadTotal,
		UpTotal:   s.UploadTotal,
	}
}

// Connection mirrors an entry of the /connections stream. The rate and
// inactive fields are derived locally and never sent by the core.
type Connection struct {
	ID          string    `json:"id"`
	Metadata    Metadata  `json:"metadata"`
	Upload      uint64    `json:"upload"`
	Download    uint64    `json:"download"`
	Start       time.Time `json:"start"`
	Chains      []string  `json:"chains"`
	Rule        string    `json:"rule"`
	RulePayload string    `json:"rulePayload"`

	UploadRate   uint64 `json:"-"`
	DownloadRate uint64 `json:"-"`
	Inactive     bool   `json:"-"`
}

// Metadata holds the connection endpoints. Ports arrive either as JSON
// numbers or strings depending on the core version.
type Metadata struct {
	Network         string `json:"network"`
	Type            string `json:"type"`
	SourceIP        string `json:"sourceIP"`
	DestinationIP   string `json:"destinationIP"`
	SourcePort      Port   `json:"sourcePort"`
	DestinationPort Port   `json:"destinationPort"`
	InboundName     string `json:"inboundName"`
	Host            string `json:"host"`
	DNSMode         string `json:"dnsMode"`
	Process         string `json:"process"`
	ProcessPath     string `json:"processPath"`
	SniffHost       string `json:"sniffHost"`
	SpecialProxy    string `json:"specialProxy"`
	RemoteDest      string `json:"remoteDestination"`
}

// Port accepts `443` and `"443"`.
type Port string

func (p *Port) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Port(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode port: %w", err)
	}
	if _, err := strconv.ParseUint(n.String(), 10, 16); err != nil {
		return fmt.Errorf("decode port %s: %w", n, err)
	}
	*p = Port(n.String())
	return nil
}

// HostPort is the destination shown in the connections table. The sniffed
// host wins over the destination address; IPv6 addresses are bracketed.
func (c *Connection) HostPort() string {
	port := string(c.Metadata.DestinationPort)
	if h := strings.TrimSpace(c.Metadata.Host); h != "" {
		return h + ":" + port
	}
	if c.Metadata.DestinationIP == "" {
		return ":" + port
	}
	return net.JoinHostPort(c.Metadata.DestinationIP, port)
}

// ChainPath renders the proxy chain from the rule target to the outbound.
func (c *Connection) ChainPath() string {
	parts := make([]string, 0, len(c.Chains))
	for i := len(c.Chains) - 1; i >= 0; i-- {
		parts = append(parts, c.Chains[i])
	}
	return strings.Join(parts, " > ")
}

// LogLevel selects the verbosity of the /logs stream.
type LogLevel string

const (
	LogLevelError   LogLevel = "error"
	LogLevelWarning LogLevel = "warning"
	LogLevelInfo    LogLevel = "info"
	LogLevelDebug   LogLevel = "debug"
)

// LogLevels lists the stream levels from least to most verbose.
var LogLevels = []LogLevel{LogLevelError, LogLevelWarning, LogLevelInfo, LogLevelDebug}

// ParseLogLevel accepts the stream level names and the common "warn" alias.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError, nil
	case "warning", "warn":
		return LogLevelWarning, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// Log is one frame of the /logs stream.
type Log struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// DelayHistory is one latency test result. A delay of zero means timeout.
type DelayHistory struct {
	Time  time.Time `json:"time"`
	Delay int64     `json:"delay"`
}

// Proxy is an entry of GET /proxies. Groups carry All and Now.
type Proxy struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	UDP     bool           `json:"udp"`
	Hidden  bool           `json:"hidden"`
	All     []string       `json:"all"`
	Now     string         `json:"now"`
	TestURL string         `json:"testUrl"`
	History []DelayHistory `json:"history"`
}

type proxiesResponse struct {
	Proxies map[string]Proxy `json:"proxies"`
}

// SubscriptionInfo reports provider traffic usage and expiry (unix seconds).
type SubscriptionInfo struct {
	Download uint64 `json:"Download"`
	Upload   uint64 `json:"Upload"`
	Total    uint64 `json:"Total"`
	Expire   int64  `json:"Expire"`
}

// Used returns the consumed bytes.
func (s SubscriptionInfo) Used() uint64 {
	return s.Download + s.Upload
}

// ExpireAt returns the expiry time, or the zero time when unlimited.
func (s SubscriptionInfo) ExpireAt() time.Time {
	if s.Expire <= 0 {
		return time.Time{}
	}
	return time.Unix(s.Expire, 0)
}

// Provider is an entry of GET /providers/proxies.
type Provider struct {
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	VehicleType      string            `json:"vehicleType"`
	Proxies          []Proxy           `json:"proxies"`
	TestURL          string            `json:"testUrl"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	SubscriptionInfo *SubscriptionInfo `json:"subscriptionInfo,omitempty"`
}

// Updatable reports whether the provider is backed by a remote or file source.
func (p *Provider) Updatable() bool {
	return p.VehicleType == "HTTP" || p.VehicleType == "File"
}

type providersResponse struct {
	Providers map[string]Provider `json:"providers"`
}

// Rule is an entry of GET /rules. Index and Extra are only sent by cores
// that support toggling rules.
type Rule struct {
	Type    string     `json:"type"`
	Payload string     `json:"payload"`
	Proxy   string     `json:"proxy"`
	Size    int        `json:"size"`
	Index   *int       `json:"index,omitempty"`
	Extra   *RuleExtra `json:"extra,omitempty"`
}

// RuleExtra carries runtime rule state.
type RuleExtra struct {
	Disabled  bool      `json:"disabled"`
	HitCount  uint64    `json:"hitCount"`
	HitAt     time.Time `json:"hitAt"`
	MissCount uint64    `json:"missCount"`
	MissAt    time.Time `json:"missAt"`
}

// SupportsDisable reports whether the core exposes per-rule toggling.
func (r *Rule) SupportsDisable() bool {
	return r.Index != nil && r.Extra != nil
}

type rulesResponse struct {
	Rules []Rule `json:"rules"`
}

// RuleProvider is an entry of GET /providers/rules.
type RuleProvider struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Behavior    string    `json:"behavior"`
	Format      string    `json:"format"`
	VehicleType string    `json:"vehicleType"`
	RuleCount   int       `json:"ruleCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ruleProvidersResponse struct {
	Providers map[string]RuleProvider `json:"providers"`
}

type delayResponse struct {
	Delay int64 `json:"delay"`
}
