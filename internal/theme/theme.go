package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Tab          *lipgloss.Style
	ActiveTab    *lipgloss.Style
	Header       *lipgloss.Style
	Footer       *lipgloss.Style
	Key          *lipgloss.Style
	Muted        *lipgloss.Style
	Info         *lipgloss.Style
	Error        *lipgloss.Style
	Title        *lipgloss.Style
	Popup        *lipgloss.Style
	ErrorPopup   *lipgloss.Style
	TableHeader  *lipgloss.Style
	Row          *lipgloss.Style
	SelectedRow  *lipgloss.Style
	InactiveRow  *lipgloss.Style
	Filter       *lipgloss.Style
	FilterPrompt *lipgloss.Style
	Live         *lipgloss.Style
	Paused       *lipgloss.Style
	Fast         *lipgloss.Style
	Medium       *lipgloss.Style
	Slow         *lipgloss.Style
	NotConnected *lipgloss.Style
}

var defaultStyles = Styles{
	Tab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
	),
	ActiveTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("33")).Bold(true).Padding(0, 1),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Key: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	),
	Muted: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Title: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	),
	Popup: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")).Padding(0, 1),
	),
	ErrorPopup: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 1),
	),
	TableHeader: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true).Underline(true),
	),
	Row: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	),
	SelectedRow: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	InactiveRow: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
	),
	Filter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FilterPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	Live: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("34")).Padding(0, 1),
	),
	Paused: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1),
	),
	Fast: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("#00A63E")),
	),
	Medium: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("#F0B100")),
	),
	Slow: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FB2C36")),
	),
	NotConnected: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

// Quality returns the style for a latency bucket.
func (s *Styles) Quality(q proxy.Quality) *lipgloss.Style {
	switch q {
	case proxy.Fast:
		return s.Fast
	case proxy.Medium:
		return s.Medium
	case proxy.Slow:
		return s.Slow
	default:
		return s.NotConnected
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
