package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
)

// chrome is the number of lines taken by the header, search bar and footer.
const chrome = 3

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.frame == "" {
		m.redraw()
	}
	return m.frame
}

// redraw renders every visible component into the cached frame. A failing
// component is reported once per distinct error.
func (m *Model) redraw() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	full := component.Area{Width: m.width, Height: 1}
	main := component.Area{Width: m.width, Height: max(m.height-chrome, 1)}

	header := m.draw(action.Header, full)
	search := m.draw(action.Search, full)
	body := fit(m.draw(m.active, main), main.Width, main.Height)
	for _, id := range m.focus {
		if !id.IsPopup() {
			continue
		}
		body = overlay(body, m.draw(id, main), main.Width)
	}
	footer := m.draw(action.Footer, full)

	lines := make([]string, 0, m.height)
	lines = append(lines, fitLine(header, m.width), fitLine(search, m.width))
	lines = append(lines, body...)
	lines = append(lines, fitLine(footer, m.width))
	m.frame = strings.Join(lines, "\n")
}

func (m *Model) draw(id action.ComponentID, area component.Area) string {
	c, ok := m.registry.Get(id)
	if !ok {
		return ""
	}
	out, err := c.Draw(area)
	if err != nil {
		if msg := id.String() + ": " + err.Error(); msg != m.drawErr {
			m.drawErr = msg
			m.send(action.Error{Title: "Draw", Detail: msg})
		}
		return ""
	}
	return out
}

func fitLine(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return ansi.Truncate(s, width, "")
}

// fit cuts s to exactly height lines no wider than width.
func fit(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// overlay draws popup centred over base, keeping the base visible around it.
func overlay(base []string, popup string, width int) []string {
	if popup == "" {
		return base
	}
	rows := strings.Split(popup, "\n")
	if len(rows) > len(base) {
		rows = rows[:len(base)]
	}
	popupWidth := 0
	for _, row := range rows {
		popupWidth = max(popupWidth, ansi.StringWidth(row))
	}
	popupWidth = min(popupWidth, width)
	top := (len(base) - len(rows)) / 2
	left := (width - popupWidth) / 2

	out := append([]string(nil), base...)
	for i, row := range rows {
		line := out[top+i]
		row = ansi.Truncate(row, popupWidth, "")
		pad := popupWidth - ansi.StringWidth(row)
		prefix := ansi.Truncate(line, left, "")
		if gap := left - ansi.StringWidth(prefix); gap > 0 {
			prefix += strings.Repeat(" ", gap)
		}
		suffix := ansi.TruncateLeft(line, left+popupWidth, "")
		out[top+i] = prefix + row + strings.Repeat(" ", pad) + suffix
	}
	return out
}
