package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/format/table"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/state"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// listView renders a store view as a scrollable table and owns the search
// state the view is computed with.
type listView[T any] struct {
	store  *store.Store[T]
	search view.SearchState
	cursor state.Cursor
	page   int
	styles *theme.Styles
	// rowStyle overrides the default row style when it returns non-nil.
	rowStyle func(T) *lipgloss.Style
}

func newListView[T any](s *store.Store[T], styles *theme.Styles) *listView[T] {
	return &listView[T]{
		store:  s,
		search: view.NewSearchState(len(s.Columns())),
		styles: styles,
	}
}

// compute publishes the search state to the store and rebuilds the view.
func (l *listView[T]) compute() {
	l.store.ComputeView(l.search)
	l.sync()
}

// refresh rebuilds the view with the published search state.
func (l *listView[T]) refresh() {
	l.store.Refresh()
	l.sync()
}

func (l *listView[T]) sync() {
	l.cursor.SetTotal(l.store.ViewLen())
}

func (l *listView[T]) setPattern(p *string) {
	l.search.SetPattern(p)
	l.compute()
}

func (l *listView[T]) pattern() *string {
	return l.search.Clone().Pattern
}

func (l *listView[T]) selected() (T, bool) {
	return l.store.Get(l.cursor.Index)
}

// handleKey applies navigation and sort keys. It reports whether msg was
// consumed.
func (l *listView[T]) handleKey(msg tea.KeyMsg) bool {
	l.sync()
	switch {
	case key.Matches(msg, keyUp):
		l.cursor.MoveCursorUp()
	case key.Matches(msg, keyDown):
		l.cursor.MoveCursorDown()
	case key.Matches(msg, keyPageUp):
		l.cursor.MoveCursorPageUp(l.page)
	case key.Matches(msg, keyPageDown):
		l.cursor.MoveCursorPageDown(l.page)
	case key.Matches(msg, keyHome):
		l.cursor.MoveCursorHome()
	case key.Matches(msg, keyEnd):
		l.cursor.MoveCursorEnd()
	case key.Matches(msg, keySortNext):
		l.cycleSort(true)
	case key.Matches(msg, keySortPrev):
		l.cycleSort(false)
	case key.Matches(msg, keySortRev):
		if l.search.Sort == nil {
			return true
		}
		l.search.SortRev()
		l.compute()
	default:
		return false
	}
	return true
}

// cycleSort moves to the next sortable column, skipping the others.
func (l *listView[T]) cycleSort(forward bool) {
	cols := l.store.Columns()
	if len(cols.Sortable()) == 0 {
		return
	}
	for i := 0; i < len(cols); i++ {
		if forward {
			l.search.SortNext()
		} else {
			l.search.SortPrev()
		}
		if cols[l.search.Sort.Col].Sortable {
			break
		}
	}
	l.compute()
}

// draw renders a title line, the column header and one line per visible row.
func (l *listView[T]) draw(area component.Area, title string) string {
	body := area.Height - 2
	if body < 1 {
		body = 1
	}
	l.page = body
	l.sync()
	l.cursor.EnsureCursorVisible(body)

	cols := l.store.Columns()
	rows := l.store.Window(l.cursor.ViewportOffset, body)
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, l.headers(cols))
	for _, r := range rows {
		cells = append(cells, cols.Row(r))
	}
	aligns := make([]table.Alignment, len(cols))
	for i, c := range cols {
		if c.AlignRight {
			aligns[i] = table.AlignRight
		}
	}
	lines := table.Format(cells, aligns, area.Width)

	var b strings.Builder
	b.WriteString(l.styles.Title.Render(l.titleLine(title)))
	b.WriteString("\n")
	b.WriteString(l.styles.TableHeader.Render(lines[0]))
	for i, line := range lines[1:] {
		b.WriteString("\n")
		style := l.styles.Row
		if l.rowStyle != nil {
			if s := l.rowStyle(rows[i]); s != nil {
				style = s
			}
		}
		if l.cursor.ViewportOffset+i == l.cursor.Index {
			style = l.styles.SelectedRow
		}
		b.WriteString(style.Render(line))
	}
	return b.String()
}

func (l *listView[T]) titleLine(title string) string {
	s := fmt.Sprintf("%s [%d/%d]", title, l.store.ViewLen(), l.store.Len())
	if p := l.search.PatternText(); p != "" {
		s += fmt.Sprintf(" /%s", p)
	}
	return s
}

func (l *listView[T]) headers(cols view.Columns[T]) []string {
	titles := cols.Titles()
	if sort := l.search.Sort; sort != nil && sort.Col < len(titles) && cols[sort.Col].Sortable {
		marker := "↓"
		if sort.Dir == view.Asc {
			marker = "↑"
		}
		titles[sort.Col] += marker
	}
	return titles
}
