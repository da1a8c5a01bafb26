package components

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

var keyDoneSearch = binding("enter", "apply", "enter", "esc")

// search is the filter line. Edits are reported on the next tick so a burst
// of keystrokes recomputes the view once.
type search struct {
	component.Base
	styles *theme.Styles
	input  textinput.Model

	focused bool
	enabled bool
	dirty   bool
}

func newSearch(deps Deps) *search {
	in := textinput.New()
	in.Prompt = "/ "
	in.PromptStyle = *deps.Styles.FilterPrompt
	in.TextStyle = *deps.Styles.Filter
	in.Placeholder = "filter"
	in.Cursor.SetMode(cursor.CursorStatic)
	return &search{Base: component.NewBase(action.Search), styles: deps.Styles, input: in}
}

func (s *search) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if key.Matches(msg, keyDoneSearch) {
		if s.dirty {
			s.dirty = false
			if err := s.Send(action.SearchInputChanged{Pattern: action.Pattern(s.input.Value())}); err != nil {
				return nil, err
			}
		}
		return action.Unfocus{}, nil
	}
	before := s.input.Value()
	s.input, _ = s.input.Update(msg)
	if s.input.Value() != before {
		s.dirty = true
	}
	return nil, nil
}

func (s *search) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.Focus:
		if a.ID == action.Search {
			s.focused = true
			s.input.Focus()
		}
	case action.Unfocus:
		s.focused = false
		s.input.Blur()
	case action.TabSwitch:
		s.enabled = searchable(a.To)
		s.input.SetValue("")
		s.dirty = false
	case action.SearchInputSet:
		value := ""
		if a.Pattern != nil {
			value = *a.Pattern
		}
		s.input.SetValue(value)
		s.input.CursorEnd()
		s.dirty = false
	case action.Tick:
		if s.dirty {
			s.dirty = false
			return action.SearchInputChanged{Pattern: action.Pattern(s.input.Value())}, nil
		}
	}
	return nil, nil
}

func (s *search) Draw(area component.Area) (string, error) {
	if !s.enabled {
		return "", nil
	}
	if !s.focused && s.input.Value() == "" {
		return s.styles.Muted.Render("press / to filter"), nil
	}
	s.input.Width = max(area.Width-len(s.input.Prompt)-1, 1)
	return s.input.View(), nil
}
