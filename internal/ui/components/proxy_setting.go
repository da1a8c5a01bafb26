package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/settings"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
)

const (
	fieldURL = iota
	fieldTimeout
	fieldThreshold
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldURL:       "Test URL",
	fieldTimeout:   "Timeout (ms)",
	fieldThreshold: "Threshold (good,bad)",
}

// proxySetting edits the latency test settings. Invalid input stays in the
// form with an inline message.
type proxySetting struct {
	component.Base
	styles   *theme.Styles
	settings *settings.Handle

	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newProxySetting(deps Deps) *proxySetting {
	s := &proxySetting{
		Base:     component.NewBase(action.ProxySetting),
		styles:   deps.Styles,
		settings: deps.Settings,
	}
	for i := range s.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.TextStyle = *deps.Styles.Filter
		s.inputs[i] = in
	}
	s.inputs[fieldTimeout].CharLimit = 5
	return s
}

func (s *proxySetting) Shortcuts() []key.Binding {
	return []key.Binding{keyNextField, keyPrevField, keySave, keyCancelForm}
}

func (s *proxySetting) load() {
	cur := s.settings.Get()
	s.inputs[fieldURL].SetValue(cur.TestURL)
	s.inputs[fieldTimeout].SetValue(strconv.FormatInt(cur.Timeout, 10))
	s.inputs[fieldThreshold].SetValue(settings.FormatThreshold(cur.Threshold))
	s.err = ""
	s.setFocus(fieldURL)
}

func (s *proxySetting) setFocus(i int) {
	s.focus = (i + fieldCount) % fieldCount
	for j := range s.inputs {
		if j == s.focus {
			s.inputs[j].Focus()
			s.inputs[j].CursorEnd()
		} else {
			s.inputs[j].Blur()
		}
	}
}

// parse validates every field.
func (s *proxySetting) parse() (settings.Settings, error) {
	out := s.settings.Get()
	u, err := settings.ValidateURL(s.inputs[fieldURL].Value())
	if err != nil {
		return out, err
	}
	timeout, err := settings.ParseTimeout(s.inputs[fieldTimeout].Value())
	if err != nil {
		return out, err
	}
	threshold, err := settings.ParseThreshold(s.inputs[fieldThreshold].Value())
	if err != nil {
		return out, err
	}
	out.TestURL = u
	out.Timeout = timeout
	out.Threshold = threshold
	return out, nil
}

func (s *proxySetting) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyCancelForm):
		return action.Unfocus{}, nil
	case key.Matches(msg, keyNextField):
		s.setFocus(s.focus + 1)
	case key.Matches(msg, keyPrevField):
		s.setFocus(s.focus - 1)
	case key.Matches(msg, keySave):
		next, err := s.parse()
		if err != nil {
			s.err = err.Error()
			return nil, nil
		}
		s.err = ""
		// the value is applied even when persisting it fails; the error is
		// queued after Unfocus so the overlay opens on top of the tab
		saveErr := s.settings.Set(next)
		if err := s.Send(action.Unfocus{}); err != nil {
			return nil, err
		}
		if err := s.Send(action.ProxiesRefresh{}); err != nil {
			return nil, err
		}
		if saveErr != nil {
			return action.NewError("Save proxy settings", saveErr), nil
		}
		return nil, nil
	default:
		s.inputs[s.focus], _ = s.inputs[s.focus].Update(msg)
		s.err = ""
	}
	return nil, nil
}

func (s *proxySetting) Update(a action.Action) (action.Action, error) {
	if _, ok := a.(action.ProxySettingOpen); ok {
		s.load()
	}
	return nil, nil
}

func (s *proxySetting) Draw(area component.Area) (string, error) {
	w, h := popupSize(component.Area{Width: min(area.Width, 80), Height: min(area.Height, 12)})
	labelWidth := 0
	for _, l := range fieldLabels {
		labelWidth = max(labelWidth, len(l))
	}
	var b strings.Builder
	for i := range s.inputs {
		s.inputs[i].Width = max(w-labelWidth-3, 1)
		label := fieldLabels[i] + strings.Repeat(" ", labelWidth-len(fieldLabels[i]))
		if i == s.focus {
			label = s.styles.Key.Render(label)
		} else {
			label = s.styles.Header.Render(label)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label + "  " + s.inputs[i].View())
	}
	if s.err != "" {
		b.WriteString("\n\n" + s.styles.Error.Render(s.err))
	}
	return renderPopup(s.styles.Popup, s.styles.Title, "Proxy settings", b.String(), w, h), nil
}
