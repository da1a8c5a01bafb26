package components

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/model"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

// maxRules bounds the rules buffer.
const maxRules = 1 << 16

// rules lists the routing rules. Disabled flags are edited locally and
// submitted together.
type rules struct {
	component.Base
	tabState
	commands *command.Bus
	list     *listView[*model.RuleRow]
	loading  throbber
	pending  int
}

func newRules(deps Deps) *rules {
	list := newListView(store.New("rules", maxRules, model.RuleColumns()), deps.Styles)
	list.rowStyle = func(r *model.RuleRow) *lipgloss.Style {
		if r.Changed() {
			return deps.Styles.Medium
		}
		if r.Want() {
			return deps.Styles.InactiveRow
		}
		return nil
	}
	return &rules{
		Base:     component.NewBase(action.Rules),
		commands: deps.Commands,
		list:     list,
	}
}

func (r *rules) Shortcuts() []key.Binding {
	return append([]key.Binding{keyToggle, keySubmit, keyRefresh}, tableKeys...)
}

func (r *rules) Init(src api.DataSource) error {
	if err := r.Base.Init(src); err != nil {
		return err
	}
	r.fetch()
	return nil
}

func (r *rules) fetch() {
	if r.commands == nil || r.Source == nil {
		return
	}
	r.loading.start()
	s := r.list.store
	command.Query(r.commands, "rules", "Load rules", r.Source.Rules, func(list []api.Rule) action.Action {
		s.Replace(model.NewRuleRows(list))
		return action.Render{}
	})
}

// submit sends every pending toggle and reloads the rules.
func (r *rules) submit() {
	changes := model.PendingChanges(r.list.store.Raw())
	if len(changes) == 0 || r.Source == nil {
		return
	}
	src, s := r.Source, r.list.store
	r.loading.start()
	mutation(r.commands, "rules:disable", "Update rules", func(ctx context.Context) error {
		if err := src.DisableRules(ctx, changes); err != nil {
			return err
		}
		list, err := src.Rules(ctx)
		if err != nil {
			return fmt.Errorf("reload rules: %w", err)
		}
		s.Replace(model.NewRuleRows(list))
		return nil
	}, action.Render{})
}

func (r *rules) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if r.list.handleKey(msg) {
		return nil, nil
	}
	switch {
	case key.Matches(msg, keySearch):
		return action.Focus{ID: action.Search}, nil
	case key.Matches(msg, keyToggle):
		if row, ok := r.list.selected(); ok && row.Toggle() {
			r.countPending()
		}
	case key.Matches(msg, keySubmit):
		r.submit()
	case key.Matches(msg, keyRefresh):
		r.fetch()
	}
	return nil, nil
}

func (r *rules) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		if r.switchTo(action.Rules, a) {
			return action.SearchInputSet{Pattern: r.list.pattern()}, nil
		}
	case action.SearchInputChanged:
		if r.active {
			r.list.setPattern(a.Pattern)
		}
	case action.Error:
		r.loading.stop()
	case action.Tick:
		r.loading.tick()
		r.reload()
	case action.Render:
		r.reload()
	}
	return nil, nil
}

func (r *rules) reload() {
	if !r.list.store.Stale() {
		return
	}
	r.loading.stop()
	r.list.refresh()
	r.countPending()
}

func (r *rules) countPending() {
	r.pending = len(model.PendingChanges(r.list.store.Raw()))
}

func (r *rules) Draw(area component.Area) (string, error) {
	title := "Rules"
	if r.pending > 0 {
		title += fmt.Sprintf(" (%d pending)", r.pending)
	}
	return r.list.draw(area, title+r.loading.view()), nil
}
