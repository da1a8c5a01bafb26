package components

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/model"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

const maxRuleProviders = 1024

var keyUpdateAll = binding("A", "update all", "A")

type ruleProviders struct {
	component.Base
	tabState
	commands *command.Bus
	list     *listView[api.RuleProvider]
	loading  throbber
}

func newRuleProviders(deps Deps) *ruleProviders {
	return &ruleProviders{
		Base:     component.NewBase(action.RuleProviders),
		commands: deps.Commands,
		list:     newListView(store.New("rule_providers", maxRuleProviders, model.RuleProviderColumns()), deps.Styles),
	}
}

func (r *ruleProviders) Shortcuts() []key.Binding {
	return append([]key.Binding{keyUpdate, keyUpdateAll, keyRefresh}, tableKeys...)
}

func (r *ruleProviders) Init(src api.DataSource) error {
	if err := r.Base.Init(src); err != nil {
		return err
	}
	r.fetch()
	return nil
}

func sortedRuleProviders(m map[string]api.RuleProvider) []api.RuleProvider {
	out := make([]api.RuleProvider, 0, len(m))
	for name, p := range m {
		if p.Name == "" {
			p.Name = name
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *ruleProviders) fetch() {
	if r.commands == nil || r.Source == nil {
		return
	}
	r.loading.start()
	s := r.list.store
	command.Query(r.commands, "rule-providers", "Load rule providers", r.Source.RuleProviders, func(m map[string]api.RuleProvider) action.Action {
		s.Replace(sortedRuleProviders(m))
		return action.Render{}
	})
}

// update refreshes the named providers one after another, then reloads the
// list.
func (r *ruleProviders) update(names ...string) {
	if len(names) == 0 || r.Source == nil {
		return
	}
	src, s := r.Source, r.list.store
	r.loading.start()
	mutation(r.commands, "rule-providers:update", "Update rule providers", func(ctx context.Context) error {
		for _, name := range names {
			if err := src.UpdateRuleProvider(ctx, name); err != nil {
				return fmt.Errorf("update %s: %w", name, err)
			}
		}
		m, err := src.RuleProviders(ctx)
		if err != nil {
			return fmt.Errorf("reload rule providers: %w", err)
		}
		s.Replace(sortedRuleProviders(m))
		return nil
	}, action.Render{})
}

func (r *ruleProviders) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	if r.list.handleKey(msg) {
		return nil, nil
	}
	switch {
	case key.Matches(msg, keySearch):
		return action.Focus{ID: action.Search}, nil
	case key.Matches(msg, keyUpdate):
		if p, ok := r.list.selected(); ok {
			r.update(p.Name)
		}
	case key.Matches(msg, keyUpdateAll):
		var names []string
		for _, p := range r.list.store.Raw() {
			names = append(names, p.Name)
		}
		r.update(names...)
	case key.Matches(msg, keyRefresh):
		r.fetch()
	}
	return nil, nil
}

func (r *ruleProviders) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		if r.switchTo(action.RuleProviders, a) {
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

func (r *ruleProviders) reload() {
	if r.list.store.Stale() {
		r.loading.stop()
		r.list.refresh()
	}
}

func (r *ruleProviders) Draw(area component.Area) (string, error) {
	return r.list.draw(area, "Rule providers"+r.loading.view()), nil
}
