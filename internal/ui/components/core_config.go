package components

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/theme"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
)

// proxyModes is the cycle order of the core routing mode.
var proxyModes = []string{"rule", "global", "direct"}

// coreConfig shows the running configuration and triggers core maintenance
// calls.
type coreConfig struct {
	component.Base
	tabState
	styles   *theme.Styles
	commands *command.Bus
	doc      store.Value[map[string]any]

	gen     uint64
	mode    string
	vp      viewport.Model
	loading throbber
}

func newCoreConfig(deps Deps) *coreConfig {
	return &coreConfig{
		Base:     component.NewBase(action.CoreConfig),
		styles:   deps.Styles,
		commands: deps.Commands,
		vp:       viewport.New(0, 0),
	}
}

func (c *coreConfig) Shortcuts() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyMode, keyReload, keyRestart, keyFlushFakeIP, keyFlushDNS, keyUpdateGeo, keyRefresh}
}

func (c *coreConfig) Init(src api.DataSource) error {
	if err := c.Base.Init(src); err != nil {
		return err
	}
	c.fetch()
	return nil
}

func (c *coreConfig) fetch() {
	if c.commands == nil || c.Source == nil {
		return
	}
	c.loading.start()
	doc := &c.doc
	command.Query(c.commands, "configs", "Load config", c.Source.Configs, func(m map[string]any) action.Action {
		doc.Set(m)
		return action.Render{}
	})
}

// run executes fn and reloads the configuration when it succeeds.
func (c *coreConfig) run(id, label string, fn func(ctx context.Context, src api.DataSource) error) {
	src := c.Source
	if src == nil {
		return
	}
	doc := &c.doc
	c.loading.start()
	mutation(c.commands, id, label, func(ctx context.Context) error {
		if err := fn(ctx, src); err != nil {
			return err
		}
		m, err := src.Configs(ctx)
		if err != nil {
			return fmt.Errorf("reload config: %w", err)
		}
		doc.Set(m)
		return nil
	}, action.Render{})
}

func nextMode(cur string) string {
	for i, m := range proxyModes {
		if m == cur {
			return proxyModes[(i+1)%len(proxyModes)]
		}
	}
	return proxyModes[0]
}

func (c *coreConfig) HandleKeyEvent(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyMode):
		next := nextMode(c.mode)
		c.run("configs:mode", "Switch mode to "+next, func(ctx context.Context, src api.DataSource) error {
			return src.PatchConfigs(ctx, map[string]any{"mode": next})
		})
	case key.Matches(msg, keyReload):
		c.run("configs:reload", "Reload config", func(ctx context.Context, src api.DataSource) error {
			return src.ReloadConfig(ctx)
		})
	case key.Matches(msg, keyRestart):
		c.run("core:restart", "Restart core", func(ctx context.Context, src api.DataSource) error {
			return src.Restart(ctx)
		})
	case key.Matches(msg, keyFlushFakeIP):
		c.run("cache:fakeip", "Flush fake-ip cache", func(ctx context.Context, src api.DataSource) error {
			return src.FlushFakeIPCache(ctx)
		})
	case key.Matches(msg, keyFlushDNS):
		c.run("cache:dns", "Flush DNS cache", func(ctx context.Context, src api.DataSource) error {
			return src.FlushDNSCache(ctx)
		})
	case key.Matches(msg, keyUpdateGeo):
		c.run("geo:update", "Update geo databases", func(ctx context.Context, src api.DataSource) error {
			return src.UpdateGeo(ctx)
		})
	case key.Matches(msg, keyRefresh):
		c.fetch()
	default:
		c.vp, _ = c.vp.Update(msg)
	}
	return nil, nil
}

func (c *coreConfig) Update(a action.Action) (action.Action, error) {
	switch a := a.(type) {
	case action.TabSwitch:
		c.switchTo(action.CoreConfig, a)
	case action.Error:
		c.loading.stop()
	case action.Tick:
		c.loading.tick()
		return nil, c.sync()
	case action.Render:
		return nil, c.sync()
	}
	return nil, nil
}

func (c *coreConfig) sync() error {
	gen := c.doc.Generation()
	if gen == c.gen {
		return nil
	}
	c.gen = gen
	c.loading.stop()
	m, _ := c.doc.Get()
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	c.mode, _ = m["mode"].(string)
	c.vp.SetContent(string(body))
	return nil
}

func (c *coreConfig) Draw(area component.Area) (string, error) {
	c.vp.Width = area.Width
	c.vp.Height = max(area.Height-1, 1)
	mode := c.mode
	if mode == "" {
		mode = "-"
	}
	title := c.styles.Title.Render("Config") + "  mode: " + c.styles.Key.Render(mode) + c.loading.view()
	return title + "\n" + c.vp.View(), nil
}
