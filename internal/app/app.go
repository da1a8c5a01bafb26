package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/bus"
	"github.com/potoo0/mihomo-tui-sub000/internal/component"
	"github.com/potoo0/mihomo-tui-sub000/internal/data/dispatcher"
	"github.com/potoo0/mihomo-tui-sub000/internal/ingest"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
	"github.com/potoo0/mihomo-tui-sub000/internal/model"
	"github.com/potoo0/mihomo-tui-sub000/internal/settings"
	"github.com/potoo0/mihomo-tui-sub000/internal/store"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/command"
	"github.com/potoo0/mihomo-tui-sub000/internal/ui/components"
)

// Version is the client version, set at build time.
var Version = "dev"

// shutdownTimeout bounds how long Run waits for stream readers on exit.
const shutdownTimeout = 2 * time.Second

// Config describes user-provided application options.
type Config struct {
	API       string
	Secret    string
	TickRate  float64
	FrameRate float64
	PrefsFile string
}

// NewClient builds the controller client for cfg.
func NewClient(cfg Config) (*api.Client, error) {
	client, err := api.NewClient(cfg.API, cfg.Secret, api.WithUserAgent("mihomo-tui/"+Version))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// NewStores allocates the buffers fed by the streaming endpoints.
func NewStores() dispatcher.Stores {
	return dispatcher.Stores{
		Memory:      store.New[api.Memory]("memory", store.BufferSize, nil),
		Traffic:     store.New[api.Traffic]("traffic", store.BufferSize, nil),
		Connections: store.NewConnectionStore(store.ConnsBufferSize, model.ConnectionColumns()),
		Logs:        store.New("logs", store.LogsBufferSize, model.LogColumns()),
	}
}

// streams are subscribed for the whole session. Logs are started by the logs
// tab with its level.
var streams = []api.Endpoint{api.EndpointMemory, api.EndpointTraffic, api.EndpointConnections}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	client, err := NewClient(cfg)
	if err != nil {
		return err
	}
	prefs, err := settings.Load(cfg.PrefsFile)
	if err != nil {
		logging.Warnf("settings: %v; using defaults", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	actions := bus.New()
	disp := dispatcher.New(NewStores(), actions)
	supervisor := ingest.NewSupervisor(ctx, client)
	for _, endpoint := range streams {
		if _, err := supervisor.Start(endpoint, nil, disp.Handler(endpoint)); err != nil {
			return fmt.Errorf("subscribe %s: %w", endpoint, err)
		}
	}
	commands := command.New(ctx, actions)

	factory := components.Factory(components.Deps{
		Dispatcher: disp,
		Supervisor: supervisor,
		Commands:   commands,
		Settings:   settings.NewHandle(prefs, cfg.PrefsFile),
	})
	registry := component.NewRegistry(factory, client, actions)
	root := ui.NewModel(actions, registry, ui.Options{
		TickRate:  cfg.TickRate,
		FrameRate: cfg.FrameRate,
		Cancel:    cancel,
	})

	program := tea.NewProgram(root, tea.WithAltScreen())
	_, err = program.Run()
	reason := "quit"
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		reason = err.Error()
	}

	cancel()
	registry.Close()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if serr := supervisor.Shutdown(shutdownCtx); serr != nil {
		logging.Warnf("shutdown streams: %v", serr)
	}
	commands.Wait()
	events.App.Stop(reason)

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// CoreVersion asks the controller for its version.
func CoreVersion(ctx context.Context, cfg Config) (api.Version, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return api.Version{}, err
	}
	v, err := client.Version(ctx)
	if err != nil {
		return api.Version{}, fmt.Errorf("fetch version: %w", err)
	}
	return v, nil
}
