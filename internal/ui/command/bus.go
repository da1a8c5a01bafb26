package command

import (
	"context"
	"sync"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
)

// Request encapsulates a call against the core.
type Request struct {
	ID    string
	Label string
	Run   func(ctx context.Context) error
	// Then is sent after Run succeeds.
	Then action.Action
}

// Bus runs requests off the UI loop and reports results as actions.
type Bus struct {
	ctx    context.Context
	sender action.Sender
	wg     sync.WaitGroup
}

// New initialises a command bus. Requests are cancelled with ctx; request
// deadlines belong to the data source.
func New(ctx context.Context, sender action.Sender) *Bus {
	return &Bus{ctx: ctx, sender: sender}
}

// Execute runs req on its own goroutine. A failure is sent as action.Error
// titled with the request label.
func (b *Bus) Execute(req Request) {
	events.Command.Queue(req.ID, req.Label)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if req.Run == nil {
			return
		}
		if err := req.Run(b.ctx); err != nil {
			if b.ctx.Err() != nil {
				return
			}
			events.Command.Failure(req.ID, req.Label, err)
			b.send(action.NewError(req.Label, err))
			return
		}
		events.Command.Success(req.ID, req.Label)
		if req.Then != nil {
			b.send(req.Then)
		}
	}()
}

// Query fetches a value off the UI loop and hands it to then, which runs on
// the fetching goroutine and may return an action to send.
func Query[T any](b *Bus, id, label string, fetch func(ctx context.Context) (T, error), then func(T) action.Action) {
	b.Execute(Request{
		ID:    id,
		Label: label,
		Run: func(ctx context.Context) error {
			v, err := fetch(ctx)
			if err != nil {
				return err
			}
			if a := then(v); a != nil {
				b.send(a)
			}
			return nil
		},
	})
}

// Wait blocks until every queued request has finished.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) send(a action.Action) {
	if err := b.sender.Send(a); err != nil {
		logging.Debugf("command: drop %s: %v", action.Name(a), err)
	}
}
