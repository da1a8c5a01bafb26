// Package bus provides the single-consumer action queue shared by background
// tasks and the UI loop.
package bus

import (
	"errors"
	"sync"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
)

// ErrClosed is returned by Send once the consumer has been torn down.
var ErrClosed = errors.New("action bus closed")

// Bus is an unbounded FIFO. Send never blocks; the consumer drains it with
// TryRecv and waits on Ready between drains.
type Bus struct {
	mu     sync.Mutex
	queue  []action.Action
	head   int
	closed bool
	ready  chan struct{}
}

// New initialises an empty bus.
func New() *Bus {
	return &Bus{ready: make(chan struct{}, 1)}
}

var _ action.Sender = (*Bus)(nil)

// Send appends a to the queue and wakes the consumer.
func (b *Bus) Send(a action.Action) error {
	if a == nil {
		return nil
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.queue = append(b.queue, a)
	select {
	case b.ready <- struct{}{}:
	default:
	}
	b.mu.Unlock()
	return nil
}

// TryRecv pops the oldest action without blocking.
func (b *Bus) TryRecv() (action.Action, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.head >= len(b.queue) {
		return nil, false
	}
	a := b.queue[b.head]
	b.queue[b.head] = nil
	b.head++
	if b.head == len(b.queue) {
		b.queue = b.queue[:0]
		b.head = 0
	}
	return a, true
}

// Len reports the number of queued actions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue) - b.head
}

// Ready is signalled after Send. A single signal may cover several actions.
// The channel is closed by Close.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Close rejects further sends and releases any waiter. Queued actions remain
// readable with TryRecv.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ready)
}

// Closed reports whether Close has been called.
func (b *Bus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
