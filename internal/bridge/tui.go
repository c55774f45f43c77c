package bridge

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/askdokita/dokita/internal/debug"
	"github.com/askdokita/dokita/internal/pubsub"
)

// Sender delivers messages to the running Bubble Tea program.
// *tea.Program satisfies it.
type Sender interface {
	Send(tea.Msg)
}

// TUIBridge subscribes to the Hub brokers and forwards their events to the
// TUI as Bubble Tea messages.
type TUIBridge struct {
	hub    *pubsub.Hub
	sender Sender

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTUIBridge creates a new TUI bridge.
func NewTUIBridge(hub *pubsub.Hub, sender Sender) *TUIBridge {
	return &TUIBridge{
		hub:    hub,
		sender: sender,
	}
}

// Start begins forwarding events to the TUI. Call Stop() to shut down.
func (b *TUIBridge) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(2)
	go b.subscribeStream()
	go b.subscribeSession()

	debug.Event("bridge", "start", "TUI bridge started")
}

// Stop gracefully shuts down the bridge.
func (b *TUIBridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	debug.Event("bridge", "stop", "TUI bridge stopped")
}

func (b *TUIBridge) subscribeStream() {
	defer b.wg.Done()

	events := b.hub.Stream.Subscribe(b.ctx)
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.sender.Send(StreamEventMsg{Event: event})
		}
	}
}

func (b *TUIBridge) subscribeSession() {
	defer b.wg.Done()

	events := b.hub.Session.Subscribe(b.ctx)
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.sender.Send(SessionEventMsg{Event: event})
		}
	}
}
