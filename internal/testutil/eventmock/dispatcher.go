package eventmock

import (
	"context"
	"sync"

	"lendpeer/internal/domain/event"
)

var _ event.Dispatcher = (*Dispatcher)(nil)

// Dispatcher records every dispatched event, safely under concurrency.
type Dispatcher struct {
	mu     sync.Mutex
	events []event.Event
}

func New() *Dispatcher { return &Dispatcher{} }

func (d *Dispatcher) Dispatch(_ context.Context, ev event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func (d *Dispatcher) Events() []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]event.Event, len(d.events))
	copy(out, d.events)
	return out
}

// Count returns how many events with the given name were dispatched.
func (d *Dispatcher) Count(name event.Name) int {
	n := 0
	for _, ev := range d.Events() {
		if ev.Name == name {
			n++
		}
	}
	return n
}
