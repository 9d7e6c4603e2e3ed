package memstore

import (
	"sync"

	"ecosignal.fr/rewards/internal/features/analytics"
)

// Events records emitted analytics events.
type Events struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *Events) Emit(e analytics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Types returns the emitted event types in order.
func (r *Events) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// All returns a copy of the emitted events.
func (r *Events) All() []analytics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]analytics.Event(nil), r.events...)
}
