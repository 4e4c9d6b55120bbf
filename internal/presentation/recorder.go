package presentation

import (
	"sync"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

// Fanout forwards every event to each of its bridges in order. It is busy
// while any of them is.
type Fanout []combat.Bridge

// Busy implements combat.Bridge.
func (f Fanout) Busy() bool {
	for _, b := range f {
		if b.Busy() {
			return true
		}
	}
	return false
}

// Emit implements combat.Bridge.
func (f Fanout) Emit(e combat.Event) {
	for _, b := range f {
		b.Emit(e)
	}
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []combat.Event
}

// Busy implements combat.Bridge.
func (r *Recorder) Busy() bool { return false }

// Emit implements combat.Bridge.
func (r *Recorder) Emit(e combat.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []combat.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]combat.Event(nil), r.events...)
}

// Types returns the EventType of every recorded event in arrival order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}
