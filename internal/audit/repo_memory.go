package audit

import (
	"context"
	"sync"
)

// MemoryRepo keeps events in process memory, in append order. Tests and
// local runs use it in place of PostgresRepo.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of every recorded event.
func (r *MemoryRepo) Events() []Event {
	return r.filter(func(Event) bool { return true })
}

// ForUser returns the events whose subject is username.
func (r *MemoryRepo) ForUser(username string) []Event {
	return r.filter(func(e Event) bool { return e.Username == username })
}

func (r *MemoryRepo) filter(keep func(Event) bool) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Event{}
	for _, e := range r.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
