package groups

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	groups []Group
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func clone(g Group) Group {
	g.Members = append([]Member{}, g.Members...)
	return g
}

func (r *MemoryRepo) indexOf(name string) int {
	for i, g := range r.groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

func (r *MemoryRepo) groupedLocked(email string) bool {
	for _, g := range r.groups {
		if g.has(email) {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) Create(ctx context.Context, g Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(g.Name) >= 0 {
		return ErrAlreadyExists
	}
	for _, m := range g.Members {
		if r.groupedLocked(m.Email) {
			return ErrMemberGrouped
		}
	}
	r.groups = append(r.groups, clone(g))
	return nil
}

func (r *MemoryRepo) ByName(ctx context.Context, name string) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return Group{}, ErrNotFound
	}
	return clone(r.groups[i]), nil
}

func (r *MemoryRepo) GroupOf(ctx context.Context, email string) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.has(email) {
			return clone(g), nil
		}
	}
	return Group{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, clone(g))
	}
	return out, nil
}

func (r *MemoryRepo) GroupedEmails(ctx context.Context, emails []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, e := range emails {
		if r.groupedLocked(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemoryRepo) AddMembers(ctx context.Context, name string, members []Member) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return Group{}, ErrNotFound
	}
	for _, m := range members {
		if r.groupedLocked(m.Email) {
			return Group{}, ErrMemberGrouped
		}
	}
	r.groups[i].Members = append(r.groups[i].Members, members...)
	return clone(r.groups[i]), nil
}

func (r *MemoryRepo) RemoveMembers(ctx context.Context, name string, emails []string) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return Group{}, ErrNotFound
	}
	drop := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		drop[e] = struct{}{}
	}
	kept := r.groups[i].Members[:0:0]
	for _, m := range r.groups[i].Members {
		if _, ok := drop[m.Email]; !ok {
			kept = append(kept, m)
		}
	}
	r.groups[i].Members = kept
	return clone(r.groups[i]), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	r.groups = append(r.groups[:i], r.groups[i+1:]...)
	return nil
}
