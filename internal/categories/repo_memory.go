package categories

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It keeps insertion order, which doubles as creation order.
type MemoryRepo struct {
	mu   sync.Mutex
	cats []Category
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) indexOf(typ string) int {
	for i, c := range r.cats {
		if c.Type == typ {
			return i
		}
	}
	return -1
}

func (r *MemoryRepo) Create(ctx context.Context, c Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(c.Type) >= 0 {
		return ErrAlreadyExists
	}
	r.cats = append(r.cats, c)
	return nil
}

func (r *MemoryRepo) ByType(ctx context.Context, typ string) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(typ); i >= 0 {
		return r.cats[i], nil
	}
	return Category{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Category, len(r.cats))
	copy(out, r.cats)
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, currentType string, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(currentType)
	if i < 0 {
		return Category{}, ErrNotFound
	}
	if j := r.indexOf(c.Type); j >= 0 && j != i {
		return Category{}, ErrAlreadyExists
	}
	r.cats[i].Type = c.Type
	r.cats[i].Color = c.Color
	return r.cats[i], nil
}

func (r *MemoryRepo) Delete(ctx context.Context, types []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[string]struct{}, len(types))
	for _, t := range types {
		drop[t] = struct{}{}
	}
	kept := r.cats[:0:0]
	for _, c := range r.cats {
		if _, ok := drop[c.Type]; !ok {
			kept = append(kept, c)
		}
	}
	n := int64(len(r.cats) - len(kept))
	r.cats = kept
	return n, nil
}
