package transactions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu  sync.Mutex
	txs []Transaction
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Create(ctx context.Context, t Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, t)
	return nil
}

func (q Query) matches(t Transaction) bool {
	if q.Usernames != nil {
		found := false
		for _, u := range q.Usernames {
			if u == t.Username {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.Type != "" && t.Type != q.Type {
		return false
	}
	return q.Filter.Match(t)
}

func (r *MemoryRepo) List(ctx context.Context, q Query) ([]Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Transaction{}
	for _, t := range r.txs {
		if q.matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *MemoryRepo) removeWhere(drop func(Transaction) bool) int64 {
	kept := r.txs[:0:0]
	for _, t := range r.txs {
		if !drop(t) {
			kept = append(kept, t)
		}
	}
	n := int64(len(r.txs) - len(kept))
	r.txs = kept
	return n
}

func (r *MemoryRepo) Delete(ctx context.Context, id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.removeWhere(func(t Transaction) bool {
		return t.ID == id && (owner == "" || t.Username == owner)
	})
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MemoryRepo) DeleteMany(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	present := 0
	for _, t := range r.txs {
		if _, ok := want[t.ID]; ok {
			present++
		}
	}
	if present != len(want) {
		return ErrNotFound
	}
	r.removeWhere(func(t Transaction) bool {
		_, ok := want[t.ID]
		return ok
	})
	return nil
}

func (r *MemoryRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeWhere(func(t Transaction) bool { return t.Username == username }), nil
}

func (r *MemoryRepo) Retype(ctx context.Context, from []string, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.txs {
		for _, f := range from {
			if r.txs[i].Type == f {
				r.txs[i].Type = to
				n++
				break
			}
		}
	}
	return n, nil
}
