package seenset

import (
	"context"
	"strings"
	"sync"
)

// Overlay reads through to a base store but keeps its own additions in
// memory, leaving the base untouched. It backs dry runs.
type Overlay struct {
	base Store

	mu    sync.RWMutex
	added map[string]struct{}
	order []string
}

// NewOverlay wraps base.
func NewOverlay(base Store) *Overlay {
	return &Overlay{
		base:  base,
		added: make(map[string]struct{}),
	}
}

// Contains reports whether id is in the overlay or the base store.
func (o *Overlay) Contains(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	o.mu.RLock()
	_, ok := o.added[id]
	o.mu.RUnlock()
	if ok {
		return true, nil
	}
	return o.base.Contains(ctx, id)
}

// Add records id in memory only.
func (o *Overlay) Add(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	seen, err := o.Contains(ctx, id)
	if err != nil || seen {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.added[id]; !ok {
		o.added[id] = struct{}{}
		o.order = append(o.order, id)
	}
	return nil
}

// Len returns the size of the combined set.
func (o *Overlay) Len(ctx context.Context) (int, error) {
	n, err := o.base.Len(ctx)
	if err != nil {
		return 0, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return n + len(o.order), nil
}

// List returns the base ids followed by the overlay's additions.
func (o *Overlay) List(ctx context.Context) ([]string, error) {
	ids, err := o.base.List(ctx)
	if err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append(ids, o.order...), nil
}

// Added returns the ids recorded in memory.
func (o *Overlay) Added() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Close closes the base store.
func (o *Overlay) Close() error {
	return o.base.Close()
}
