package surface

import (
	"sync"

	"github.com/shanshu/mapbridge/internal/queue"
)

// ViewPool recycles annotation views by reuse identifier. Recycled views
// keep their previous state, which is why every dequeue path must reapply
// the complete style set before display.
type ViewPool struct {
	mu    sync.Mutex
	pools map[string]*queue.Queue[*AnnotationView]
}

// NewViewPool creates an empty pool.
func NewViewPool() *ViewPool {
	return &ViewPool{pools: make(map[string]*queue.Queue[*AnnotationView])}
}

// Dequeue returns a recycled view for the reuse identifier, or nil when the
// pool is empty and the caller must construct a fresh one.
func (p *ViewPool) Dequeue(reuseID string) *AnnotationView {
	p.mu.Lock()
	q := p.pools[reuseID]
	p.mu.Unlock()
	if q == nil {
		return nil
	}
	return q.Pop()
}

// Enqueue returns a view to its pool for later reuse.
func (p *ViewPool) Enqueue(v *AnnotationView) {
	if v == nil || v.ReuseID == "" {
		return
	}
	p.mu.Lock()
	q := p.pools[v.ReuseID]
	if q == nil {
		q = queue.New[*AnnotationView]()
		p.pools[v.ReuseID] = q
	}
	p.mu.Unlock()
	q.Push(v)
}

// Len reports the number of pooled views for a reuse identifier.
func (p *ViewPool) Len(reuseID string) int {
	p.mu.Lock()
	q := p.pools[reuseID]
	p.mu.Unlock()
	if q == nil {
		return 0
	}
	return q.Len()
}

// Clear drops every pooled view.
func (p *ViewPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range p.pools {
		q.Clear()
	}
}
