package scanner

import (
	"context"
	"sync"
	"time"
)

// Pauser is a pause gate shared by all workers. While paused, Wait blocks
// until the scan is resumed or the context ends.
type Pauser struct {
	mu          sync.Mutex
	gate        chan struct{} // non-nil while paused, closed on resume
	pausedSince time.Time
	totalPaused time.Duration
}

// NewPauser creates a Pauser in the running state.
func NewPauser() *Pauser {
	return &Pauser{}
}

// Wait blocks while the scan is paused. It returns ctx.Err() if the context
// ends first.
func (p *Pauser) Wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		gate := p.gate
		p.mu.Unlock()
		if gate == nil {
			return nil
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Toggle flips between paused and running and returns true if now paused.
func (p *Pauser) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gate != nil {
		p.totalPaused += time.Since(p.pausedSince)
		close(p.gate)
		p.gate = nil
		return false
	}
	p.gate = make(chan struct{})
	p.pausedSince = time.Now()
	return true
}

// IsPaused reports whether the scan is currently paused.
func (p *Pauser) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate != nil
}

// PausedDuration returns the total time spent paused, including any ongoing
// pause.
func (p *Pauser) PausedDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.totalPaused
	if p.gate != nil {
		d += time.Since(p.pausedSince)
	}
	return d
}
