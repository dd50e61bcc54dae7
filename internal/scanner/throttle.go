package scanner

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Throttler spaces out one worker's probes. With adaptive mode on it backs
// off exponentially on 429/503 or repeated transport errors and recovers
// toward the base delay once responses are healthy again.
//
// Each worker owns its own Throttler, so it needs no locking.
type Throttler struct {
	baseDelay    time.Duration
	currentDelay time.Duration
	maxDelay     time.Duration
	consecutive  int // consecutive throttle signals
	adaptive     bool
	logger       *slog.Logger
}

// NewThrottler creates a throttler starting at baseDelay.
func NewThrottler(baseDelay time.Duration, adaptive bool, logger *slog.Logger) *Throttler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Throttler{
		baseDelay:    baseDelay,
		currentDelay: baseDelay,
		maxDelay:     30 * time.Second,
		adaptive:     adaptive,
		logger:       logger,
	}
}

// Delay returns the current pause between probes.
func (t *Throttler) Delay() time.Duration {
	return t.currentDelay
}

// Wait sleeps for the current delay. It returns false if ctx ends first.
func (t *Throttler) Wait(ctx context.Context) bool {
	if t.currentDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(t.currentDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Record feeds one outcome into the adaptive state.
func (t *Throttler) Record(o Outcome) {
	if !t.adaptive {
		return
	}
	switch {
	case o.Failed():
		t.consecutive++
		if t.consecutive >= 3 {
			t.backOff("repeated transport errors", 0)
		}
	case o.StatusCode == http.StatusTooManyRequests || o.StatusCode == http.StatusServiceUnavailable:
		t.consecutive++
		t.backOff("rate limited", o.StatusCode)
	case t.consecutive > 0:
		t.consecutive = 0
		next := max(t.currentDelay/2, t.baseDelay)
		if next != t.currentDelay {
			t.currentDelay = next
			t.logger.Debug("throttle recovering", "delay", t.currentDelay)
		}
	}
}

func (t *Throttler) backOff(reason string, status int) {
	next := min(max(t.currentDelay*2, 500*time.Millisecond), t.maxDelay)
	if next == t.currentDelay {
		return
	}
	t.currentDelay = next
	t.logger.Warn("backing off", "reason", reason, "status", status, "delay", t.currentDelay)
}
