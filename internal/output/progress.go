package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Progress tracks and displays scan progress. The total grows as recursion
// queues new directories.
type Progress struct {
	w         io.Writer
	total     atomic.Int64
	completed atomic.Int64
	filtered  atomic.Int64
	errors    atomic.Int64
	start     time.Time
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	quiet     bool
}

// NewProgress creates a progress tracker writing to w. Call Start to begin
// display updates.
func NewProgress(w io.Writer, quiet bool) *Progress {
	return &Progress{
		w:     w,
		start: time.Now(),
		done:  make(chan struct{}),
		quiet: quiet,
	}
}

// Start begins periodically printing progress.
func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.print()
			case <-p.done:
				p.print()
				fmt.Fprint(p.w, "\n")
				return
			}
		}
	}()
}

// AddTotal grows the number of expected requests.
func (p *Progress) AddTotal(n int) {
	p.total.Add(int64(n))
}

// Increment records a completed request.
func (p *Progress) Increment() {
	p.completed.Add(1)
}

// IncrementFiltered records a filtered result.
func (p *Progress) IncrementFiltered() {
	p.filtered.Add(1)
}

// IncrementErrors records a transport failure.
func (p *Progress) IncrementErrors() {
	p.errors.Add(1)
}

// Completed returns the number of requests recorded so far.
func (p *Progress) Completed() int64 {
	return p.completed.Load()
}

// Stop ends the progress display and waits for the final line.
func (p *Progress) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// Clear erases the progress line so another line can be printed.
func (p *Progress) Clear() {
	if !p.quiet {
		fmt.Fprint(p.w, "\r\033[K")
	}
}

func (p *Progress) print() {
	completed := p.completed.Load()
	total := p.total.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}

	pct := float64(0)
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	eta := ""
	if rate > 0 && completed < total {
		remaining := float64(total-completed) / rate
		eta = fmt.Sprintf("ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	fmt.Fprintf(p.w, "\r\033[K[%3.0f%%] %d/%d | %.0f req/s | Filtered: %d | Errors: %d | %s",
		pct, completed, total, rate,
		p.filtered.Load(), p.errors.Load(), eta)
}
