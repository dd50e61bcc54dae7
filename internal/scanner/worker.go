package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/maxvaer/dirprobe/internal/config"
)

// Worker executes wordlist tasks. It owns its Handle and Throttler, so the
// only state it shares with other workers is the Pauser.
type Worker struct {
	id        int
	opts      *config.Options
	handle    *Handle
	throttler *Throttler
	pauser    *Pauser // nil = no pause support
	logger    *slog.Logger

	failures  map[string]int // consecutive transport failures per host
	abandoned map[string]bool
}

// NewWorker creates worker id with a fresh Handle.
func NewWorker(id int, opts *config.Options, pauser *Pauser, logger *slog.Logger) (*Worker, error) {
	h, err := NewHandle(opts)
	if err != nil {
		return nil, fmt.Errorf("worker %d: %w", id, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("worker", id)
	return &Worker{
		id:        id,
		opts:      opts,
		handle:    h,
		throttler: NewThrottler(opts.Throttle, opts.AdaptiveThrottle, logger),
		pauser:    pauser,
		logger:    logger,
		failures:  make(map[string]int),
		abandoned: make(map[string]bool),
	}, nil
}

// Run consumes tasks until the channel is closed or ctx ends. Every task that
// is received is answered with a MessageTaskDone, unless ctx ends first.
func (w *Worker) Run(ctx context.Context, tasks <-chan Task, results chan<- Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-tasks:
			if !ok {
				return nil
			}
			if !w.runTask(ctx, task, results) {
				return nil
			}
		}
	}
}

func (w *Worker) runTask(ctx context.Context, task Task, results chan<- Message) bool {
	host := hostOf(task.Dir)

	for i, p := range task.Paths {
		if w.abandoned[host] {
			msg := Message{Kind: MessageAbandoned, Worker: w.id, TaskID: task.ID, Dir: task.Dir, Skipped: len(task.Paths) - i}
			if !w.send(ctx, results, msg) {
				return false
			}
			break
		}

		if w.pauser != nil {
			if err := w.pauser.Wait(ctx); err != nil {
				return false
			}
		}
		if !w.throttler.Wait(ctx) {
			return false
		}

		o := w.handle.Probe(ctx, task.URL(p))
		if ctx.Err() != nil {
			return false
		}
		o.FoundViaScrape = false
		o.ParentDepth = task.ParentDepth
		o.Parent = task.Dir

		w.throttler.Record(o)
		w.track(host, o)

		for _, out := range w.expand(ctx, o) {
			msg := Message{Kind: MessageData, Worker: w.id, TaskID: task.ID, Dir: task.Dir, Outcome: out}
			if !w.send(ctx, results, msg) {
				return false
			}
		}
	}

	return w.send(ctx, results, Message{Kind: MessageTaskDone, Worker: w.id, TaskID: task.ID, Dir: task.Dir})
}

// expand checks a directory outcome for an index page and, if scraping is
// on, follows its links. The handle still holds the directory's body here.
func (w *Worker) expand(ctx context.Context, o Outcome) []Outcome {
	if !o.IsDirectory || o.Failed() {
		return []Outcome{o}
	}
	body := w.handle.Body()
	o.IsListable = IsListing(body)
	if !o.IsListable || !w.opts.ScrapeListable {
		return []Outcome{o}
	}
	dir := withSlash(o.URL)
	w.logger.Debug("scraping listing", "url", dir)
	children := ScrapeBody(ctx, w.handle, dir, body, w.opts.MaxDepth, o.ParentDepth)
	return append([]Outcome{o}, children...)
}

// track maintains the per-host error budget.
func (w *Worker) track(host string, o Outcome) {
	if !o.Failed() {
		w.failures[host] = 0
		return
	}
	w.failures[host]++
	if w.failures[host] > w.opts.MaxErrors && !w.abandoned[host] {
		w.abandoned[host] = true
		w.logger.Warn("too many consecutive errors, abandoning host", "host", host, "errors", w.failures[host])
	}
}

func (w *Worker) send(ctx context.Context, results chan<- Message, msg Message) bool {
	select {
	case results <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}
