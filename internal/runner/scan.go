package runner

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/filter"
	"github.com/maxvaer/dirprobe/internal/output"
	"github.com/maxvaer/dirprobe/internal/resume"
	"github.com/maxvaer/dirprobe/internal/scanner"
	"github.com/maxvaer/dirprobe/internal/validator"
)

// scan is the state of one run. Everything below is owned by the loop
// goroutine; workers, the validator and the sink only see channels.
type scan struct {
	opts     *config.Options
	logger   *slog.Logger
	paths    []string
	chain    *filter.Chain
	state    *resume.State
	progress *output.Progress

	nextTaskID int
	tasks      []scanner.Task
	toValidate []scanner.Outcome
	events     []output.Event

	running    int // tasks queued or in flight
	validating int // directories waiting for a Decision

	roots      map[string]bool
	dirs       map[string]bool                 // every directory seen, by normalized URL
	signatures map[string]*validator.Signature // settled directories; nil = unfiltered
	held       map[string][]scanner.Outcome    // outcomes waiting for their directory to settle
	remaining  map[string]int // unfinished tasks per directory
	reported   map[string]bool

	opened []string
	stats  output.Stats
}

func newScan(opts *config.Options, logger *slog.Logger, paths []string, state *resume.State, progress *output.Progress) *scan {
	return &scan{
		opts:       opts,
		logger:     logger,
		paths:      paths,
		chain:      filter.FromOptions(opts),
		state:      state,
		progress:   progress,
		roots:      make(map[string]bool),
		dirs:       make(map[string]bool),
		signatures: make(map[string]*validator.Signature),
		held:       make(map[string][]scanner.Outcome),
		remaining:  make(map[string]int),
		reported:   make(map[string]bool),
	}
}

// run seeds the target roots, starts the pipeline and blocks until every
// queued task and validation has been answered or ctx ends.
func (s *scan) run(ctx context.Context, targets []string, pauser *scanner.Pauser, sink *output.Sink) error {
	v, err := validator.New(s.opts, s.logger)
	if err != nil {
		return err
	}
	workers := make([]*scanner.Worker, s.opts.Threads)
	for i := range workers {
		w, err := scanner.NewWorker(i, s.opts, pauser, s.logger)
		if err != nil {
			return err
		}
		workers[i] = w
	}

	if err := s.seed(ctx, targets); err != nil {
		return err
	}

	tasks := make(chan scanner.Task)
	results := make(chan scanner.Message, s.opts.Threads)
	toValidator := make(chan scanner.Outcome)
	decisions := make(chan validator.Decision)
	events := make(chan output.Event, 64)

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(func() error { return w.Run(gctx, tasks, results) })
	}
	g.Go(func() error { return v.Run(gctx, toValidator, decisions) })
	g.Go(func() error { return sink.Run(gctx, events) })
	g.Go(func() error {
		defer close(tasks)
		defer close(toValidator)
		defer close(events)
		return s.loop(gctx, tasks, results, toValidator, decisions, events)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// seed queues every target root for validation. Roots are fetched once so a
// listable root can be scraped before the wordlist pass starts. On resume,
// finished directories are skipped and unfinished ones are validated again.
func (s *scan) seed(ctx context.Context, targets []string) error {
	known := make(map[string]bool)
	if s.state != nil {
		for _, d := range s.state.Directories {
			known[d.URL] = true
			s.dirs[d.URL] = true
			if d.ParentDepth == 0 {
				s.roots[d.URL] = true
			}
			if d.Done {
				s.signatures[d.URL] = nil
			}
		}
		for _, d := range s.state.Pending() {
			s.logger.Debug("re-seeding unfinished directory", "url", d.URL, "depth", d.ParentDepth)
			o := scanner.Outcome{URL: d.URL, StatusCode: 200, IsDirectory: true, ParentDepth: max(d.ParentDepth-1, 0)}
			s.submit(o)
		}
	}

	var h *scanner.Handle
	for _, root := range targets {
		s.roots[root] = true
		if known[root] {
			continue
		}
		s.dirs[root] = true
		if h == nil {
			var err error
			if h, err = scanner.NewHandle(s.opts); err != nil {
				return err
			}
		}

		// Links on a root index sit at depth 0, like the root's own
		// wordlist hits.
		var found []scanner.Outcome
		if s.opts.ScrapeListable {
			found = scanner.ScrapeDirectory(ctx, h, root, s.opts.MaxDepth, -1, true)
			found[0].ParentDepth = 0
		} else {
			found = []scanner.Outcome{scanner.FetchDirectory(ctx, h, root, 0, true)}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o := found[0]
		s.stats.TotalRequests++
		if o.Failed() {
			s.stats.ErrorCount++
			s.logger.Warn("target unreachable, skipping", "url", root)
			continue
		}
		s.submit(o)
		for _, child := range found[1:] {
			s.handleOutcome(child)
		}
	}
	return nil
}

func (s *scan) loop(
	ctx context.Context,
	tasks chan<- scanner.Task,
	results <-chan scanner.Message,
	toValidator chan<- scanner.Outcome,
	decisions <-chan validator.Decision,
	events chan<- output.Event,
) error {
	for s.running > 0 || s.validating > 0 {
		// Nil channels disable their case until something is queued.
		var taskCh chan<- scanner.Task
		var nextTask scanner.Task
		if len(s.tasks) > 0 {
			taskCh, nextTask = tasks, s.tasks[0]
		}
		var validateCh chan<- scanner.Outcome
		var nextDir scanner.Outcome
		if len(s.toValidate) > 0 {
			validateCh, nextDir = toValidator, s.toValidate[0]
		}
		var eventCh chan<- output.Event
		var nextEvent output.Event
		if len(s.events) > 0 {
			eventCh, nextEvent = events, s.events[0]
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case taskCh <- nextTask:
			s.tasks = s.tasks[1:]
		case validateCh <- nextDir:
			s.toValidate = s.toValidate[1:]
		case eventCh <- nextEvent:
			s.events = s.events[1:]
		case msg := <-results:
			s.handleMessage(msg)
		case d := <-decisions:
			s.handleDecision(d)
		}
	}

	for _, ev := range s.events {
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.events = nil
	return nil
}

func (s *scan) handleMessage(msg scanner.Message) {
	switch msg.Kind {
	case scanner.MessageData:
		s.handleOutcome(msg.Outcome)
	case scanner.MessageAbandoned:
		s.stats.AbandonedCount += msg.Skipped
		s.progress.AddTotal(-msg.Skipped)
		s.logger.Warn("host abandoned", "dir", msg.Dir, "skipped", msg.Skipped)
	case scanner.MessageTaskDone:
		s.running--
		s.remaining[msg.Dir]--
		if s.remaining[msg.Dir] <= 0 {
			delete(s.remaining, msg.Dir)
			s.finish(msg.Dir)
		}
	}
}

// handleOutcome counts one probe result and forwards it once the directory
// that produced it has settled.
func (s *scan) handleOutcome(o scanner.Outcome) {
	s.stats.TotalRequests++
	if o.FoundViaScrape {
		s.progress.AddTotal(1)
	}
	s.progress.Increment()

	if o.Failed() {
		s.stats.ErrorCount++
		s.progress.IncrementErrors()
		return
	}

	parent := normalizeDir(o.Parent)
	sig, settled := s.signatures[parent]
	if !settled {
		s.held[parent] = append(s.held[parent], o)
		return
	}
	s.forward(o, sig)
}

// forward applies the directory's signature and the filter chain, and
// publishes what survives.
func (s *scan) forward(o scanner.Outcome, sig *validator.Signature) {
	if sig != nil && sig.IsNotFound(o) {
		s.stats.FilteredCount++
		s.progress.IncrementFiltered()
		if key := normalizeDir(o.URL); o.IsDirectory && !s.dirs[key] {
			// It will never be validated, so whatever was scraped below
			// it goes out unfiltered.
			s.bypass(key)
		}
		return
	}

	if o.IsDirectory {
		s.discover(o)
	}

	if filtered, reason := s.chain.Apply(&o); filtered {
		s.logger.Debug("filtered", "url", o.URL, "filter", reason)
		s.stats.FilteredCount++
		s.progress.IncrementFiltered()
		return
	}

	if s.reported[o.URL] {
		return
	}
	s.reported[o.URL] = true
	s.stats.Findings++
	s.events = append(s.events, output.Event{Kind: output.EventFinding, Outcome: o})
}

// settle records dir's signature and forwards everything held for it. Only
// the first call for a directory counts.
func (s *scan) settle(dir string, sig *validator.Signature) {
	if _, ok := s.signatures[dir]; ok {
		return
	}
	s.signatures[dir] = sig
	held := s.held[dir]
	delete(s.held, dir)
	for _, o := range held {
		s.forward(o, sig)
	}
}

// bypass marks a directory that is never validated as seen and settles it
// without a signature.
func (s *scan) bypass(dir string) {
	s.dirs[dir] = true
	s.settle(dir, nil)
}

// discover sends a newly seen directory to the validator if it could still get
// a wordlist pass of its own. Otherwise it is settled unfiltered.
func (s *scan) discover(o scanner.Outcome) {
	key := normalizeDir(o.URL)
	if s.dirs[key] {
		return
	}
	s.dirs[key] = true

	switch {
	case o.StatusCode == 401 && !s.opts.Scan401:
		s.logger.Debug("not scanning 401 directory", "url", key)
		s.bypass(key)
		return
	case o.StatusCode == 403 && !s.opts.Scan403:
		s.logger.Debug("not scanning 403 directory", "url", key)
		s.bypass(key)
		return
	case !s.opts.RecursionAllowed(o.ParentDepth + 1):
		s.logger.Debug("recursion limit reached", "url", key, "depth", o.ParentDepth+1)
		s.bypass(key)
		return
	}
	s.submit(o)
}

func (s *scan) submit(o scanner.Outcome) {
	s.validating++
	s.toValidate = append(s.toValidate, o)
}

func (s *scan) handleDecision(d validator.Decision) {
	s.validating--
	key := normalizeDir(d.URL)
	s.settle(key, d.Signature)

	switch d.Kind {
	case validator.Ignore:
		if s.roots[key] && d.Outcome.IsListable {
			s.logger.Info("target is a listable directory, not scanning it", "url", key)
		}
		return
	case validator.Skip:
		s.finish(key)
		return
	}

	depth := d.ParentDepth + 1
	if s.roots[key] {
		depth = 0
	}
	if !s.opts.RecursionAllowed(depth) {
		return
	}
	s.open(key, depth, d.Signature, d.Outcome.IsListable)
}

// open queues the wordlist pass for dir and announces it to the output.
func (s *scan) open(dir string, depth int, sig *validator.Signature, listable bool) {
	var sigText string
	if sig != nil {
		sigText = sig.String()
	}
	s.opened = append(s.opened, dir)
	s.stats.Directories++
	s.events = append(s.events, output.Event{
		Kind:      output.EventDirectory,
		Directory: output.Directory{URL: dir, Signature: sigText, Depth: depth, Listable: listable},
	})
	if s.state != nil {
		s.state.Opened(dir, depth)
	}

	parts := scanner.SplitPaths(s.paths, s.opts.WordlistSplit)
	if len(parts) == 0 {
		s.finish(dir)
		return
	}
	for _, part := range parts {
		s.tasks = append(s.tasks, scanner.Task{ID: s.nextTaskID, Dir: dir, ParentDepth: depth, Paths: part})
		s.nextTaskID++
		s.running++
		s.remaining[dir]++
	}
	s.progress.AddTotal(len(s.paths))
}

// finish records a completed directory in the resume file.
func (s *scan) finish(dir string) {
	if s.state == nil {
		return
	}
	s.state.Finished(dir)
	if err := s.state.Save(); err != nil {
		s.logger.Warn("saving resume state", "error", err)
	}
}

// normalizeDir returns raw as a directory URL: trailing slash, no query or
// fragment, lower-case scheme and host.
func normalizeDir(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	return u.String()
}
