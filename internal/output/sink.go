package output

import (
	"context"
	"fmt"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// EventKind tags an Event.
type EventKind int

const (
	// EventFinding carries an outcome that passed every filter.
	EventFinding EventKind = iota
	// EventDirectory announces a directory whose wordlist pass was queued.
	EventDirectory
)

// Event is one item on the output stream.
type Event struct {
	Kind      EventKind
	Outcome   scanner.Outcome
	Directory Directory
}

// Sink drains the event stream into a Writer. If a progress line is shown it
// is cleared before each finding so the two do not interleave.
type Sink struct {
	writer   Writer
	progress *Progress
	onResult func(o *scanner.Outcome)
}

// NewSink creates a sink for w. progress and onResult may be nil.
func NewSink(w Writer, progress *Progress, onResult func(o *scanner.Outcome)) *Sink {
	return &Sink{writer: w, progress: progress, onResult: onResult}
}

// Run writes events until the channel is closed or ctx ends. A write error
// stops the sink; the caller cancels the scan.
func (s *Sink) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.write(ev); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
	}
}

func (s *Sink) write(ev Event) error {
	if s.progress != nil {
		s.progress.Clear()
	}
	switch ev.Kind {
	case EventDirectory:
		return s.writer.WriteDirectory(ev.Directory)
	default:
		if err := s.writer.WriteResult(&ev.Outcome); err != nil {
			return err
		}
		if s.onResult != nil {
			s.onResult(&ev.Outcome)
		}
		return nil
	}
}
