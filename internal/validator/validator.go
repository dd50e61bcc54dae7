// Package validator establishes, per directory, what the server returns for
// paths that do not exist, so soft-404 pages can be filtered out.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/scanner"
)

// baselineProbes is the number of random paths requested per directory.
const baselineProbes = 3

// Kind is the verdict for a directory.
type Kind int

const (
	// Scan means the directory should get a wordlist pass.
	Scan Kind = iota
	// Skip means the baseline could not be established (transport errors).
	Skip
	// Ignore means the request was not a directory worth validating.
	Ignore
)

func (k Kind) String() string {
	switch k {
	case Scan:
		return "scan"
	case Skip:
		return "skip"
	case Ignore:
		return "ignore"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Decision answers one validation request. Every request gets exactly one.
type Decision struct {
	Kind        Kind
	URL         string
	Signature   *Signature // nil = scan unfiltered
	ParentDepth int
	Outcome     scanner.Outcome // the directory outcome that was submitted
}

// Validator owns one Handle and serves directory requests sequentially.
type Validator struct {
	opts   *config.Options
	handle *scanner.Handle
	logger *slog.Logger
}

// New creates a Validator with its own Handle.
func New(opts *config.Options, logger *slog.Logger) (*Validator, error) {
	h, err := scanner.NewHandle(opts)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{opts: opts, handle: h, logger: logger}, nil
}

// Run answers every directory outcome read from in until in is closed or
// ctx ends.
func (v *Validator) Run(ctx context.Context, in <-chan scanner.Outcome, out chan<- Decision) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case o, ok := <-in:
			if !ok {
				return nil
			}
			d := v.Validate(ctx, o)
			select {
			case out <- d:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Validate produces the Decision for one directory outcome.
func (v *Validator) Validate(ctx context.Context, o scanner.Outcome) Decision {
	d := Decision{URL: o.URL, ParentDepth: o.ParentDepth, Outcome: o}

	if !o.IsDirectory || (o.IsListable && !v.opts.ScanListable) {
		d.Kind = Ignore
		return d
	}
	if v.opts.DisableValidator || v.opts.Whitelist() {
		d.Kind = Scan
		return d
	}

	dir := o.URL
	if dir == "" || dir[len(dir)-1] != '/' {
		dir += "/"
	}
	probes := make([]scanner.Outcome, 0, baselineProbes)
	for i := range baselineProbes {
		if ctx.Err() != nil {
			break
		}
		probes = append(probes, v.handle.Probe(ctx, dir+randString(10*(i+1))))
	}

	sig, ok := DetermineNotFound(probes)
	if !ok {
		v.logger.Warn(fmt.Sprintf("%s errored too often during validation, skipping scanning", o.URL))
		d.Kind = Skip
		return d
	}
	v.logger.Info(fmt.Sprintf("Detected nonexistent paths for %s are %s", o.URL, sig))
	d.Kind = Scan
	d.Signature = &sig
	return d
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(b)
}
