package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/database"
	"github.com/maxvaer/dirprobe/internal/hook"
	"github.com/maxvaer/dirprobe/internal/netutil"
	"github.com/maxvaer/dirprobe/internal/output"
	"github.com/maxvaer/dirprobe/internal/resume"
	"github.com/maxvaer/dirprobe/internal/scanner"
	"github.com/maxvaer/dirprobe/internal/wordlist"
	"github.com/maxvaer/dirprobe/pkg/version"
)

// Run executes the full scan pipeline against every target in opts: the
// targets given with -u, the --urls-file list and the --cidr expansion all
// share one worker pool.
func Run(ctx context.Context, opts *config.Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	targets, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	words, err := wordlist.LoadWords(opts.WordlistPaths)
	if err != nil {
		return fmt.Errorf("loading wordlist: %w", err)
	}
	paths := wordlist.Expand(words, opts.Prefixes, opts.Extensions)

	state, err := loadState(opts, targets)
	if err != nil {
		return err
	}

	out, err := createWriter(opts, targets)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()

	if err := out.WriteHeader(); err != nil {
		return err
	}

	if !opts.Quiet {
		printBanner(opts, targets, len(paths))
	}

	pauser := startStdinToggle(ctx, os.Stdin, opts.Quiet)

	var onResult func(o *scanner.Outcome)
	if opts.OnResultCmd != "" {
		onResult = hook.NewRunner(opts.OnResultCmd, logger).Run
	}

	progress := output.NewProgress(os.Stderr, opts.Quiet)
	progress.Start()
	start := time.Now()

	s := newScan(opts, logger, paths, state, progress)
	runErr := s.run(ctx, targets, pauser, output.NewSink(out, progress, onResult))
	progress.Stop()

	stats := s.stats
	stats.Duration = time.Since(start)
	if pauser != nil {
		stats.Duration -= pauser.PausedDuration()
	}
	if stats.Duration.Seconds() > 0 {
		stats.RequestsPerSec = float64(stats.TotalRequests) / stats.Duration.Seconds()
	}

	if runErr != nil {
		if state != nil && ctx.Err() != nil {
			if err := state.Save(); err != nil {
				logger.Error("saving resume state", "error", err)
			} else if !opts.Quiet {
				fmt.Fprintf(os.Stderr, "\n[*] Progress saved to %s, resume with --resume-file\n", state.Path())
			}
		}
		return runErr
	}

	if state != nil {
		if err := state.Remove(); err != nil {
			logger.Warn("removing resume file", "error", err)
		}
	}

	if opts.Tree && len(s.opened) > 0 {
		output.PrintTree(os.Stderr, s.opened)
	}

	return out.WriteFooter(stats)
}

// resolveTargets builds the list of root URLs from -u, --urls-file and --cidr.
// Every root is normalized to a directory URL and duplicates are dropped.
func resolveTargets(opts *config.Options) ([]string, error) {
	targets := append([]string(nil), opts.Targets...)

	if opts.URLsFile != "" {
		listed, err := netutil.ReadTargets(opts.URLsFile)
		if err != nil {
			return nil, err
		}
		targets = append(targets, listed...)
	}

	if opts.CIDRTargets != "" {
		expanded, err := netutil.ExpandTargets(opts.CIDRTargets, opts.Ports)
		if err != nil {
			return nil, fmt.Errorf("expanding CIDR: %w", err)
		}
		targets = append(targets, expanded...)
	}

	seen := make(map[string]bool, len(targets))
	roots := make([]string, 0, len(targets))
	for _, t := range targets {
		root := normalizeDir(t)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	if len(roots) == 0 {
		return nil, config.ErrNoTarget
	}
	return roots, nil
}

// loadState opens the resume file. A state saved for a different target list
// is replaced by a fresh one.
func loadState(opts *config.Options, targets []string) (*resume.State, error) {
	if opts.ResumeFile == "" {
		return nil, nil
	}
	existing, err := resume.Load(opts.ResumeFile)
	if err != nil {
		return nil, fmt.Errorf("loading resume file: %w", err)
	}
	if existing != nil && sameTargets(existing.Targets, targets) {
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "[+] Resuming: %d directories left from %s\n", len(existing.Pending()), opts.ResumeFile)
		}
		return existing, nil
	}
	return resume.New(opts.ResumeFile, targets), nil
}

func sameTargets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func createWriter(opts *config.Options, targets []string) (output.Writer, error) {
	var w output.Writer
	var err error
	switch opts.OutputFormat {
	case "json":
		w, err = output.NewJSONWriter(opts.OutputFile)
	case "xml":
		w, err = output.NewXMLWriter(opts.OutputFile)
	case "csv":
		w, err = output.NewCSVWriter(opts.OutputFile)
	case "markdown":
		w, err = output.NewMarkdownWriter(opts.OutputFile, targets)
	default:
		w, err = output.NewTextWriter(opts.OutputFile, opts.NoColor, opts.Quiet)
	}
	if err != nil {
		return nil, err
	}

	if opts.SortBy != "" {
		w = output.NewSortedWriter(w, opts.SortBy)
	}

	if opts.DBDir != "" {
		db, err := database.NewWriter(opts.DBDir, targets)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("opening findings database: %w", err)
		}
		w = output.NewMultiWriter(w, db)
	}
	return w, nil
}

func printBanner(opts *config.Options, targets []string, pathCount int) {
	const (
		cyan   = "\033[36m"
		white  = "\033[97m"
		dim    = "\033[2m"
		red    = "\033[31m"
		green  = "\033[32m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)

	c, w, d, r, g, y, rs := cyan, white, dim, red, green, yellow, reset
	if opts.NoColor {
		c, w, d, r, g, y, rs = "", "", "", "", "", "", ""
	}

	fmt.Fprintf(os.Stderr, `
%s     _ _                       _         %s
%s  __| (_)_ __ _ __  _ __ ___ | |__   ___ %s
%s / _' | | '__| '_ \| '__/ _ \| '_ \ / _ \%s
%s| (_| | | |  | |_) | | | (_) | |_) |  __/%s
%s \__,_|_|_|  | .__/|_|  \___/|_.__/ \___|%s %sv%s%s
%s             |_|                         %s
%s    Recursive Web Content Discovery      %s
`,
		c, rs,
		c, rs,
		c, rs,
		c, rs,
		c, rs, d, version.Version, rs,
		c, rs,
		w, rs,
	)

	onOff := func(on bool) string {
		if on {
			return fmt.Sprintf("%sON%s", g, rs)
		}
		return fmt.Sprintf("%sOFF%s", r, rs)
	}

	depth := "unbounded"
	if opts.NoRecursion {
		depth = "off"
	} else if opts.MaxDepth > 0 {
		depth = fmt.Sprintf("%d", opts.MaxDepth)
	}

	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n", d, rs)
	if len(targets) == 1 {
		fmt.Fprintf(os.Stderr, "  %sTarget:%s       %s%s%s\n", d, rs, w, targets[0], rs)
	} else {
		fmt.Fprintf(os.Stderr, "  %sTargets:%s      %s%d hosts%s\n", d, rs, w, len(targets), rs)
	}
	fmt.Fprintf(os.Stderr, "  %sThreads:%s      %s%d%s\n", d, rs, y, opts.Threads, rs)
	fmt.Fprintf(os.Stderr, "  %sWordlist:%s     %s%d paths per directory%s\n", d, rs, w, pathCount, rs)
	if len(opts.Extensions) > 0 {
		fmt.Fprintf(os.Stderr, "  %sExtensions:%s   %s%s%s\n", d, rs, w, strings.Join(opts.Extensions, ", "), rs)
	}
	fmt.Fprintf(os.Stderr, "  %sRecursion:%s    %s%s%s\n", d, rs, w, depth, rs)
	fmt.Fprintf(os.Stderr, "  %sValidator:%s    %s\n", d, rs, onOff(!opts.DisableValidator && !opts.Whitelist()))
	fmt.Fprintf(os.Stderr, "  %sScrape:%s       %s\n", d, rs, onOff(opts.ScrapeListable))
	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
