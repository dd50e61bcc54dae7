package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/maxvaer/dirprobe/internal/config"
	applog "github.com/maxvaer/dirprobe/internal/log"
	"github.com/maxvaer/dirprobe/internal/reqparse"
	"github.com/maxvaer/dirprobe/internal/runner"
	"github.com/maxvaer/dirprobe/pkg/version"
)

var opts = config.NewOptions()

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "urls-file", "request-file", "cidr", "ports"}},
	{"WORDLIST", []string{"wordlist", "prefixes", "extensions", "wordlist-split"}},
	{"RECURSION", []string{"no-recursion", "max-depth", "scan-listable", "scrape-listable", "scan-401", "scan-403"}},
	{"MATCHERS", []string{"include-status"}},
	{"FILTERS", []string{"exclude-status", "exclude-size", "show-htaccess", "duplicate-threshold", "disable-validator"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "throttle", "adaptive-throttle", "max-errors", "max-body-size"}},
	{"HTTP", []string{"method", "header", "cookies", "user-agent", "username", "password", "proxy", "proxy-auth", "ignore-cert"}},
	{"OUTPUT", []string{"output", "format", "sort", "tree", "quiet", "verbose", "no-color", "on-result", "db-dir"}},
	{"CONFIGURATION", []string{"config", "resume-file"}},
}

var rootCmd = &cobra.Command{
	Use:     "dirprobe -u <url> [flags]",
	Short:   "Recursive web content discovery with soft-404 detection",
	Version: version.Version,
	Long: `dirprobe discovers files and directories on web servers. It recurses into
every directory it finds, scrapes auto-generated index pages for links, and
learns per directory what a nonexistent path looks like so soft-404 pages
are filtered out.`,
	Example: `  dirprobe -u https://example.com
  dirprobe -u https://example.com -e php,html -t 50
  dirprobe -u https://example.com -w big.txt -w extra.txt --max-depth 3
  dirprobe -u https://example.com --scrape-listable --scan-403
  dirprobe -u https://example.com -i 200,301 -o results.json --format json
  dirprobe -r burp.req -e php,html
  dirprobe -l urls.txt --no-recursion
  dirprobe --cidr 192.168.1.0/24 --ports 80,443,8080
  dirprobe -u https://example.com --resume-file scan.state
  dirprobe -u https://example.com --db-dir
  dirprobe -u https://example.com --on-result "notify-send {url}"`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyRequestFile(cmd.Flags(), opts); err != nil {
			return err
		}
		if err := applyProfile(cmd.Flags(), opts); err != nil {
			return err
		}
		for i, t := range opts.Targets {
			if !strings.Contains(t, "://") {
				opts.Targets[i] = "http://" + t
			}
		}
		if cmd.Flags().Changed("include-status") && !cmd.Flags().Changed("exclude-status") {
			opts.ExcludeStatus = nil
		}
		if opts.OutputFile != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
			opts.NoColor = true
		}
		if err := opts.Validate(); err != nil {
			if errors.Is(err, config.ErrNoTarget) {
				_ = cmd.Help()
				fmt.Fprintln(os.Stderr)
			}
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		logger := applog.New(os.Stderr, opts.Verbose, opts.Quiet)
		return runner.Run(ctx, opts, logger)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringSliceVarP(&opts.Targets, "url", "u", nil, "Target URL (repeatable)")
	f.StringVarP(&opts.URLsFile, "urls-file", "l", "", "File with one URL per line")
	f.StringVarP(&opts.RequestFile, "request-file", "r", "", "Raw HTTP request file (e.g. Burp Suite export)")
	f.StringVar(&opts.CIDRTargets, "cidr", "", "CIDR range to scan (e.g. 192.168.1.0/24)")
	f.StringVar(&opts.Ports, "ports", "", "Ports for CIDR targets (comma-separated, e.g. 80,443,8080)")

	// Wordlist
	f.StringArrayVarP(&opts.WordlistPaths, "wordlist", "w", nil, "Wordlist path, repeatable (default: built-in)")
	f.StringSliceVarP(&opts.Prefixes, "prefixes", "p", nil, "Prefixes to prepend to every word (e.g. .,_)")
	f.StringSliceVarP(&opts.Extensions, "extensions", "e", nil, "File extensions to test (e.g. php,html,js)")
	f.IntVar(&opts.WordlistSplit, "wordlist-split", config.DefaultWordlistSplit, "Number of tasks each directory's wordlist is split into")

	// Recursion
	f.BoolVar(&opts.NoRecursion, "no-recursion", false, "Only scan the target roots")
	f.IntVarP(&opts.MaxDepth, "max-depth", "R", 0, "Maximum recursion depth (0 = unbounded)")
	f.BoolVar(&opts.ScanListable, "scan-listable", false, "Run the wordlist against directories with an index page")
	f.BoolVar(&opts.ScrapeListable, "scrape-listable", false, "Follow links on directory index pages")
	f.BoolVar(&opts.Scan401, "scan-401", false, "Recurse into directories answering 401")
	f.BoolVar(&opts.Scan403, "scan-403", false, "Recurse into directories answering 403")

	// Filtering
	f.VarP(&intSliceValue{target: &opts.IncludeStatus}, "include-status", "i", "Only show these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Hide these status codes (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeSize}, "exclude-size", "Hide responses of these sizes (comma-separated)")
	f.BoolVar(&opts.ShowHtaccess, "show-htaccess", false, "Show 403 responses for .ht* files")
	f.IntVar(&opts.DuplicateThreshold, "duplicate-threshold", 0, "Hide responses repeated more than N times per directory (0 = off)")
	f.BoolVar(&opts.DisableValidator, "disable-validator", false, "Do not probe for soft-404 pages")

	// Performance
	f.IntVarP(&opts.Threads, "threads", "t", config.DefaultThreads, "Number of concurrent workers")
	f.DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "HTTP request timeout")
	f.DurationVar(&opts.Throttle, "throttle", 0, "Delay between requests per worker")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Auto back-off on 429/503 and repeated failures")
	f.IntVar(&opts.MaxErrors, "max-errors", config.DefaultMaxErrors, "Consecutive failures before a host is abandoned")
	f.Int64Var(&opts.MaxBodySize, "max-body-size", config.DefaultMaxBodySize, "Maximum response bytes read per request (0 = unlimited)")

	// HTTP
	f.StringVarP(&opts.Method, "method", "X", config.DefaultMethod, "HTTP method")
	f.StringSliceVarP(new([]string), "header", "H", nil, "Custom headers (Key: Value)")
	f.StringVarP(&opts.Cookies, "cookies", "c", "", "Cookie header value")
	f.StringVarP(&opts.UserAgent, "user-agent", "a", config.DefaultUserAgent, "User-Agent string")
	f.StringVar(&opts.Username, "username", "", "Basic auth username")
	f.StringVar(&opts.Password, "password", "", "Basic auth password")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP or SOCKS5 proxy URL")
	f.StringVar(&opts.ProxyAuth, "proxy-auth", "", "Proxy credentials (user:password)")
	f.BoolVarP(&opts.IgnoreCert, "ignore-cert", "k", false, "Skip TLS certificate verification")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", config.DefaultOutputFormat, "Output format: text, json, xml, csv, markdown")
	f.StringVar(&opts.SortBy, "sort", "", "Sort results: status, url, size (buffers until scan completes)")
	f.BoolVar(&opts.Tree, "tree", false, "Print directory tree summary after scan")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&opts.OnResultCmd, "on-result", "", "Shell command to run for each result (receives JSON on stdin)")
	f.StringVar(&opts.DBDir, "db-dir", "", "Record findings in a SQLite database in this directory")
	f.Lookup("db-dir").NoOptDefVal = config.XDGDataDir()

	// Configuration
	f.StringVar(&opts.ConfigFile, "config", "", "YAML profile (default: "+filepath.Join(config.XDGConfigDir(), config.DefaultProfileFile)+")")
	f.StringVar(&opts.ResumeFile, "resume-file", "", "File to save/load scan progress for resume")
	f.Lookup("resume-file").NoOptDefVal = filepath.Join(config.XDGStateDir(), "resume.json")

	// Custom help: categorized flags like httpx.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})

	// Parse headers from string slice into map before anything else reads them.
	rootCmd.PreRunE = chainPreRun(func(cmd *cobra.Command, args []string) error {
		headers, _ := f.GetStringSlice("header")
		parsed, err := parseHeaders(headers)
		if err != nil {
			return err
		}
		opts.Headers = parsed
		return nil
	}, rootCmd.PreRunE)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyRequestFile seeds target, method, cookies and headers from a raw
// request. Anything given explicitly on the command line wins.
func applyRequestFile(flags *pflag.FlagSet, o *config.Options) error {
	if o.RequestFile == "" {
		return nil
	}
	parsed, err := reqparse.ParseFile(o.RequestFile)
	if err != nil {
		return fmt.Errorf("parsing request file: %w", err)
	}

	if !flags.Changed("url") {
		o.Targets = []string{parsed.URL}
	}
	if !flags.Changed("method") && parsed.Method != "" {
		o.Method = parsed.Method
	}
	if !flags.Changed("cookies") && parsed.Cookies != "" {
		o.Cookies = parsed.Cookies
	}
	if o.Headers == nil {
		o.Headers = make(map[string]string, len(parsed.Headers))
	}
	for key, val := range parsed.Headers {
		if strings.EqualFold(key, "User-Agent") {
			if !flags.Changed("user-agent") {
				o.UserAgent = val
			}
			continue
		}
		if _, exists := o.Headers[key]; !exists {
			o.Headers[key] = val
		}
	}
	if !o.Quiet {
		fmt.Fprintf(os.Stderr, "[+] Loaded request from %s -> %s\n", o.RequestFile, parsed.URL)
	}
	return nil
}

// applyProfile merges the YAML profile from --config or the XDG config dir.
func applyProfile(flags *pflag.FlagSet, o *config.Options) error {
	path := config.FindProfile(o.ConfigFile)
	if path == "" {
		if o.ConfigFile != "" {
			return fmt.Errorf("%w: %s", config.ErrProfileNotFound, o.ConfigFile)
		}
		return nil
	}
	p, err := config.LoadProfile(path)
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", path, err)
	}
	p.Apply(o, flags.Changed)
	if !o.Quiet {
		fmt.Fprintf(os.Stderr, "[+] Loaded profile %s\n", path)
	}
	return nil
}

func parseHeaders(headers []string) (map[string]string, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		key, val, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return out, nil
}

// chainPreRun combines two PreRunE functions.
func chainPreRun(first, second func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if first != nil {
			if err := first(cmd, args); err != nil {
				return err
			}
		}
		if second != nil {
			return second(cmd, args)
		}
		return nil
	}
}

// intSliceValue implements pflag.Value for comma-separated int slices. The
// first Set replaces the default; later ones append.
type intSliceValue struct {
	target  *[]int
	changed bool
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	if !v.changed {
		*v.target = nil
		v.changed = true
	}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	// Show default for non-zero values.
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
     _ _                       _
  __| (_)_ __ _ __  _ __ ___ | |__   ___
 / _' | | '__| '_ \| '__/ _ \| '_ \ / _ \
| (_| | | |  | |_) | | | (_) | |_) |  __/
 \__,_|_|_|  | .__/|_|  \___/|_.__/ \___|   %s
             |_|

`, ver)
}
