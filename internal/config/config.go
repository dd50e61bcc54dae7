package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName is used for XDG directory paths and the default User-Agent.
const AppName = "dirprobe"

// Defaults applied by NewOptions.
const (
	DefaultThreads       = 10
	DefaultWordlistSplit = 3
	DefaultTimeout       = 5 * time.Second
	DefaultMaxErrors     = 5
	DefaultMaxBodySize   = 5 * 1024 * 1024
	DefaultUserAgent     = "dirprobe/1.0"
	DefaultMethod        = "GET"
	DefaultOutputFormat  = "text"
)

// Options holds all configuration for a scan. It is built once before the
// scan starts and never mutated afterwards.
type Options struct {
	// Target
	Targets       []string
	URLsFile      string
	CIDRTargets   string
	Ports         string
	RequestFile   string
	WordlistPaths []string // empty = use embedded
	Prefixes      []string
	Extensions    []string
	WordlistSplit int // tasks per directory pass

	// Performance
	Threads          int
	Timeout          time.Duration
	Throttle         time.Duration // per-worker delay between probes
	AdaptiveThrottle bool
	MaxErrors        int   // consecutive transport failures per host before abandoning
	MaxBodySize      int64 // 0 = unlimited

	// Recursion
	NoRecursion    bool
	MaxDepth       int // 0 = unbounded
	ScanListable   bool
	ScrapeListable bool
	Scan401        bool
	Scan403        bool

	// Validation and filtering
	DisableValidator   bool
	IncludeStatus      []int // non-empty = whitelist mode
	ExcludeStatus      []int
	ExcludeSize        []int
	ShowHtaccess       bool
	DuplicateThreshold int // 0 = off

	// HTTP
	Method     string
	Headers    map[string]string
	Cookies    string
	UserAgent  string
	Username   string
	Password   string
	Proxy      string
	ProxyAuth  string // user:password
	IgnoreCert bool

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "xml", "csv", "markdown"
	SortBy       string
	Tree         bool
	Quiet        bool
	Verbose      bool
	NoColor      bool
	OnResultCmd  string
	DBDir        string

	// Configuration
	ConfigFile string
	ResumeFile string
}

// NewOptions returns Options populated with defaults.
func NewOptions() *Options {
	return &Options{
		WordlistSplit: DefaultWordlistSplit,
		Threads:       DefaultThreads,
		Timeout:       DefaultTimeout,
		MaxErrors:     DefaultMaxErrors,
		MaxBodySize:   DefaultMaxBodySize,
		ExcludeStatus: []int{404},
		Method:        DefaultMethod,
		UserAgent:     DefaultUserAgent,
		OutputFormat:  DefaultOutputFormat,
	}
}

// Whitelist reports whether only the include-status codes are shown. The
// validator skips signature generation in this mode since nothing would use it.
func (o *Options) Whitelist() bool {
	return len(o.IncludeStatus) > 0
}

// RecursionAllowed reports whether a directory at the given depth may get its
// own wordlist pass.
func (o *Options) RecursionAllowed(depth int) bool {
	if depth == 0 {
		return true
	}
	if o.NoRecursion {
		return false
	}
	return o.MaxDepth == 0 || depth <= o.MaxDepth
}

// ProxyCredentials splits ProxyAuth into user and password.
func (o *Options) ProxyCredentials() (user, pass string, ok bool) {
	if o.ProxyAuth == "" {
		return "", "", false
	}
	return strings.Cut(o.ProxyAuth, ":")
}

// Validate checks option consistency. It returns the first problem found.
func (o *Options) Validate() error {
	if len(o.Targets) == 0 && o.URLsFile == "" && o.CIDRTargets == "" {
		return ErrNoTarget
	}
	for _, t := range o.Targets {
		if !strings.HasPrefix(t, "http://") && !strings.HasPrefix(t, "https://") {
			return ErrInvalidTarget
		}
	}
	if o.Threads <= 0 {
		return ErrInvalidThreads
	}
	if o.WordlistSplit <= 0 {
		return ErrInvalidWordlistSplit
	}
	if o.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if o.Throttle < 0 {
		return ErrInvalidThrottle
	}
	if o.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if o.MaxErrors <= 0 {
		return ErrInvalidMaxErrors
	}
	if len(o.IncludeStatus) > 0 && len(o.ExcludeStatus) > 0 {
		return ErrConflictingStatus
	}
	switch o.OutputFormat {
	case "text", "json", "xml", "csv", "markdown":
	default:
		return ErrInvalidOutputFormat
	}
	switch o.SortBy {
	case "", "status", "url", "size":
	default:
		return ErrInvalidSort
	}
	if o.ProxyAuth != "" && !strings.Contains(o.ProxyAuth, ":") {
		return ErrInvalidProxyAuth
	}
	return nil
}

// XDGConfigDir returns the directory searched for the default profile.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the default findings database directory.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGStateDir returns the directory resume files default to.
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}
