package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultProfileFile is the profile name looked up in the XDG config dir.
const DefaultProfileFile = "profile.yaml"

// Profile is a reusable set of scan settings stored as YAML. Zero values mean
// "not set" and leave the corresponding option untouched.
type Profile struct {
	Wordlists        []string          `yaml:"wordlists"`
	Prefixes         []string          `yaml:"prefixes"`
	Extensions       []string          `yaml:"extensions"`
	Threads          int               `yaml:"threads"`
	WordlistSplit    int               `yaml:"wordlist_split"`
	Timeout          time.Duration     `yaml:"timeout"`
	Throttle         time.Duration     `yaml:"throttle"`
	MaxErrors        int               `yaml:"max_errors"`
	MaxDepth         int               `yaml:"max_depth"`
	ScanListable     bool              `yaml:"scan_listable"`
	ScrapeListable   bool              `yaml:"scrape_listable"`
	DisableValidator bool              `yaml:"disable_validator"`
	IncludeStatus    []int             `yaml:"include_status"`
	ExcludeStatus    []int             `yaml:"exclude_status"`
	Method           string            `yaml:"method"`
	Headers          map[string]string `yaml:"headers"`
	Cookies          string            `yaml:"cookies"`
	UserAgent        string            `yaml:"user_agent"`
	Proxy            string            `yaml:"proxy"`
	IgnoreCert       bool              `yaml:"ignore_cert"`
	OutputFormat     string            `yaml:"format"`
}

// LoadProfile reads a YAML profile. A missing file yields ErrProfileNotFound.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProfile returns the explicit path if it exists, otherwise the default
// profile in the XDG config dir, or "" when neither is present.
func FindProfile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	def := filepath.Join(XDGConfigDir(), DefaultProfileFile)
	if _, err := os.Stat(def); err == nil {
		return def
	}
	return ""
}

// Apply copies set profile values into opts. changed reports whether the
// named command-line flag was given explicitly; explicit flags always win.
func (p *Profile) Apply(opts *Options, changed func(flag string) bool) {
	keep := func(flag string) bool { return changed != nil && changed(flag) }

	if len(p.Wordlists) > 0 && !keep("wordlist") {
		opts.WordlistPaths = p.Wordlists
	}
	if len(p.Prefixes) > 0 && !keep("prefixes") {
		opts.Prefixes = p.Prefixes
	}
	if len(p.Extensions) > 0 && !keep("extensions") {
		opts.Extensions = p.Extensions
	}
	if p.Threads > 0 && !keep("threads") {
		opts.Threads = p.Threads
	}
	if p.WordlistSplit > 0 && !keep("wordlist-split") {
		opts.WordlistSplit = p.WordlistSplit
	}
	if p.Timeout > 0 && !keep("timeout") {
		opts.Timeout = p.Timeout
	}
	if p.Throttle > 0 && !keep("throttle") {
		opts.Throttle = p.Throttle
	}
	if p.MaxErrors > 0 && !keep("max-errors") {
		opts.MaxErrors = p.MaxErrors
	}
	if p.MaxDepth > 0 && !keep("max-depth") {
		opts.MaxDepth = p.MaxDepth
	}
	if p.ScanListable && !keep("scan-listable") {
		opts.ScanListable = true
	}
	if p.ScrapeListable && !keep("scrape-listable") {
		opts.ScrapeListable = true
	}
	if p.DisableValidator && !keep("disable-validator") {
		opts.DisableValidator = true
	}
	if len(p.IncludeStatus) > 0 && !keep("include-status") && !keep("exclude-status") {
		opts.IncludeStatus = p.IncludeStatus
		opts.ExcludeStatus = nil
	}
	if len(p.ExcludeStatus) > 0 && !keep("exclude-status") && !keep("include-status") {
		opts.ExcludeStatus = p.ExcludeStatus
		opts.IncludeStatus = nil
	}
	if p.Method != "" && !keep("method") {
		opts.Method = p.Method
	}
	if len(p.Headers) > 0 {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string, len(p.Headers))
		}
		for k, v := range p.Headers {
			if _, exists := opts.Headers[k]; !exists {
				opts.Headers[k] = v
			}
		}
	}
	if p.Cookies != "" && !keep("cookies") {
		opts.Cookies = p.Cookies
	}
	if p.UserAgent != "" && !keep("user-agent") {
		opts.UserAgent = p.UserAgent
	}
	if p.Proxy != "" && !keep("proxy") {
		opts.Proxy = p.Proxy
	}
	if p.IgnoreCert && !keep("ignore-cert") {
		opts.IgnoreCert = true
	}
	if p.OutputFormat != "" && !keep("format") {
		opts.OutputFormat = p.OutputFormat
	}
}
