package config

import "errors"

// Validation errors returned by Options.Validate.
var (
	ErrNoTarget             = errors.New("target required: use -u, -l, --cidr, or --request-file")
	ErrInvalidTarget        = errors.New("target must start with http:// or https://")
	ErrInvalidThreads       = errors.New("threads must be positive")
	ErrInvalidWordlistSplit = errors.New("wordlist split must be positive")
	ErrInvalidTimeout       = errors.New("timeout must be positive")
	ErrInvalidThrottle      = errors.New("throttle must be non-negative")
	ErrInvalidMaxDepth      = errors.New("max depth must be non-negative")
	ErrInvalidMaxErrors     = errors.New("max errors must be positive")
	ErrConflictingStatus    = errors.New("--include-status and --exclude-status are mutually exclusive")
	ErrInvalidOutputFormat  = errors.New("--format must be one of: text, json, xml, csv, markdown")
	ErrInvalidSort          = errors.New("--sort must be one of: status, url, size")
	ErrInvalidProxyAuth     = errors.New("--proxy-auth must be in user:password form")
	ErrProfileNotFound      = errors.New("profile file not found")
)
