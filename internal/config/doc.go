// Package config holds the scan options shared read-only by every worker,
// the validator and the output sink, plus the YAML profile loader that can
// seed them.
package config
