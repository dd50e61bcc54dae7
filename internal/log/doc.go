// Package log builds the slog logger used across a scan. Records pass through
// a RedactingHandler so credentials supplied for the target (basic auth,
// cookies, custom auth headers, proxy userinfo) never reach log output.
package log
