package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// Mask replaces redacted values.
const Mask = "***REDACTED***"

// redactedKeys are attribute keys whose values are always masked.
var redactedKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"cookies":             true,
	"set-cookie":          true,
	"password":            true,
	"proxy_auth":          true,
	"proxy-auth":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
}

// redactedKeywords mask any key containing them.
var redactedKeywords = []string{"password", "secret", "token", "session"}

// RedactingHandler wraps another slog.Handler and masks sensitive attributes
// before they are handed on.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next. A nil next falls back to the default handler.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redact(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redact(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redact(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, g := range group {
			clean[i] = redact(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	key := strings.ToLower(a.Key)
	if redactedKeys[key] {
		return slog.String(a.Key, Mask)
	}
	for _, kw := range redactedKeywords {
		if strings.Contains(key, kw) {
			return slog.String(a.Key, Mask)
		}
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, redactValue(a.Value.String()))
	}
	return a
}

// redactValue masks bearer/basic credentials and URL userinfo passwords.
func redactValue(v string) string {
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "bearer ") || strings.HasPrefix(lower, "basic ") {
		return Mask
	}
	if strings.Contains(v, "@") && strings.Contains(v, "://") {
		if u, err := url.Parse(v); err == nil && u.User != nil {
			if _, hasPass := u.User.Password(); hasPass {
				u.User = url.UserPassword(u.User.Username(), "xxxxx")
				return u.String()
			}
		}
	}
	return v
}

// New returns a logger writing text records to w. verbose enables debug
// records, silent drops everything below error.
func New(w io.Writer, verbose, silent bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case silent:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(h))
}

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
