// Package hook runs a user command for every finding.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// Timeout bounds a single hook invocation.
const Timeout = 30 * time.Second

// resultJSON is the JSON payload sent to the hook command via stdin.
type resultJSON struct {
	URL           string `json:"url"`
	Host          string `json:"host"`
	Path          string `json:"path"`
	StatusCode    int    `json:"status"`
	ContentLength int64  `json:"size"`
	RedirectURL   string `json:"redirect,omitempty"`
	IsDirectory   bool   `json:"is_directory"`
	Scraped       bool   `json:"scraped"`
}

// Runner executes a shell command for each finding.
type Runner struct {
	cmd    string
	logger *slog.Logger
}

// NewRunner creates a hook runner. cmd is the shell command to execute; it
// may contain {url}, {host}, {path}, {status} and {size} placeholders.
func NewRunner(cmd string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cmd: cmd, logger: logger}
}

// Run executes the hook command with the finding as JSON on stdin. Errors
// are logged but do not halt the scan.
func (r *Runner) Run(o *scanner.Outcome) {
	host, path := o.URL, o.URL
	if u, err := url.Parse(o.URL); err == nil {
		host, path = u.Host, u.Path
	}

	data, err := json.Marshal(resultJSON{
		URL:           o.URL,
		Host:          host,
		Path:          path,
		StatusCode:    o.StatusCode,
		ContentLength: o.ContentLength,
		RedirectURL:   o.RedirectURL,
		IsDirectory:   o.IsDirectory,
		Scraped:       o.FoundViaScrape,
	})
	if err != nil {
		r.logger.Error("hook payload", "error", err)
		return
	}

	expanded := strings.NewReplacer(
		"{url}", o.URL,
		"{host}", host,
		"{path}", path,
		"{status}", strconv.Itoa(o.StatusCode),
		"{size}", strconv.FormatInt(o.ContentLength, 10),
	).Replace(r.cmd)

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		r.logger.Warn("hook failed", "url", o.URL, "error", err, "stderr", strings.TrimSpace(stderr.String()))
		return
	}
	if len(out) > 0 {
		r.logger.Info("hook", "url", o.URL, "output", strings.TrimSpace(string(out)))
	}
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
