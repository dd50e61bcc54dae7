// Package reqparse turns a raw HTTP request file (e.g. a Burp Suite export)
// into a scan target plus the method, headers and cookies to replay.
package reqparse

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

var (
	ErrEmptyRequest   = errors.New("request file is empty")
	ErrBadRequestLine = errors.New("invalid request line")
	ErrMissingHost    = errors.New("request file missing Host header")
)

// skippedHeaders are not replayed: the transport sets them per request.
var skippedHeaders = map[string]bool{
	"host":              true,
	"content-length":    true,
	"connection":        true,
	"transfer-encoding": true,
	"accept-encoding":   true,
	"cookie":            true,
}

// ParsedRequest holds the extracted data from a raw HTTP request file.
type ParsedRequest struct {
	Method  string
	URL     string // directory of the request path, with a trailing slash
	Cookies string
	Headers map[string]string
}

// ParseFile reads a raw HTTP request and extracts the target directory, the
// cookies and every header worth replaying.
func ParseFile(file string) (*ParsedRequest, error) {
	f, err := os.Open(file) //nolint:gosec // user-provided path
	if err != nil {
		return nil, fmt.Errorf("opening request file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB lines for large cookies

	if !scanner.Scan() {
		return nil, ErrEmptyRequest
	}
	requestLine := strings.TrimSpace(scanner.Text())
	parts := strings.Fields(requestLine)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrBadRequestLine, requestLine)
	}
	method, target := parts[0], parts[1]
	proto := ""
	if len(parts) >= 3 {
		proto = strings.ToUpper(parts[2])
	}

	req := &ParsedRequest{Method: method, Headers: make(map[string]string)}
	host := ""
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch strings.ToLower(key) {
		case "host":
			host = value
		case "cookie":
			req.Cookies = value
		}
		if !skippedHeaders[strings.ToLower(key)] {
			req.Headers[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}

	// Some proxies log the absolute form in the request line.
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid URL in request line: %w", err)
		}
		req.URL = u.Scheme + "://" + u.Host + directoryOf(u.Path)
		return req, nil
	}

	if host == "" {
		return nil, ErrMissingHost
	}

	// Burp exports do not record TLS. HTTP/2 implies it; for HTTP/1.x only an
	// explicit :80 suggests plain HTTP.
	scheme := "https"
	if strings.HasPrefix(proto, "HTTP/1") && strings.HasSuffix(host, ":80") {
		scheme = "http"
	}

	reqPath := target
	if i := strings.IndexAny(reqPath, "?#"); i >= 0 {
		reqPath = reqPath[:i]
	}
	req.URL = scheme + "://" + host + directoryOf(reqPath)
	return req, nil
}

// directoryOf returns the directory part of a request path, ending in "/".
func directoryOf(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if strings.HasSuffix(p, "/") {
		return p
	}
	dir := path.Dir(p)
	if dir == "/" || dir == "." {
		return "/"
	}
	return dir + "/"
}
