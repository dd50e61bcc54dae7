package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"

	"github.com/maxvaer/dirprobe/internal/config"
)

// Handle is a per-worker transport handle. Method, headers, credentials,
// proxy and TLS settings are fixed at construction; the body of the most
// recent probe lives in its ResponseBuffer.
type Handle struct {
	client   *http.Client
	method   string
	header   http.Header
	host     string
	username string
	password string
	maxBody  int64
	buf      ResponseBuffer
}

// NewHandle builds a Handle with its own transport so no connection state is
// shared between workers.
func NewHandle(opts *config.Options) (*Handle, error) {
	dialer := &net.Dialer{Timeout: opts.Timeout}
	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.IgnoreCert}, //nolint:gosec // user toggle
		DialContext:         dialer.DialContext,
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 2,
	}

	if opts.Proxy != "" {
		if err := configureProxy(transport, dialer, opts); err != nil {
			return nil, err
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	h := &Handle{
		client:   client,
		method:   method,
		header:   make(http.Header),
		username: opts.Username,
		password: opts.Password,
		maxBody:  opts.MaxBodySize,
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	h.header.Set("User-Agent", ua)
	for k, v := range opts.Headers {
		if strings.EqualFold(k, "Host") {
			h.host = v
			continue
		}
		h.header.Set(k, v)
	}
	if opts.Cookies != "" {
		h.header.Set("Cookie", opts.Cookies)
	}
	return h, nil
}

func configureProxy(transport *http.Transport, dialer *net.Dialer, opts *config.Options) error {
	proxyURL, err := url.Parse(opts.Proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
	}
	if user, pass, ok := opts.ProxyCredentials(); ok {
		proxyURL.User = url.UserPassword(user, pass)
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks5", "socks5h":
		d, err := proxy.FromURL(proxyURL, dialer)
		if err != nil {
			return fmt.Errorf("creating SOCKS dialer: %w", err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("SOCKS dialer for %s does not support contexts", proxyURL.Redacted())
		}
		transport.DialContext = cd.DialContext
	default:
		return fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
	return nil
}

// Probe requests target and classifies the response. It never returns an
// error: transport failures come back as an Outcome with StatusCode 0.
//
// A redirect to target+"/" marks the outcome as a directory; the canonical
// form is fetched so ContentLength and Body reflect the directory itself,
// while StatusCode keeps the redirect code.
func (h *Handle) Probe(ctx context.Context, target string) Outcome {
	o := Outcome{URL: target}

	code, location, ok := h.fetch(ctx, target)
	if !ok {
		return o
	}
	o.StatusCode = code
	o.ContentLength = int64(h.buf.Len())

	switch {
	case isRedirect(code):
		o.RedirectURL = location
		if location != "" && !strings.HasSuffix(target, "/") && sameURL(location, target+"/") {
			o.IsDirectory = true
			if _, _, ok := h.fetch(ctx, target+"/"); ok {
				o.ContentLength = int64(h.buf.Len())
			} else {
				o.ContentLength = 0
			}
		}
	case strings.HasSuffix(target, "/") && code != http.StatusNotFound:
		o.IsDirectory = true
	}
	return o
}

// Body returns the body of the most recent fetch. It is overwritten by the
// next probe on this handle.
func (h *Handle) Body() []byte {
	return h.buf.Bytes()
}

func (h *Handle) fetch(ctx context.Context, target string) (code int, location string, ok bool) {
	h.buf.Reset()

	req, err := http.NewRequestWithContext(ctx, h.method, target, nil)
	if err != nil {
		return 0, "", false
	}
	req.Header = h.header.Clone()
	if h.host != "" {
		req.Host = h.host
	}
	if h.username != "" {
		req.SetBasicAuth(h.username, h.password)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, "", false
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if h.maxBody > 0 {
		body = io.LimitReader(resp.Body, h.maxBody)
	}
	if _, err := io.Copy(&h.buf, body); err != nil {
		h.buf.Reset()
		return 0, "", false
	}

	if loc, err := resp.Location(); err == nil {
		location = loc.String()
	}
	return resp.StatusCode, location, true
}

func isRedirect(code int) bool {
	return code >= 300 && code < 400
}

func sameURL(a, b string) bool {
	if a == b {
		return true
	}
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) &&
		strings.EqualFold(ua.Host, ub.Host) &&
		ua.EscapedPath() == ub.EscapedPath() &&
		ua.RawQuery == ub.RawQuery
}
