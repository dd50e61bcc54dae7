package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProbeTransportFailure(t *testing.T) {
	h := newTestHandle(t, nil)
	o := h.Probe(context.Background(), closedURL(t)+"/x")

	if o.StatusCode != 0 || o.ContentLength != 0 || o.IsDirectory || o.IsListable || o.RedirectURL != "" {
		t.Errorf("transport failure outcome = %+v", o)
	}
	if o.FoundViaScrape {
		t.Error("probe outcome should not be marked as scraped")
	}
}

func TestProbeBodyReadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "short")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	o := newTestHandle(t, nil).Probe(context.Background(), srv.URL+"/truncated")
	if o.StatusCode != 0 || o.ContentLength != 0 {
		t.Errorf("truncated body should be a transport failure, got %+v", o)
	}
}

func TestProbeLengthIsBytesReceived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("a", 1234))
	}))
	defer srv.Close()

	h := newTestHandle(t, nil)
	o := h.Probe(context.Background(), srv.URL+"/file")
	if o.StatusCode != 200 || o.ContentLength != 1234 {
		t.Errorf("got code=%d len=%d, want 200/1234", o.StatusCode, o.ContentLength)
	}
	if len(h.Body()) != 1234 {
		t.Errorf("buffer holds %d bytes, want 1234", len(h.Body()))
	}

	// The buffer is reset, not appended to, between probes.
	o = h.Probe(context.Background(), srv.URL+"/again")
	if o.ContentLength != 1234 || len(h.Body()) != 1234 {
		t.Errorf("second probe length=%d buffer=%d", o.ContentLength, len(h.Body()))
	}
}

func TestProbeRedirectToDirectory(t *testing.T) {
	hits := newHitCounter()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		switch r.URL.Path {
		case "/admin":
			http.Redirect(w, r, "/admin/", http.StatusMovedPermanently)
		case "/admin/":
			fmt.Fprint(w, "<title>Index of /admin</title><a href=\"../\">Parent Directory</a>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	o := newTestHandle(t, nil).Probe(context.Background(), srv.URL+"/admin")

	if o.StatusCode != http.StatusMovedPermanently {
		t.Errorf("status = %d, want 301", o.StatusCode)
	}
	if !o.IsDirectory {
		t.Error("redirect to slash form should be a directory")
	}
	if o.RedirectURL != srv.URL+"/admin/" {
		t.Errorf("redirect = %q", o.RedirectURL)
	}
	want := int64(len("<title>Index of /admin</title><a href=\"../\">Parent Directory</a>"))
	if o.ContentLength != want {
		t.Errorf("length = %d, want length of the directory body %d", o.ContentLength, want)
	}
	if hits.get("/admin/") != 1 {
		t.Errorf("directory fetched %d times, want 1", hits.get("/admin/"))
	}
}

func TestProbeRedirectElsewhere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	defer srv.Close()

	o := newTestHandle(t, nil).Probe(context.Background(), srv.URL+"/account")
	if o.IsDirectory {
		t.Error("redirect to another path is not a directory")
	}
	if o.RedirectURL != srv.URL+"/login" {
		t.Errorf("relative Location should be resolved, got %q", o.RedirectURL)
	}
}

func TestProbeSlashURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/private/":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := newTestHandle(t, nil)
	if o := h.Probe(context.Background(), srv.URL+"/private/"); !o.IsDirectory {
		t.Errorf("403 on slash url should be a directory: %+v", o)
	}
	if o := h.Probe(context.Background(), srv.URL+"/missing/"); o.IsDirectory {
		t.Errorf("404 on slash url should not be a directory: %+v", o)
	}
}

func TestHandleRequestOptions(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
	}))
	defer srv.Close()

	opts := testOpts()
	opts.Method = "post"
	opts.UserAgent = "test-agent"
	opts.Cookies = "a=1; b=2"
	opts.Headers = map[string]string{"X-Custom": "yes"}
	opts.Username = "user"
	opts.Password = "pass"

	newTestHandle(t, opts).Probe(context.Background(), srv.URL+"/x")

	var got *http.Request
	select {
	case got = <-reqs:
	default:
		t.Fatal("server was not hit")
	}
	if got.Method != http.MethodPost {
		t.Errorf("method = %s", got.Method)
	}
	if got.UserAgent() != "test-agent" {
		t.Errorf("user agent = %q", got.UserAgent())
	}
	if got.Header.Get("Cookie") != "a=1; b=2" {
		t.Errorf("cookie = %q", got.Header.Get("Cookie"))
	}
	if got.Header.Get("X-Custom") != "yes" {
		t.Errorf("custom header = %q", got.Header.Get("X-Custom"))
	}
	if u, p, ok := got.BasicAuth(); !ok || u != "user" || p != "pass" {
		t.Errorf("basic auth = %q %q %v", u, p, ok)
	}
}

func TestHandleHTTPProxy(t *testing.T) {
	hits := newHitCounter()
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Host)
		w.WriteHeader(http.StatusTeapot)
	}))
	defer proxySrv.Close()

	opts := testOpts()
	opts.Proxy = proxySrv.URL
	o := newTestHandle(t, opts).Probe(context.Background(), "http://target.invalid/x")

	if o.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want response from proxy", o.StatusCode)
	}
	if hits.get("target.invalid") != 1 {
		t.Error("request did not go through the proxy")
	}
}

func TestNewHandleBadProxy(t *testing.T) {
	opts := testOpts()
	opts.Proxy = "ftp://127.0.0.1:21"
	if _, err := NewHandle(opts); err == nil {
		t.Error("unsupported proxy scheme should fail")
	}

	opts.Proxy = "socks5://127.0.0.1:1080"
	if _, err := NewHandle(opts); err != nil {
		t.Errorf("socks5 proxy should be accepted: %v", err)
	}
}

func TestResponseBuffer(t *testing.T) {
	var b ResponseBuffer
	b.Write([]byte("hello"))
	b.Write([]byte(" world"))
	if b.Len() != 11 || string(b.Bytes()) != "hello world" {
		t.Errorf("buffer = %q (%d)", b.Bytes(), b.Len())
	}
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len after Reset = %d", b.Len())
	}
	b.Write([]byte("x"))
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}

func TestNewOutcomeDefaults(t *testing.T) {
	o := NewOutcome("http://example.com/a")
	if !o.FoundViaScrape {
		t.Error("NewOutcome should default FoundViaScrape to true")
	}
	if o.StatusCode != 0 || o.IsDirectory || o.ParentDepth != 0 {
		t.Errorf("unexpected defaults: %+v", o)
	}
}
