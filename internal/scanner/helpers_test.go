package scanner

import (
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/maxvaer/dirprobe/internal/config"
)

func testOpts() *config.Options {
	opts := config.NewOptions()
	opts.Timeout = 2 * time.Second
	opts.Targets = []string{"http://127.0.0.1"}
	return opts
}

func newTestHandle(t *testing.T, opts *config.Options) *Handle {
	t.Helper()
	if opts == nil {
		opts = testOpts()
	}
	h, err := NewHandle(opts)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

// hitCounter records how often each path was requested.
type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func newHitCounter() *hitCounter {
	return &hitCounter{hits: make(map[string]int)}
}

func (c *hitCounter) add(path string) {
	c.mu.Lock()
	c.hits[path]++
	c.mu.Unlock()
}

func (c *hitCounter) get(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[path]
}

// dropConnection closes the client connection without a response, which the
// client sees as a transport failure.
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("response writer cannot hijack")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	conn.Close()
}

// closedURL returns a URL nothing listens on.
func closedURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return "http://" + addr
}
