package filter

import (
	"testing"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/scanner"
)

func TestStatusFilter_Include(t *testing.T) {
	f := NewStatusFilter([]int{200, 301}, nil)

	if f.ShouldFilter(&scanner.Outcome{StatusCode: 200}) {
		t.Error("200 should pass include filter")
	}
	if !f.ShouldFilter(&scanner.Outcome{StatusCode: 404}) {
		t.Error("404 should be filtered by include filter")
	}
}

func TestStatusFilter_Exclude(t *testing.T) {
	f := NewStatusFilter(nil, []int{404, 500})

	if f.ShouldFilter(&scanner.Outcome{StatusCode: 200}) {
		t.Error("200 should pass exclude filter")
	}
	if !f.ShouldFilter(&scanner.Outcome{StatusCode: 404}) {
		t.Error("404 should be filtered by exclude filter")
	}
}

func TestSizeFilter(t *testing.T) {
	f := NewSizeFilter([]int{0, 1234})

	o := &scanner.Outcome{ContentLength: 1234}
	if !f.ShouldFilter(o) {
		t.Error("size 1234 should be filtered")
	}

	o.ContentLength = 5678
	if f.ShouldFilter(o) {
		t.Error("size 5678 should pass")
	}
}

func TestHtaccessFilter(t *testing.T) {
	f := NewHtaccessFilter()
	tests := []struct {
		url  string
		code int
		want bool
	}{
		{"http://example.com/.htaccess", 403, true},
		{"http://example.com/sub/.htpasswd", 403, true},
		{"http://example.com/.ht/", 403, true},
		{"http://example.com/.htaccess", 200, false},
		{"http://example.com/.html", 200, false},
		{"http://example.com/page.htm", 403, false},
		{"http://example.com/.git/", 403, false},
	}
	for _, tt := range tests {
		if got := f.ShouldFilter(&scanner.Outcome{URL: tt.url, StatusCode: tt.code}); got != tt.want {
			t.Errorf("ShouldFilter(%s, %d) = %v, want %v", tt.url, tt.code, got, tt.want)
		}
	}
}

func TestChain_ShortCircuits(t *testing.T) {
	chain := NewChain()
	chain.Add(NewStatusFilter(nil, []int{404}))
	chain.Add(NewSizeFilter([]int{0}))

	filtered, reason := chain.Apply(&scanner.Outcome{StatusCode: 404, ContentLength: 0})
	if !filtered {
		t.Error("expected chain to filter")
	}
	if reason != "status" {
		t.Errorf("expected reason 'status', got %q", reason)
	}
}

func TestFromOptions(t *testing.T) {
	opts := config.NewOptions()
	opts.ExcludeSize = []int{42}

	chain := FromOptions(opts)
	tests := []struct {
		name   string
		o      scanner.Outcome
		reason string
	}{
		{"default blacklist", scanner.Outcome{URL: "http://h/x", StatusCode: 404}, "status"},
		{"excluded size", scanner.Outcome{URL: "http://h/x", StatusCode: 200, ContentLength: 42}, "size"},
		{"htaccess hidden by default", scanner.Outcome{URL: "http://h/.htaccess", StatusCode: 403}, "htaccess"},
		{"passes", scanner.Outcome{URL: "http://h/admin", StatusCode: 200, ContentLength: 10}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.o
			filtered, reason := chain.Apply(&o)
			if filtered != (tt.reason != "") || reason != tt.reason {
				t.Errorf("Apply() = %v %q, want reason %q", filtered, reason, tt.reason)
			}
		})
	}

	opts.ShowHtaccess = true
	if filtered, _ := FromOptions(opts).Apply(&scanner.Outcome{URL: "http://h/.htaccess", StatusCode: 403}); filtered {
		t.Error("show-htaccess should let .ht files through")
	}
}
