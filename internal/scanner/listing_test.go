package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func indexPage(dir string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>Index of %s</title></head><body>\n", dir)
	b.WriteString(`<a href="../">Parent Directory</a>` + "\n")
	for _, l := range links {
		fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", l, l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// chainServer serves /directory/ -> dir1/ -> dir2/ -> file, each level an
// index page.
func chainServer(t *testing.T) (*httptest.Server, *hitCounter) {
	t.Helper()
	hits := newHitCounter()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		switch r.URL.Path {
		case "/directory/":
			fmt.Fprint(w, indexPage("/directory/", "dir1/"))
		case "/directory/dir1/":
			fmt.Fprint(w, indexPage("/directory/dir1/", "dir2/"))
		case "/directory/dir1/dir2/":
			fmt.Fprint(w, indexPage("/directory/dir1/dir2/", "file"))
		case "/directory/dir1/dir2/file":
			fmt.Fprint(w, "contents")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func outcomeURLs(outcomes []Outcome) []string {
	urls := make([]string, len(outcomes))
	for i, o := range outcomes {
		urls[i] = o.URL
	}
	return urls
}

func TestScrapeDirectoryUnbounded(t *testing.T) {
	srv, hits := chainServer(t)
	h := newTestHandle(t, nil)

	got := ScrapeDirectory(context.Background(), h, srv.URL+"/directory", 0, 0, true)

	want := []string{
		srv.URL + "/directory/",
		srv.URL + "/directory/dir1/",
		srv.URL + "/directory/dir1/dir2/",
		srv.URL + "/directory/dir1/dir2/file",
	}
	if urls := outcomeURLs(got); strings.Join(urls, " ") != strings.Join(want, " ") {
		t.Fatalf("outcomes = %v, want %v", urls, want)
	}

	wantDepth := []int{0, 1, 2, 3}
	for i, o := range got {
		if o.ParentDepth != wantDepth[i] {
			t.Errorf("%s depth = %d, want %d", o.URL, o.ParentDepth, wantDepth[i])
		}
		if o.FoundViaScrape != (i > 0) {
			t.Errorf("%s FoundViaScrape = %v", o.URL, o.FoundViaScrape)
		}
	}
	if !got[0].IsDirectory || !got[0].IsListable {
		t.Errorf("root should be a listable directory: %+v", got[0])
	}
	if got[3].IsDirectory {
		t.Error("leaf file should not be a directory")
	}
	if hits.get("/directory/dir1/dir2/file") != 1 {
		t.Error("file should be fetched once")
	}
}

func TestScrapeDirectoryMaxDepth(t *testing.T) {
	srv, hits := chainServer(t)
	h := newTestHandle(t, nil)

	got := ScrapeDirectory(context.Background(), h, srv.URL+"/directory/", 2, 0, true)

	want := []string{
		srv.URL + "/directory/",
		srv.URL + "/directory/dir1/",
		srv.URL + "/directory/dir1/dir2/",
	}
	if urls := outcomeURLs(got); strings.Join(urls, " ") != strings.Join(want, " ") {
		t.Fatalf("outcomes = %v, want %v", urls, want)
	}
	if hits.get("/directory/dir1/dir2/") != 1 {
		t.Errorf("dir2 fetched %d times, want 1", hits.get("/directory/dir1/dir2/"))
	}
	if hits.get("/directory/dir1/dir2/file") != 0 {
		t.Error("file below the depth limit should never be fetched")
	}
	if !got[2].IsDirectory {
		t.Error("unexpanded dir2 should still be reported as a directory")
	}
}

func TestScrapeDirectoryNotListable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><a href="secret">not an index</a></html>`)
	}))
	defer srv.Close()

	got := ScrapeDirectory(context.Background(), newTestHandle(t, nil), srv.URL+"/static/", 0, 0, true)
	if len(got) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(got))
	}
	if !got[0].IsDirectory || got[0].IsListable {
		t.Errorf("outcome = %+v, want non-listable directory", got[0])
	}
}

func TestScrapeDirectoryFailedBranch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/":
			fmt.Fprint(w, indexPage("/files/", "broken/", "ok.txt"))
		case "/files/broken/":
			dropConnection(w)
		case "/files/ok.txt":
			fmt.Fprint(w, "fine")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got := ScrapeDirectory(context.Background(), newTestHandle(t, nil), srv.URL+"/files/", 0, 0, true)
	if len(got) != 3 {
		t.Fatalf("outcomes = %v, want 3", outcomeURLs(got))
	}
	broken := got[1]
	if broken.URL != srv.URL+"/files/broken/" || broken.StatusCode != 0 || broken.IsDirectory {
		t.Errorf("broken branch = %+v, want terminal code-0 outcome", broken)
	}
	if !broken.FoundViaScrape || broken.ParentDepth != 1 {
		t.Errorf("broken branch should keep scrape metadata: %+v", broken)
	}
	if got[2].StatusCode != 200 {
		t.Errorf("sibling of failed branch = %+v", got[2])
	}
}

func TestScrapeDirectoryNotFoundLink(t *testing.T) {
	hits := newHitCounter()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		switch r.URL.Path {
		case "/files/":
			fmt.Fprint(w, indexPage("/files/", "gone/", "ok.txt"))
		case "/files/ok.txt":
			fmt.Fprint(w, "fine")
		default:
			// A 404 body that happens to look like an index must not be
			// scraped.
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, indexPage(r.URL.Path, "deeper"))
		}
	}))
	defer srv.Close()

	for _, maxDepth := range []int{0, 1} {
		t.Run(fmt.Sprintf("maxDepth=%d", maxDepth), func(t *testing.T) {
			got := ScrapeDirectory(context.Background(), newTestHandle(t, nil), srv.URL+"/files/", maxDepth, 0, true)
			if len(got) != 3 {
				t.Fatalf("outcomes = %v, want 3", outcomeURLs(got))
			}
			gone := got[1]
			if gone.URL != srv.URL+"/files/gone/" || gone.StatusCode != http.StatusNotFound {
				t.Fatalf("gone = %+v", gone)
			}
			if gone.IsDirectory || gone.IsListable {
				t.Errorf("404 link should not be a directory: %+v", gone)
			}
			for _, o := range got[1:] {
				if o.Parent != srv.URL+"/files/" {
					t.Errorf("%s parent = %q, want the listing", o.URL, o.Parent)
				}
			}
			if got[0].Parent != "" {
				t.Errorf("root parent = %q, want empty", got[0].Parent)
			}
		})
	}
	if hits.get("/files/gone/deeper") != 0 {
		t.Error("links on a 404 page should never be followed")
	}

	single := ScrapeDirectory(context.Background(), newTestHandle(t, nil), srv.URL+"/files/gone/", 0, 1, false)
	if len(single) != 1 || single[0].IsDirectory {
		t.Errorf("non-root 404 = %+v, want one non-directory outcome", single)
	}
}

func TestScrapeBodyParents(t *testing.T) {
	srv, _ := chainServer(t)
	got := ScrapeDirectory(context.Background(), newTestHandle(t, nil), srv.URL+"/directory/", 0, 0, true)

	want := []string{
		"",
		srv.URL + "/directory/",
		srv.URL + "/directory/dir1/",
		srv.URL + "/directory/dir1/dir2/",
	}
	for i, o := range got {
		if o.Parent != want[i] {
			t.Errorf("%s parent = %q, want %q", o.URL, o.Parent, want[i])
		}
	}
}

func TestIsListing(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"<title>Index of /pub</title>", true},
		{`<a href="../">Parent Directory</a>`, true},
		{"<h1>Directory Listing For /docs</h1>", true},
		{"[To Parent Directory]", true},
		{"Up to higher level directory", true},
		{"<html>welcome home</html>", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsListing([]byte(tt.body)); got != tt.want {
			t.Errorf("IsListing(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestChildLinks(t *testing.T) {
	base, _ := url.Parse("http://example.com/dir/")
	body := `
<a href="a.txt">a</a>
<a href="sub/">sub</a>
<a href="/dir/b.txt?C=M;O=A">b</a>
<a href="http://example.com/dir/c">c</a>
<a href="a.txt#frag">dup</a>
<a href="../">parent</a>
<a href="/other/x">elsewhere</a>
<a href="sub/deeper">nested</a>
<a href="http://evil.com/dir/d">host</a>
<a href="https://example.com/dir/e">scheme</a>
<a href="?C=N;O=D">sort</a>
<a name="anchor">no href</a>
<A HREF="upper">upper</A>
`
	got := childLinks([]byte(body), base)
	want := []string{
		"http://example.com/dir/a.txt",
		"http://example.com/dir/sub/",
		"http://example.com/dir/b.txt",
		"http://example.com/dir/c",
		"http://example.com/dir/upper",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("childLinks =\n%v\nwant\n%v", got, want)
	}
}
