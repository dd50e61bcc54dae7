package scanner

// Outcome is the classified result of one HTTP probe. It is created once by
// the Fetcher (or the listing scraper) and never modified afterwards.
type Outcome struct {
	URL            string
	StatusCode     int   // 0 = transport failure, never a real HTTP code
	ContentLength  int64 // bytes actually received
	IsDirectory    bool
	IsListable     bool // only meaningful when IsDirectory
	RedirectURL    string
	FoundViaScrape bool // discovered in a listing rather than the wordlist
	ParentDepth    int
	Parent         string // directory whose wordlist pass or listing produced it; "" for target roots
}

// NewOutcome returns an unclassified outcome for url. FoundViaScrape starts
// out true; every classifier sets it explicitly.
func NewOutcome(url string) Outcome {
	return Outcome{URL: url, FoundViaScrape: true}
}

// Failed reports whether the probe never got an HTTP response.
func (o Outcome) Failed() bool {
	return o.StatusCode == 0
}

// failedOutcome is what a transport error turns into.
func failedOutcome(url string, parentDepth int, scraped bool) Outcome {
	return Outcome{URL: url, ParentDepth: parentDepth, FoundViaScrape: scraped}
}
