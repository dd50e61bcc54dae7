package validator

import (
	"fmt"
	"net/http"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// Signature describes what a nonexistent path looks like inside one
// directory.
type Signature struct {
	Code        int
	Length      int64
	MatchLength bool // false = any length with Code counts as not found
}

// IsNotFound reports whether o matches the signature.
func (s Signature) IsNotFound(o scanner.Outcome) bool {
	if o.StatusCode != s.Code {
		return false
	}
	return !s.MatchLength || o.ContentLength == s.Length
}

func (s Signature) String() string {
	if s.MatchLength {
		return fmt.Sprintf("(CODE:%d|SIZE:%d)", s.Code, s.Length)
	}
	return fmt.Sprintf("(CODE:%d)", s.Code)
}

// DetermineNotFound derives a Signature from the baseline probes. A value is
// accepted when any two of the three probes agree on it. ok is false when the
// agreed code is 0, meaning the directory cannot be baselined at all.
func DetermineNotFound(probes []scanner.Outcome) (sig Signature, ok bool) {
	if len(probes) < 3 {
		return Signature{Code: http.StatusNotFound}, true
	}

	code, agreed := agree(probes[0].StatusCode, probes[1].StatusCode, probes[2].StatusCode)
	if !agreed {
		code = http.StatusNotFound
	}
	switch code {
	case 0:
		return Signature{}, false
	case http.StatusNotFound:
		return Signature{Code: http.StatusNotFound}, true
	}

	sig = Signature{Code: code}
	if length, agreed := agree(probes[0].ContentLength, probes[1].ContentLength, probes[2].ContentLength); agreed {
		sig.Length = length
		sig.MatchLength = true
	}
	return sig, true
}

// agree returns the value shared by at least two of a, b and c, checking the
// pairs (a,b), (a,c) and then (b,c).
func agree[T comparable](a, b, c T) (T, bool) {
	switch {
	case a == b || a == c:
		return a, true
	case b == c:
		return b, true
	}
	var zero T
	return zero, false
}
