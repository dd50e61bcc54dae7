// Package wordlist loads candidate names and expands them into the relative
// paths probed in every directory.
package wordlist

import (
	"fmt"
	"os"
	"strings"
)

// LoadWords reads and merges the given wordlist files, dropping comments,
// blank lines and duplicates while keeping first-seen order. With no files
// the embedded default list is used.
func LoadWords(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return parse(embeddedWordlist, nil), nil
	}
	seen := make(map[string]struct{})
	var words []string
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // user-provided path
		if err != nil {
			return nil, fmt.Errorf("reading wordlist %s: %w", p, err)
		}
		words = append(words, parse(string(data), seen)...)
	}
	return words, nil
}

func parse(raw string, seen map[string]struct{}) []string {
	if seen == nil {
		seen = make(map[string]struct{})
	}
	var words []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; !ok {
			seen[line] = struct{}{}
			words = append(words, line)
		}
	}
	return words
}

// Expand builds every prefix × word × extension combination. The bare word
// (no prefix, no extension) is always included. A word containing %EXT% gets
// each extension substituted in place instead of appended; with no
// extensions it is kept without the placeholder.
func Expand(words, prefixes, extensions []string) []string {
	prefixes = withEmpty(prefixes)
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		if e = strings.TrimPrefix(strings.TrimSpace(e), "."); e != "" {
			exts = append(exts, e)
		}
	}

	seen := make(map[string]struct{})
	var result []string
	add := func(entry string) {
		if entry == "" {
			return
		}
		if _, ok := seen[entry]; !ok {
			seen[entry] = struct{}{}
			result = append(result, entry)
		}
	}

	for _, prefix := range prefixes {
		for _, word := range words {
			if strings.Contains(word, "%EXT%") {
				for _, ext := range exts {
					add(prefix + strings.ReplaceAll(word, "%EXT%", ext))
				}
				bare := strings.ReplaceAll(word, ".%EXT%", "")
				add(prefix + strings.ReplaceAll(bare, "%EXT%", ""))
				continue
			}
			add(prefix + word)
			for _, ext := range exts {
				add(prefix + word + "." + ext)
			}
		}
	}
	return result
}

// withEmpty puts "" first so the unprefixed form is always generated.
func withEmpty(list []string) []string {
	out := []string{""}
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
