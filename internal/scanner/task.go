package scanner

import "strings"

// Task is one slice of a directory's wordlist pass.
type Task struct {
	ID          int
	Dir         string   // directory URL, always with a trailing slash
	ParentDepth int      // depth recorded on every outcome of this task
	Paths       []string // candidate paths relative to Dir
}

// URL joins Dir and a candidate path.
func (t Task) URL(path string) string {
	return t.Dir + strings.TrimLeft(path, "/")
}

// SplitPaths divides paths into at most n contiguous, near-equal parts. Empty
// parts are never returned.
func SplitPaths(paths []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(paths) {
		n = len(paths)
	}
	parts := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * len(paths) / n
		end := (i + 1) * len(paths) / n
		parts = append(parts, paths[start:end])
	}
	return parts
}
