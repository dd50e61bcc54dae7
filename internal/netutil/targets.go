package netutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadTargets reads one URL per line, skipping blanks and # comments. Lines
// without a scheme get http://.
func ReadTargets(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided path
	if err != nil {
		return nil, fmt.Errorf("opening targets file: %w", err)
	}
	defer f.Close()

	var targets []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "://") {
			line = "http://" + line
		}
		if !seen[line] {
			seen[line] = true
			targets = append(targets, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading targets file: %w", err)
	}
	return targets, nil
}
