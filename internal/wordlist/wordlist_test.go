package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmbedded(t *testing.T) {
	words, err := LoadWords(nil)
	if err != nil {
		t.Fatalf("LoadWords embedded: %v", err)
	}
	if len(words) < 50 {
		t.Errorf("expected at least 50 entries in embedded wordlist, got %d", len(words))
	}
	for _, w := range words {
		if strings.HasPrefix(w, "#") {
			t.Errorf("found comment line in loaded wordlist: %q", w)
		}
		if strings.TrimSpace(w) == "" {
			t.Error("found empty line in loaded wordlist")
		}
	}
}

func TestLoadMergesFiles(t *testing.T) {
	a := writeList(t, "admin\n# comment\n\nlogin\n")
	b := writeList(t, "login\nbackup\nadmin\n")

	words, err := LoadWords([]string{a, b})
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if got := strings.Join(words, ","); got != "admin,login,backup" {
		t.Errorf("words = %s, want admin,login,backup", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadWords([]string{filepath.Join(t.TempDir(), "nope.txt")}); err == nil {
		t.Error("missing wordlist should fail")
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name       string
		words      []string
		prefixes   []string
		extensions []string
		want       []string
	}{
		{
			name:  "words only",
			words: []string{"admin", "login"},
			want:  []string{"admin", "login"},
		},
		{
			name:       "extensions appended",
			words:      []string{"admin"},
			extensions: []string{"php", ".bak"},
			want:       []string{"admin", "admin.php", "admin.bak"},
		},
		{
			name:     "prefixes",
			words:    []string{"admin"},
			prefixes: []string{"old_", "~"},
			want:     []string{"admin", "old_admin", "~admin"},
		},
		{
			name:       "placeholder substituted",
			words:      []string{"index.%EXT%"},
			extensions: []string{"php", "html"},
			want:       []string{"index.php", "index.html", "index"},
		},
		{
			name:  "placeholder without extensions",
			words: []string{"index.%EXT%"},
			want:  []string{"index"},
		},
		{
			name:       "full product",
			words:      []string{"a", "b"},
			prefixes:   []string{"x"},
			extensions: []string{"txt"},
			want:       []string{"a", "a.txt", "b", "b.txt", "xa", "xa.txt", "xb", "xb.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.words, tt.prefixes, tt.extensions)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("Expand() = %v, want %v", got, tt.want)
			}
		})
	}
}
