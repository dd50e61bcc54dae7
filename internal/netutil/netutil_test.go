package netutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandTargets(t *testing.T) {
	tests := []struct {
		name  string
		cidr  string
		ports string
		want  []string
	}{
		{
			name: "single ip default port",
			cidr: "10.0.0.5",
			want: []string{"http://10.0.0.5"},
		},
		{
			name:  "slash 30 skips network and broadcast",
			cidr:  "192.168.1.0/30",
			ports: "80,443,8080",
			want: []string{
				"http://192.168.1.1", "https://192.168.1.1", "http://192.168.1.1:8080",
				"http://192.168.1.2", "https://192.168.1.2", "http://192.168.1.2:8080",
			},
		},
		{
			name: "slash 31 keeps both",
			cidr: "10.0.0.0/31",
			want: []string{"http://10.0.0.0", "http://10.0.0.1"},
		},
		{
			name:  "ipv6",
			cidr:  "::1",
			ports: "8443",
			want:  []string{"https://[::1]:8443"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandTargets(tt.cidr, tt.ports)
			if err != nil {
				t.Fatalf("ExpandTargets: %v", err)
			}
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandTargetsErrors(t *testing.T) {
	if _, err := ExpandTargets("not-an-ip", ""); err == nil {
		t.Error("invalid range should fail")
	}
	if _, err := ExpandTargets("10.0.0.1", "http"); err == nil {
		t.Error("invalid port should fail")
	}
	if _, err := ExpandTargets("10.0.0.0/8", ""); err == nil {
		t.Error("oversized range should fail")
	}
}

func TestReadTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# targets\nhttp://a.example\n\nb.example:8080\nhttp://a.example\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTargets(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, " ") != "http://a.example http://b.example:8080" {
		t.Errorf("targets = %v", got)
	}
}
