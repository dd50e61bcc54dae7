package reqparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFile_BurpHTTP2(t *testing.T) {
	content := "GET /feedback?_rsc=gyais HTTP/2\r\n" +
		"Host: www.example.com\r\n" +
		"Cookie: session=abc123; token=xyz\r\n" +
		"User-Agent: Mozilla/5.0\r\n" +
		"Accept: */*\r\n" +
		"Content-Length: 0\r\n" +
		"\r\n"

	req, err := ParseFile(writeTempFile(t, content))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("method = %q, want GET", req.Method)
	}
	if req.URL != "https://www.example.com/" {
		t.Errorf("url = %q, want https://www.example.com/", req.URL)
	}
	if req.Cookies != "session=abc123; token=xyz" {
		t.Errorf("cookies = %q", req.Cookies)
	}
	if req.Headers["User-Agent"] != "Mozilla/5.0" {
		t.Errorf("user-agent = %q, want 'Mozilla/5.0'", req.Headers["User-Agent"])
	}
	for _, h := range []string{"Host", "Cookie", "Content-Length"} {
		if _, ok := req.Headers[h]; ok {
			t.Errorf("header %s should not be replayed", h)
		}
	}
}

func TestParseFile_DirectoryOfPath(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"GET /admin HTTP/1.1", "https://target.com/"},
		{"GET /app/login.php?next=/ HTTP/1.1", "https://target.com/app/"},
		{"POST /api/v1/ HTTP/1.1", "https://target.com/api/v1/"},
		{"GET http://proxy.example/a/b/c HTTP/1.1", "http://proxy.example/a/b/"},
	}
	for _, tt := range tests {
		req, err := ParseFile(writeTempFile(t, tt.line+"\r\nHost: target.com\r\nAuthorization: Bearer tok\r\n\r\n"))
		if err != nil {
			t.Fatalf("ParseFile(%q): %v", tt.line, err)
		}
		if req.URL != tt.want {
			t.Errorf("%q: url = %q, want %q", tt.line, req.URL, tt.want)
		}
		if req.Headers["Authorization"] != "Bearer tok" {
			t.Errorf("%q: auth = %q", tt.line, req.Headers["Authorization"])
		}
	}
}

func TestParseFile_HTTP11_Port80(t *testing.T) {
	content := "GET / HTTP/1.1\r\n" +
		"Host: target.com:80\r\n" +
		"\r\n"

	req, err := ParseFile(writeTempFile(t, content))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if req.URL != "http://target.com:80/" {
		t.Errorf("url = %q, want http://target.com:80/", req.URL)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"missing host", "GET / HTTP/1.1\r\nAccept: */*\r\n\r\n", ErrMissingHost},
		{"empty file", "", ErrEmptyRequest},
		{"bad request line", "GARBAGE\r\n\r\n", ErrBadRequestLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(writeTempFile(t, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
