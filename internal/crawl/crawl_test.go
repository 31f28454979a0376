package crawl

import (
	"net/url"
	"sort"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestExtractHosts_InScopeOnly(t *testing.T) {
	body := `
<a href="https://api.example.com/v1">API</a>
<a href="//cdn.example.com/lib.js">CDN</a>
<script src="https://static.example.com:8443/app.js"></script>
<form action="http://login.example.com:80/auth"></form>
<a href="https://other.com/page">External</a>
<a href="/relative">Relative</a>
<a href="mailto:admin@example.com">Mail</a>
<a href="https://API.example.com/again">Dup</a>`

	hosts := ExtractHosts(body, mustURL(t, "https://www.example.com/"), "example.com")
	sort.Strings(hosts)

	want := []string{"api.example.com", "cdn.example.com", "login.example.com", "static.example.com:8443"}
	if len(hosts) != len(want) {
		t.Fatalf("got %v, want %v", hosts, want)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("hosts[%d] = %q, want %q", i, hosts[i], want[i])
		}
	}
}

func TestExtractHosts_SkipsOwnHost(t *testing.T) {
	body := `<a href="https://www.example.com/about">About</a>`
	if hosts := ExtractHosts(body, mustURL(t, "https://www.example.com"), "example.com"); len(hosts) != 0 {
		t.Errorf("expected no hosts, got %v", hosts)
	}
}

func TestExtractHosts_EmptyScope(t *testing.T) {
	body := `<a href="https://api.example.com/">API</a>`
	if hosts := ExtractHosts(body, mustURL(t, "http://10.0.0.1"), ""); len(hosts) != 0 {
		t.Errorf("expected no hosts without scope, got %v", hosts)
	}
}

func TestInScope(t *testing.T) {
	tests := []struct {
		host, scope string
		want        bool
	}{
		{"example.com", "example.com", true},
		{"a.b.example.com:8080", "example.com", true},
		{"badexample.com", "example.com", false},
		{"example.com.evil.io", "example.com", false},
		{"example.com", "", false},
	}
	for _, tt := range tests {
		if got := InScope(tt.host, tt.scope); got != tt.want {
			t.Errorf("InScope(%q, %q) = %v, want %v", tt.host, tt.scope, got, tt.want)
		}
	}
}

func TestScope(t *testing.T) {
	tests := map[string]string{
		"www.example.com":      "example.com",
		"a.b.example.com:8443": "example.com",
		"localhost":            "localhost",
		"127.0.0.1:8080":       "",
	}
	for host, want := range tests {
		if got := Scope(host); got != want {
			t.Errorf("Scope(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestExtractHosts_HeadLinks(t *testing.T) {
	body := `<html><head>
<link rel="canonical" href="https://canon.example.com/">
<script src="https://js.example.com/a.js"></script>
</head><body><a href="https://body.example.com/">b</a></body></html>`

	hosts := ExtractHosts(body, mustURL(t, "https://www.example.com/"), "example.com")
	sort.Strings(hosts)

	want := []string{"body.example.com", "canon.example.com", "js.example.com"}
	if len(hosts) != len(want) {
		t.Fatalf("got %v, want %v", hosts, want)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("hosts[%d] = %q, want %q", i, hosts[i], want[i])
		}
	}
}
