// Package crawl finds new in-scope host names in fetched pages.
package crawl

import (
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// linkAttrs lists the elements and attributes that carry URLs.
var linkAttrs = []struct{ selector, attr string }{
	{"a[href]", "href"},
	{"link[href]", "href"},
	{"area[href]", "href"},
	{"script[src]", "src"},
	{"img[src]", "src"},
	{"iframe[src]", "src"},
	{"form[action]", "action"},
}

// ExtractHosts parses an HTML page and returns the de-duplicated hosts of
// links that fall under scope (the domain itself or any subdomain of it).
// The page's own host is skipped.
func ExtractHosts(body string, base *url.URL, scope string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	scope = strings.ToLower(strings.TrimSuffix(scope, "."))

	var hosts []string
	for _, host := range LinkHosts(doc, base) {
		if host != base.Host && InScope(host, scope) {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// LinkHosts returns the de-duplicated hosts of every http(s) link in doc,
// head included, in document order per attribute kind. Relative links
// resolve against base. Hosts keep an explicit non-default port.
func LinkHosts(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var hosts []string
	for _, la := range linkAttrs {
		doc.Find(la.selector).Each(func(_ int, s *goquery.Selection) {
			raw, _ := s.Attr(la.attr)
			host, ok := linkHost(strings.TrimSpace(raw), base)
			if !ok {
				return
			}
			if _, dup := seen[host]; !dup {
				seen[host] = struct{}{}
				hosts = append(hosts, host)
			}
		})
	}
	return hosts
}

// InScope reports whether host (optionally with a port) is scope or one of
// its subdomains. An empty scope matches nothing.
func InScope(host, scope string) bool {
	if scope == "" {
		return false
	}
	name := strings.ToLower(Hostname(host))
	return name == scope || strings.HasSuffix(name, "."+scope)
}

// Hostname strips a port from host.
func Hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// Scope guesses the registrable domain of host from its last two labels.
// IP addresses have no scope.
func Scope(host string) string {
	name := strings.ToLower(Hostname(host))
	if net.ParseIP(name) != nil {
		return ""
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return name
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func linkHost(raw string, base *url.URL) (string, bool) {
	lower := strings.ToLower(raw)
	if raw == "" || strings.HasPrefix(raw, "#") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "data:") {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !defaultPort(u.Scheme, port) {
		host = net.JoinHostPort(host, port)
	}
	return host, true
}

func defaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}
