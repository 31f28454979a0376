// Package hosts assembles the de-duplicated set of host names to probe.
package hosts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source describes where hosts come from. All non-empty sources are merged.
type Source struct {
	Input      io.Reader // newline-delimited hosts, or labels in bruteforce mode
	ListFile   string
	Domain     string
	Bruteforce bool
	CIDR       string
	Ports      string
}

// Load reads every configured source and returns the unique hosts in
// first-seen order.
func Load(src Source) ([]string, error) {
	set := newSet()

	var lines []string
	if src.Input != nil {
		l, err := ReadLines(src.Input)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		lines = append(lines, l...)
	}
	if src.ListFile != "" {
		f, err := os.Open(src.ListFile)
		if err != nil {
			return nil, fmt.Errorf("opening host list: %w", err)
		}
		l, err := ReadLines(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading host list: %w", err)
		}
		lines = append(lines, l...)
	}

	if src.Bruteforce {
		if src.Domain == "" {
			return nil, fmt.Errorf("bruteforce mode requires a domain")
		}
		for _, h := range Compose(lines, src.Domain) {
			set.add(h)
		}
	} else {
		for _, l := range lines {
			set.add(Normalize(l))
		}
		if src.Domain != "" {
			set.add(Normalize(src.Domain))
		}
	}

	if src.CIDR != "" {
		expanded, err := ExpandCIDR(src.CIDR, src.Ports)
		if err != nil {
			return nil, fmt.Errorf("expanding CIDR: %w", err)
		}
		for _, h := range expanded {
			set.add(h)
		}
	}

	return set.items, nil
}

// ReadLines returns trimmed, non-empty, non-comment lines.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Compose prepends every label to domain as "{label}.{domain}".
func Compose(labels []string, domain string) []string {
	domain = strings.Trim(Normalize(domain), ".")
	set := newSet()
	for _, label := range labels {
		label = strings.Trim(strings.ToLower(label), ".")
		if label == "" {
			continue
		}
		set.add(label + "." + domain)
	}
	return set.items
}

// Normalize strips a URL scheme and trailing slashes and lowercases the
// host portion. Paths are kept.
func Normalize(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	h = strings.TrimRight(h, "/")
	if i := strings.Index(h, "/"); i >= 0 {
		return strings.ToLower(h[:i]) + h[i:]
	}
	return strings.ToLower(h)
}

type set struct {
	seen  map[string]struct{}
	items []string
}

func newSet() *set {
	return &set{seen: make(map[string]struct{})}
}

func (s *set) add(h string) {
	if h == "" {
		return
	}
	if _, ok := s.seen[h]; ok {
		return
	}
	s.seen[h] = struct{}{}
	s.items = append(s.items, h)
}
