package filter

import (
	"strings"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

// BodyFilter matches a case-insensitive needle against the extracted title
// and body of a result.
type BodyFilter struct {
	name    string
	needle  string
	require bool // filter results that lack the needle instead of ones that have it
}

// NewBodyMatchFilter hides results whose title and body do not contain needle.
func NewBodyMatchFilter(needle string) *BodyFilter {
	return &BodyFilter{name: "body-match", needle: strings.ToLower(needle), require: true}
}

// NewBodyExcludeFilter hides results whose title or body contains needle.
func NewBodyExcludeFilter(needle string) *BodyFilter {
	return &BodyFilter{name: "body-exclude", needle: strings.ToLower(needle)}
}

func (f *BodyFilter) Name() string { return f.name }

func (f *BodyFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	found := strings.Contains(strings.ToLower(result.Title), f.needle) ||
		strings.Contains(strings.ToLower(result.Body), f.needle)
	return found != f.require
}
