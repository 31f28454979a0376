package filter

import "github.com/maxvaer/hostprobe/internal/scanner"

// Filter decides whether a probe result should be hidden from output.
type Filter interface {
	Name() string
	ShouldFilter(result *scanner.ProbeResult) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Apply runs every filter against the result. Returns true and the filter
// name if the result should be filtered out. Unreachable hosts are always
// filtered.
func (c *Chain) Apply(result *scanner.ProbeResult) (bool, string) {
	if !Printable(result) {
		return true, "inactive"
	}
	for _, f := range c.filters {
		if f.ShouldFilter(result) {
			return true, f.Name()
		}
	}
	return false, ""
}

// Printable reports whether result is eligible for output at all.
func Printable(result *scanner.ProbeResult) bool {
	return result.Active()
}
