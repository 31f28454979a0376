package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

// StatusFilter includes or excludes results based on HTTP status codes.
// Both lists apply: a code must be in include (when set) and must not be in
// exclude.
type StatusFilter struct {
	include map[int]struct{}
	exclude map[int]struct{}
}

// NewStatusFilter creates a status code filter. If include is non-empty, only
// those codes pass through. If exclude is non-empty, those codes are filtered.
func NewStatusFilter(include, exclude []int) *StatusFilter {
	f := &StatusFilter{
		include: make(map[int]struct{}, len(include)),
		exclude: make(map[int]struct{}, len(exclude)),
	}
	for _, code := range include {
		f.include[code] = struct{}{}
	}
	for _, code := range exclude {
		f.exclude[code] = struct{}{}
	}
	return f
}

func (f *StatusFilter) Name() string { return "status" }

func (f *StatusFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	if len(f.include) > 0 {
		if _, ok := f.include[result.StatusCode]; !ok {
			return true
		}
	}
	_, ok := f.exclude[result.StatusCode]
	return ok
}

// ParseStatusList parses a comma-separated list of status codes such as
// "200,301, 404". An empty string yields nil.
func ParseStatusList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		if code < 100 || code > 599 {
			return nil, fmt.Errorf("status code %d out of range 100-599", code)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// ClassFilter passes only results whose status falls in one of the given
// hundreds, e.g. "2xx" or "3xx".
type ClassFilter struct {
	classes map[int]struct{}
}

// NewClassFilter creates a class filter from names like "2xx". Entries that
// are not of the form Nxx with N in 1-5 are rejected.
func NewClassFilter(classes []string) (*ClassFilter, error) {
	f := &ClassFilter{classes: make(map[int]struct{}, len(classes))}
	for _, c := range classes {
		c = strings.ToLower(strings.TrimSpace(c))
		if len(c) != 3 || c[1:] != "xx" || c[0] < '1' || c[0] > '5' {
			return nil, fmt.Errorf("invalid status class %q", c)
		}
		f.classes[int(c[0]-'0')] = struct{}{}
	}
	return f, nil
}

func (f *ClassFilter) Name() string { return "class" }

func (f *ClassFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	if len(f.classes) == 0 {
		return false
	}
	_, ok := f.classes[result.StatusCode/100]
	return !ok
}
