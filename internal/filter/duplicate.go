package filter

import (
	"sync"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

// responseKey identifies a unique response by status code and body hash.
type responseKey struct {
	statusCode int
	bodyHash   [16]byte
}

// shapeKey groups responses by status and structural shape (line count and
// bucketed word count). Parked or wildcard-DNS pages that echo the requested
// host name have a unique hash but a near-identical shape.
type shapeKey struct {
	statusCode int
	lineCount  int
	wordBucket int // wordCount / 5
}

// DuplicateFilter hides responses that keep coming back across different
// hosts. With wildcard DNS in bruteforce mode every label resolves to the
// same catch-all vhost, which this collapses to a handful of lines.
//
// Two detection modes:
//   - Exact: same (statusCode, bodyHash), threshold occurrences allowed.
//   - Shape: same (statusCode, lineCount, ~wordCount), 3x threshold
//     occurrences allowed, never fewer than 5.
type DuplicateFilter struct {
	mu             sync.Mutex
	seen           map[responseKey]int
	shapes         map[shapeKey]int
	threshold      int
	shapeThreshold int
}

// NewDuplicateFilter returns a filter that lets up to threshold identical
// responses through before hiding the rest.
func NewDuplicateFilter(threshold int) *DuplicateFilter {
	shapeT := threshold * 3
	if shapeT < 5 {
		shapeT = 5
	}
	return &DuplicateFilter{
		seen:           make(map[responseKey]int),
		shapes:         make(map[shapeKey]int),
		threshold:      threshold,
		shapeThreshold: shapeT,
	}
}

func (d *DuplicateFilter) Name() string { return "duplicate" }

func (d *DuplicateFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	exact := responseKey{
		statusCode: result.StatusCode,
		bodyHash:   result.BodyHash,
	}
	shape := shapeKey{
		statusCode: result.StatusCode,
		lineCount:  result.LineCount,
		wordBucket: result.WordCount / 5,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[exact]++
	d.shapes[shape]++

	return d.seen[exact] > d.threshold || d.shapes[shape] > d.shapeThreshold
}
