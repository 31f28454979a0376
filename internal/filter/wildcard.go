package filter

import (
	"slices"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

// DefaultWildcardTolerance is the byte tolerance used when comparing a
// result's length against its host's fingerprint.
const DefaultWildcardTolerance = 50

type baseline struct {
	contentLength int64
	wordCount     int
	lineCount     int
}

// WildcardFilter hides results that look like the page their own host serves
// for nonexistent paths. It only acts on results that carry a Fingerprint.
type WildcardFilter struct {
	tolerance int
}

// NewWildcardFilter returns a filter comparing lengths within tolerance bytes.
func NewWildcardFilter(tolerance int) *WildcardFilter {
	if tolerance < 0 {
		tolerance = DefaultWildcardTolerance
	}
	return &WildcardFilter{tolerance: tolerance}
}

func (f *WildcardFilter) Name() string { return "wildcard" }

func (f *WildcardFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	return IsWildcard(result, f.tolerance)
}

// IsWildcard reports whether result matches its host's fingerprint on at
// least two of content length, word count and line count.
func IsWildcard(result *scanner.ProbeResult, tolerance int) bool {
	b, ok := fingerprintBaseline(result.Fingerprint, tolerance)
	if !ok {
		return false
	}

	lengthOK := abs(result.ContentLength-b.contentLength) <= int64(tolerance)
	wordOK := abs(result.WordCount-b.wordCount) <= max(5, b.wordCount/20) // 5%, min 5
	lineOK := abs(result.LineCount-b.lineCount) <= max(2, b.lineCount/10) // 10%, min 2

	matches := 0
	for _, ok := range []bool{lengthOK, wordOK, lineOK} {
		if ok {
			matches++
		}
	}
	return matches >= 2
}

// fingerprintBaseline reduces a fingerprint to its medians. Synthetic probes
// that got no answer (line count 0) are ignored. Fewer than two answers, or
// lengths that do not converge within tolerance, give no baseline.
func fingerprintBaseline(fp *scanner.Fingerprint, tolerance int) (baseline, bool) {
	var lengths []int64
	var words, lines []int
	for i := 0; i < fp.Len(); i++ {
		if fp.LineCounts[i] == 0 {
			continue
		}
		lengths = append(lengths, fp.ContentLengths[i])
		words = append(words, fp.WordCounts[i])
		lines = append(lines, fp.LineCounts[i])
	}
	if len(lengths) < 2 {
		return baseline{}, false
	}

	b := baseline{
		contentLength: median(lengths),
		wordCount:     median(words),
		lineCount:     median(lines),
	}
	for _, l := range lengths {
		if abs(l-b.contentLength) > int64(tolerance) {
			return baseline{}, false
		}
	}
	return b, true
}

func median[T int | int64](vals []T) T {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

func abs[T int | int64](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
