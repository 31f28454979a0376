package filter

import (
	"crypto/md5"
	"fmt"
	"testing"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

func parkedPage(host string) *scanner.ProbeResult {
	body := fmt.Sprintf("<html><body>%s is parked. Buy this domain today.</body></html>", host)
	return &scanner.ProbeResult{
		Host:       host,
		State:      scanner.StateActive,
		StatusCode: 200,
		BodyHash:   md5.Sum([]byte(body)),
		WordCount:  40,
		LineCount:  12,
	}
}

func TestDuplicateFilter_AllowsUpToThreshold(t *testing.T) {
	f := NewDuplicateFilter(3)
	hash := md5.Sum([]byte("catch-all vhost"))

	for i := 1; i <= 3; i++ {
		r := &scanner.ProbeResult{Host: fmt.Sprintf("w%d.example.com", i), StatusCode: 200, BodyHash: hash}
		if f.ShouldFilter(r) {
			t.Errorf("host %d: should not filter within threshold", i)
		}
	}

	r := &scanner.ProbeResult{Host: "w4.example.com", StatusCode: 200, BodyHash: hash}
	if !f.ShouldFilter(r) {
		t.Error("host 4: should filter beyond threshold")
	}
}

func TestDuplicateFilter_StatusAndBodySeparate(t *testing.T) {
	f := NewDuplicateFilter(1)
	a := md5.Sum([]byte("page A"))
	b := md5.Sum([]byte("page B"))

	results := []*scanner.ProbeResult{
		{StatusCode: 200, BodyHash: a},
		{StatusCode: 301, BodyHash: a},
		{StatusCode: 200, BodyHash: b, LineCount: 7},
	}
	for i, r := range results {
		if f.ShouldFilter(r) {
			t.Errorf("first occurrence %d should pass", i)
		}
	}
	for i, r := range results {
		if !f.ShouldFilter(r) {
			t.Errorf("second occurrence %d should be filtered", i)
		}
	}
}

func TestDuplicateFilter_ShapeCatchesHostEchoingPages(t *testing.T) {
	f := NewDuplicateFilter(2) // shape threshold = max(6, 5) = 6

	for i := 0; i < 12; i++ {
		filtered := f.ShouldFilter(parkedPage(fmt.Sprintf("label%d.example.com", i)))
		if i < 6 && filtered {
			t.Errorf("page %d: should pass within shape threshold", i)
		}
		if i >= 6 && !filtered {
			t.Errorf("page %d: should be filtered beyond shape threshold", i)
		}
	}
}

func TestDuplicateFilter_ShapeMinimum(t *testing.T) {
	f := NewDuplicateFilter(1)
	if f.shapeThreshold != 5 {
		t.Errorf("shapeThreshold = %d, want 5", f.shapeThreshold)
	}
}

func TestDuplicateFilter_DistinctSitesNeverFiltered(t *testing.T) {
	f := NewDuplicateFilter(1)
	for i := 0; i < 50; i++ {
		r := &scanner.ProbeResult{
			StatusCode: 200,
			BodyHash:   md5.Sum([]byte{byte(i)}),
			WordCount:  i * 10,
			LineCount:  i * 3,
		}
		if f.ShouldFilter(r) {
			t.Errorf("site %d should not be filtered", i)
		}
	}
}
