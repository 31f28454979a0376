package filter

import (
	"testing"

	"github.com/maxvaer/hostprobe/internal/scanner"
)

func active(code int) *scanner.ProbeResult {
	return &scanner.ProbeResult{Host: "example.com", State: scanner.StateActive, StatusCode: code}
}

func mustParse(t *testing.T, s string) []int {
	t.Helper()
	codes, err := ParseStatusList(s)
	if err != nil {
		t.Fatalf("ParseStatusList(%q): %v", s, err)
	}
	return codes
}

func TestStatusFilter_Policy(t *testing.T) {
	tests := []struct {
		name    string
		include string
		exclude string
		code    int
		printed bool
	}{
		{"no restriction", "", "", 404, true},
		{"included", "404", "", 404, true},
		{"excluded", "", "404", 404, false},
		{"not in include list", "200,301", "", 404, false},
		{"in include list", "200,301", "", 301, true},
		{"include and exclude", "200,404", "404", 404, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain()
			chain.Add(NewStatusFilter(mustParse(t, tt.include), mustParse(t, tt.exclude)))
			filtered, _ := chain.Apply(active(tt.code))
			if filtered == tt.printed {
				t.Errorf("printed = %v, want %v", !filtered, tt.printed)
			}
		})
	}
}

func TestStatusFilter_WholeCodesOnly(t *testing.T) {
	if !NewStatusFilter([]int{2000}, nil).ShouldFilter(active(200)) {
		t.Error("200 must not match 2000")
	}
	if NewStatusFilter(nil, []int{40}).ShouldFilter(active(404)) {
		t.Error("404 must not match 40")
	}
}

func TestParseStatusList(t *testing.T) {
	codes, err := ParseStatusList(" 200, 301 ,,404")
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 3 || codes[0] != 200 || codes[1] != 301 || codes[2] != 404 {
		t.Errorf("codes = %v", codes)
	}

	if codes, err := ParseStatusList(""); err != nil || codes != nil {
		t.Errorf("empty list: codes=%v err=%v", codes, err)
	}
	for _, bad := range []string{"abc", "200,x", "99", "600"} {
		if _, err := ParseStatusList(bad); err == nil {
			t.Errorf("ParseStatusList(%q): expected error", bad)
		}
	}
}

func TestClassFilter(t *testing.T) {
	f, err := NewClassFilter([]string{"2xx", "3XX"})
	if err != nil {
		t.Fatal(err)
	}
	for code, want := range map[int]bool{200: false, 204: false, 302: false, 404: true, 500: true, 101: true} {
		if got := f.ShouldFilter(active(code)); got != want {
			t.Errorf("code %d: filtered = %v, want %v", code, got, want)
		}
	}

	for _, bad := range []string{"6xx", "2x", "abc", "20x"} {
		if _, err := NewClassFilter([]string{bad}); err == nil {
			t.Errorf("NewClassFilter(%q): expected error", bad)
		}
	}
}

func TestSizeFilter(t *testing.T) {
	f := NewSizeFilter([]int{0, 1234})

	r := active(200)
	r.ContentLength = 1234
	if !f.ShouldFilter(r) {
		t.Error("size 1234 should be filtered")
	}

	r.ContentLength = 5678
	if f.ShouldFilter(r) {
		t.Error("size 5678 should pass")
	}
}

func TestBodyFilters(t *testing.T) {
	r := active(200)
	r.Title = "Grafana"
	r.Body = "<div>Welcome to the login page</div>"

	if NewBodyMatchFilter("LOGIN").ShouldFilter(r) {
		t.Error("match filter should keep body containing needle")
	}
	if NewBodyMatchFilter("grafana").ShouldFilter(r) {
		t.Error("match filter should look at the title")
	}
	if !NewBodyMatchFilter("jenkins").ShouldFilter(r) {
		t.Error("match filter should drop body without needle")
	}
	if !NewBodyExcludeFilter("welcome").ShouldFilter(r) {
		t.Error("exclude filter should drop body containing needle")
	}
	if NewBodyExcludeFilter("parked").ShouldFilter(r) {
		t.Error("exclude filter should keep body without needle")
	}
}

func TestChain_InactiveAlwaysFiltered(t *testing.T) {
	chain := NewChain()
	r := &scanner.ProbeResult{Host: "dead.example.com", State: scanner.StateInactive}

	filtered, reason := chain.Apply(r)
	if !filtered || reason != "inactive" {
		t.Errorf("Apply = (%v, %q), want (true, \"inactive\")", filtered, reason)
	}
	if Printable(r) {
		t.Error("inactive result should not be printable")
	}
}

func TestChain_ShortCircuits(t *testing.T) {
	chain := NewChain()
	chain.Add(NewStatusFilter(nil, []int{404}))
	chain.Add(NewSizeFilter([]int{0}))

	filtered, reason := chain.Apply(active(404))
	if !filtered {
		t.Error("expected chain to filter")
	}
	if reason != "status" {
		t.Errorf("expected reason 'status', got %q", reason)
	}
	if chain.Len() != 2 {
		t.Errorf("Len() = %d, want 2", chain.Len())
	}
}
