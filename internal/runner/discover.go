package runner

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxvaer/hostprobe/internal/crawl"
	"github.com/maxvaer/hostprobe/internal/output"
	"github.com/maxvaer/hostprobe/internal/scanner"
)

// discover probes hosts linked from live pages for up to passes rounds,
// merging every new result into results. Each round only looks at the pages
// found by the previous one.
func discover(ctx context.Context, results scanner.ResultMap, passes int, domain string,
	cfg *scanner.Config, progress *output.Progress, log zerolog.Logger) {
	frontier := sortedKeys(results)
	for pass := 1; pass <= passes && ctx.Err() == nil; pass++ {
		found := linkedHosts(results, frontier, domain)
		if len(found) == 0 {
			return
		}
		log.Info().Int("pass", pass).Int("hosts", len(found)).Msg("probing discovered hosts")

		progress.AddTotal(len(found))
		more := scanner.Dispatch(ctx, found, cfg)
		maps.Copy(results, more)
		frontier = sortedKeys(more)
	}
}

// linkedHosts returns the sorted in-scope hosts linked from the active
// pages in from that are not already in results. Without a domain each
// page is scoped to its own registrable domain.
func linkedHosts(results scanner.ResultMap, from []string, domain string) []string {
	seen := make(map[string]struct{})
	var found []string
	for _, host := range from {
		r := results[host]
		if r == nil || !r.Active() || len(r.Links) == 0 {
			continue
		}
		own := host
		if u, err := url.Parse(r.FinalURL); err == nil && u.Host != "" {
			own = u.Host
		}
		scope := strings.ToLower(domain)
		if scope == "" {
			scope = crawl.Scope(host)
		}
		for _, h := range r.Links {
			if h == own || !crawl.InScope(h, scope) {
				continue
			}
			if _, known := results[h]; known {
				continue
			}
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			found = append(found, h)
		}
	}
	slices.Sort(found)
	return found
}
