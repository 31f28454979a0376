package scanner

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds the immutable per-run probing settings. A Config may be
// shared by concurrent Dispatch calls.
type Config struct {
	Client      *http.Client
	UserAgents  []string
	Retries     int
	Threads     int
	Extract     bool // run the response extractor
	Fingerprint bool // requires Extract
	Quiet       bool // suppress OnResult

	// CollectLinks records the hosts of every link on extracted pages.
	CollectLinks bool

	// FingerprintClient serves synthetic probes. Nil builds a fresh
	// short-timeout client per detection.
	FingerprintClient *http.Client

	// Limiter throttles every outgoing request when non-nil.
	Limiter *rate.Limiter

	// Pauser, when set, holds workers between hosts while paused.
	Pauser *Pauser

	// Seed feeds the per-host generators used for user-agent and token
	// selection.
	Seed uint64

	Logger zerolog.Logger

	// OnResult receives each finished result from a single goroutine, in
	// completion order.
	OnResult func(*ProbeResult)
}

// Dispatch probes every unique host with at most cfg.Threads probes in
// flight and returns exactly one result per host. Hosts that never answer
// are reported as inactive, never dropped.
func Dispatch(ctx context.Context, hosts []string, cfg *Config) ResultMap {
	unique := uniqueHosts(hosts)
	results := make(ResultMap, len(unique))
	if len(unique) == 0 {
		return results
	}

	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > len(unique) {
		threads = len(unique)
	}

	itemsCh := make(chan string, threads*2)
	resultsCh := make(chan *ProbeResult, threads*2)

	var wg sync.WaitGroup

	// Producer: feed hosts into channel. Cancellation is handled inside
	// Probe so every host still yields a result.
	go func() {
		defer close(itemsCh)
		for _, host := range unique {
			itemsCh <- host
		}
	}()

	// Workers: consume hosts, produce results.
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range itemsCh {
				if cfg.Pauser != nil {
					_ = cfg.Pauser.Wait(ctx)
				}
				resultsCh <- Probe(ctx, host, cfg, hostRand(cfg.Seed, host))
			}
		}()
	}

	// Closer: when all workers finish, close the results channel.
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	for r := range resultsCh {
		results[r.Host] = r
		if !cfg.Quiet && cfg.OnResult != nil {
			cfg.OnResult(r)
		}
	}
	return results
}

func uniqueHosts(hosts []string) []string {
	seen := make(map[string]struct{}, len(hosts))
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// hostRand returns a generator that depends only on the run seed and the
// host, so selection does not vary with scheduling order.
func hostRand(seed uint64, host string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(host))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}
