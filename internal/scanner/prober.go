package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"

	"github.com/maxvaer/hostprobe/internal/useragent"
)

// Both schemes race on every attempt. On a same-attempt tie the response
// that reaches the collector first wins.
var schemes = []string{"https", "http"}

type outcome struct {
	idx    int
	scheme string
	target *url.URL
	resp   *http.Response
	err    error
}

// Probe runs up to cfg.Retries attempts against host and returns its result.
// The user agent is chosen once and reused for every attempt.
func Probe(ctx context.Context, host string, cfg *Config, rng *rand.Rand) *ProbeResult {
	result := &ProbeResult{Host: host, State: StateInactive}
	ua := useragent.Pick(rng, cfg.UserAgents)

	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		won, release, err := race(ctx, host, ua, cfg)
		if err != nil {
			lastErr = err
			cfg.Logger.Debug().
				Str("host", host).
				Int("attempt", attempt).
				Int("retries", retries).
				Err(err).
				Msg("probe attempt failed")
			continue
		}

		result.State = StateActive
		result.Protocol = won.scheme
		result.StatusCode = won.resp.StatusCode
		result.HostURL = won.scheme + "://" + host
		result.FinalURL = won.resp.Request.URL.String()

		if cfg.Extract {
			Extract(ctx, won.resp, won.target, result, cfg, rng)
		} else {
			_, _ = io.CopyN(io.Discard, won.resp.Body, 4096)
		}
		won.resp.Body.Close()
		release()
		return result
	}

	result.Err = errors.Join(ErrNoResponse, lastErr)
	cfg.Logger.Debug().Str("host", host).Err(result.Err).Msg("host inactive")
	return result
}

// race sends one GET per scheme concurrently and returns the first success.
// A failure never pre-empts a slower success. The returned release func
// cancels the winner's context and must be called once its body is consumed.
func race(ctx context.Context, host, ua string, cfg *Config) (*outcome, context.CancelFunc, error) {
	ctxs := make([]context.Context, len(schemes))
	cancels := make([]context.CancelFunc, len(schemes))
	for i := range schemes {
		ctxs[i], cancels[i] = context.WithCancel(ctx)
	}

	ch := make(chan outcome, len(schemes))
	for i, scheme := range schemes {
		go func() {
			target, resp, err := fetch(ctxs[i], scheme, host, ua, cfg)
			ch <- outcome{idx: i, scheme: scheme, target: target, resp: resp, err: err}
		}()
	}

	var errs []error
	for n := 0; n < len(schemes); n++ {
		o := <-ch
		if o.err != nil {
			cancels[o.idx]()
			errs = append(errs, fmt.Errorf("%s: %w", o.scheme, o.err))
			continue
		}
		for i, cancel := range cancels {
			if i != o.idx {
				cancel()
			}
		}
		go discard(ch, len(schemes)-n-1)
		return &o, cancels[o.idx], nil
	}
	return nil, nil, errors.Join(errs...)
}

func fetch(ctx context.Context, scheme, host, ua string, cfg *Config) (*url.URL, *http.Response, error) {
	target, err := url.Parse(scheme + "://" + host)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return target, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return target, nil, err
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return target, nil, err
	}
	return target, resp, nil
}

// discard closes the bodies of race losers that still answer.
func discard(ch <-chan outcome, n int) {
	for ; n > 0; n-- {
		if o := <-ch; o.resp != nil {
			o.resp.Body.Close()
		}
	}
}
