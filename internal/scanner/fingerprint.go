package scanner

import (
	"context"
	"math/rand/v2"
	"sort"
)

const (
	tokenLength   = 16
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// syntheticPaths returns the garbage paths requested during fingerprinting.
// All of them share one token.
func syntheticPaths(token string) []string {
	return []string{
		"admin" + token + "/",
		".htaccess" + token,
		token + "/",
		token,
	}
}

func randomToken(rng *rand.Rand) string {
	b := make([]byte, tokenLength)
	for i := range b {
		b[i] = tokenAlphabet[rng.IntN(len(tokenAlphabet))]
	}
	return string(b)
}

// DetectFingerprint probes host with paths that should not exist and records
// what came back. The probes run through a nested Dispatch with a single
// attempt each and no further fingerprinting. Inactive probes are recorded
// with zero values.
func DetectFingerprint(ctx context.Context, host string, cfg *Config, rng *rand.Rand) Fingerprint {
	paths := syntheticPaths(randomToken(rng))
	targets := make([]string, 0, len(paths))
	for _, p := range paths {
		targets = append(targets, host+"/"+p)
	}

	client := cfg.FingerprintClient
	if client == nil {
		c, err := NewClient(ClientOptions{
			Timeout:      FingerprintTimeout,
			MaxRedirects: FingerprintMaxRedirects,
		})
		if err != nil {
			cfg.Logger.Warn().Str("host", host).Err(err).Msg("fingerprint client")
			return Fingerprint{}
		}
		client = c
		defer c.CloseIdleConnections()
	}

	nested := &Config{
		Client:     client,
		UserAgents: cfg.UserAgents,
		Retries:    1,
		Threads:    len(targets),
		Extract:    true,
		Quiet:      true,
		Limiter:    cfg.Limiter,
		Seed:       rng.Uint64(),
		Logger:     cfg.Logger,
	}
	results := Dispatch(ctx, targets, nested)

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fp Fingerprint
	for _, k := range keys {
		r := results[k]
		fp.add(r.ContentLength, r.WordCount, r.LineCount)
	}

	cfg.Logger.Debug().
		Str("host", host).
		Ints64("lengths", fp.ContentLengths).
		Ints("words", fp.WordCounts).
		Ints("lines", fp.LineCounts).
		Msg("fingerprint")
	return fp
}
