package scanner

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Synthetic fingerprint probes run on their own short-timeout client.
const (
	FingerprintTimeout      = 5 * time.Second
	FingerprintMaxRedirects = 3
)

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	Timeout      time.Duration
	MaxRedirects int // 0 = never follow; otherwise the hop cap
	MaxIdleConns int // idle pool size, 0 = 100

	// Transport replaces the default pooled transport (tests, custom dialers).
	Transport http.RoundTripper
}

// NewClient builds a connection-pooled client with certificate validation
// disabled. The client is safe for concurrent use and must not be mutated
// after construction.
func NewClient(opts ClientOptions) (*http.Client, error) {
	if opts.Timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if opts.MaxRedirects < 0 {
		return nil, ErrInvalidRedirects
	}

	transport := opts.Transport
	if transport == nil {
		idle := opts.MaxIdleConns
		if idle <= 0 {
			idle = 100
		}
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: opts.Timeout,
			MaxIdleConns:        idle,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       opts.Timeout,
		CheckRedirect: redirectPolicy(opts.MaxRedirects),
	}, nil
}

// redirectPolicy stops following once max hops were taken and hands back the
// last redirect response instead of failing the request.
func redirectPolicy(max int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return http.ErrUseLastResponse
		}
		return nil
	}
}
